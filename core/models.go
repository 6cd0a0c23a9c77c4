package core

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Hex returns the fixed-width hexadecimal form of the ID, used as the
// public document identifier.
func (id ID) Hex() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// Category identifies the kind of archived artifact.
type Category int

const (
	// CategoryDocument is a one-off document archived under a workflow.
	CategoryDocument Category = iota + 1
	// CategoryStream is incrementally archived content from an ongoing source.
	CategoryStream
	// CategoryAttachment is a document that arrived as an email attachment.
	CategoryAttachment
)

var categoryNames = map[Category]string{
	CategoryDocument:   "document",
	CategoryStream:     "stream",
	CategoryAttachment: "attachment",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory converts the sidecar "type" field to a Category.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// MarshalJSON encodes the category as its string name, matching the
// sidecar "type" field.
func (c Category) MarshalJSON() ([]byte, error) {
	name, ok := categoryNames[c]
	if !ok {
		return nil, fmt.Errorf("%w: value %d", ErrInvalidCategory, int(c))
	}
	return json.Marshal(name)
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseCategory(name)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// SchemaVersionCurrent is the sidecar schema version written by this release.
// Version 1 records are still recognized on read.
const SchemaVersionCurrent = 2

// DocumentMetadata is the sidecar record describing one archived artifact.
// It is created once at write time and is read-only thereafter.
type DocumentMetadata struct {
	Entity           string         `json:"entity"`
	Category         Category       `json:"type"`
	Name             string         `json:"name"`
	MimeType         string         `json:"mimetype"`
	ContentHash      string         `json:"content_hash,omitempty"` // algorithm-tagged, e.g. "blake2b:ab12..."
	Size             int64          `json:"size"`
	CreatedAt        time.Time      `json:"created_at"` // caller-supplied, e.g. email date
	SavedAt          time.Time      `json:"saved_at"`   // write time
	Origin           map[string]any `json:"origin,omitempty"`
	OriginalFilename string         `json:"original_filename,omitempty"`
	ContentPath      string         `json:"content_path"` // relative to the repository base
	SchemaVersion    int            `json:"schema_version"`
}

// ContentMetadata is the physical-artifact subset of a metadata record.
type ContentMetadata struct {
	Hash      string
	Size      int64
	MimeType  string
	Extension string
}

// IndexEntry is the derived, rebuildable search index record for one
// archived artifact, keyed by its content path.
type IndexEntry struct {
	Id           ID
	Entity       string
	Filename     string
	ContentPath  string
	MetadataPath string
	Category     Category
	CreatedAt    time.Time
	SavedAt      time.Time
	Tokens       []string // searchable token set (filename, name, origin text fields)
}

// SearchResult represents a search hit with its relevance score.
type SearchResult struct {
	Entry *IndexEntry
	Score float32
}

// RunMarker is the checkpoint persisted after a successful index run.
type RunMarker struct {
	LastRunAt time.Time
	Indexed   int
	Skipped   int
}
