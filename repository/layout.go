package repository

import (
	"encoding/hex"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/archivit/core"
)

// Path layout versions.
const (
	// LayoutVersionFlat is the legacy scheme without year buckets.
	LayoutVersionFlat = 1
	// LayoutVersionCurrent nests content under a YYYY directory derived
	// from the caller-supplied timestamp.
	LayoutVersionCurrent = 2
)

const (
	docsDir    = "docs"
	streamsDir = "streams"

	// MetadataExtension is the sidecar suffix replacing the content extension.
	MetadataExtension = ".meta.json"

	fallbackSlug = "document"
	maxSlugLen   = 80
)

// mimeExtensions maps recognized MIME types to file extensions. Unrecognized
// types fall back to the original filename's suffix.
var mimeExtensions = map[string]string{
	"application/pdf":    "pdf",
	"application/json":   "json",
	"application/zip":    "zip",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       "xlsx",
	"text/plain":                "txt",
	"text/markdown":             "md",
	"text/csv":                  "csv",
	"text/tab-separated-values": "tsv",
	"text/html":                 "html",
	"message/rfc822":            "eml",
	"image/png":                 "png",
	"image/jpeg":                "jpg",
	"image/gif":                 "gif",
}

// Layout maps writer inputs to deterministic relative paths for one layout
// version. It is pure; it never touches the filesystem.
type Layout struct {
	version int
}

// NewLayout creates a Layout for the given version.
func NewLayout(version int) (*Layout, error) {
	if version != LayoutVersionFlat && version != LayoutVersionCurrent {
		return nil, fmt.Errorf("unsupported layout version %d", version)
	}
	return &Layout{version: version}, nil
}

// Version returns the layout version.
func (l *Layout) Version() int {
	return l.version
}

// SanitizeName normalizes a name to the allow-listed form used in paths:
// lowercase ASCII letters, digits, dots, underscores, with whitespace runs
// folded to single hyphens. Disallowed characters are stripped, the result
// is length-capped, and an empty result falls back to "document".
func SanitizeName(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = true
		}
	}

	s := strings.Trim(b.String(), "-._")
	if len(s) > maxSlugLen {
		s = strings.Trim(s[:maxSlugLen], "-._")
	}
	if s == "" {
		return fallbackSlug
	}
	return s
}

// ValidName reports whether a name is already in sanitized form. Entity and
// workflow/stream-segment strings must pass this before they are used as
// path components.
func ValidName(s string) bool {
	return s != "" && s == SanitizeName(s) && !strings.Contains(s, "..")
}

// ContentPath resolves the canonical relative content path for an artifact.
func (l *Layout) ContentPath(entity string, category core.Category, name string, createdAt time.Time, originalFilename, mimetype string) (string, error) {
	return l.resolve(entity, category, name, createdAt, originalFilename, mimetype, "")
}

// AlternateContentPath resolves the single disambiguated path used when the
// canonical path is already occupied. The suffix is deterministic in
// (createdAt, sanitized name), so repeated runs with the same inputs produce
// the same alternate name.
func (l *Layout) AlternateContentPath(entity string, category core.Category, name string, createdAt time.Time, originalFilename, mimetype string) (string, error) {
	suffix := CollisionSuffix(createdAt, slugFor(originalFilename))
	return l.resolve(entity, category, name, createdAt, originalFilename, mimetype, suffix)
}

func (l *Layout) resolve(entity string, category core.Category, name string, createdAt time.Time, originalFilename, mimetype, suffix string) (string, error) {
	if !ValidName(entity) {
		return "", fmt.Errorf("entity %q is not a sanitized name", entity)
	}
	if createdAt.IsZero() {
		return "", fmt.Errorf("created-at timestamp is required")
	}

	var parts []string
	switch category {
	case core.CategoryStream:
		segments, err := splitStreamName(name)
		if err != nil {
			return "", err
		}
		parts = append([]string{entity, streamsDir}, segments...)
	case core.CategoryDocument, core.CategoryAttachment:
		if !ValidName(name) {
			return "", fmt.Errorf("workflow %q is not a sanitized name", name)
		}
		parts = []string{entity, docsDir}
	default:
		return "", fmt.Errorf("unsupported category %v", category)
	}

	// Year bucket comes from the supplied timestamp, never the wall clock,
	// so re-archival of historical content lands in the historical bucket.
	if l.version == LayoutVersionCurrent {
		parts = append(parts, createdAt.Format("2006"))
	}

	slug := slugFor(originalFilename)
	if suffix != "" {
		slug = slug + "-" + suffix
	}
	filename := createdAt.Format("2006-01-02") + "-" + slug + "." + extensionFor(mimetype, originalFilename)
	parts = append(parts, filename)

	return path.Join(parts...), nil
}

// MetadataPath returns the sidecar path for a content path: same stem,
// ".meta.json" extension.
func MetadataPath(contentPath string) string {
	return strings.TrimSuffix(contentPath, path.Ext(contentPath)) + MetadataExtension
}

// CollisionSuffix derives the stable 8-hex disambiguation suffix from the
// created-at timestamp and sanitized name.
func CollisionSuffix(createdAt time.Time, slug string) string {
	h, _ := blake2b.New(4, nil)
	h.Write([]byte(createdAt.Format(time.RFC3339Nano) + slug))
	return hex.EncodeToString(h.Sum(nil))
}

// splitStreamName validates a slash-delimited stream name and returns its
// directory segments. Internal segments are preserved as nested directories.
func splitStreamName(name string) ([]string, error) {
	if name == "" {
		return nil, fmt.Errorf("stream name is empty")
	}
	if strings.HasPrefix(name, "/") {
		return nil, fmt.Errorf("stream name %q is absolute", name)
	}
	segments := strings.Split(name, "/")
	for _, segment := range segments {
		if !ValidName(segment) {
			return nil, fmt.Errorf("stream segment %q is not a sanitized name", segment)
		}
	}
	return segments, nil
}

func slugFor(originalFilename string) string {
	stem := strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename))
	return SanitizeName(stem)
}

func extensionFor(mimetype, originalFilename string) string {
	mt := strings.ToLower(strings.TrimSpace(mimetype))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if ext, ok := mimeExtensions[mt]; ok {
		return ext
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalFilename), "."))
	cleaned := make([]byte, 0, len(ext))
	for i := 0; i < len(ext) && len(cleaned) < 10; i++ {
		c := ext[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return "bin"
	}
	return string(cleaned)
}
