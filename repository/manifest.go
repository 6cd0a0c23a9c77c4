package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/archivit/core"
)

// ManifestName is the per-entity audit log filename.
const ManifestName = "manifest.log"

// manifestRecord is one line of the append-only audit trail. It duplicates
// just enough of the sidecar to reconstruct write order without reading the
// tree.
type manifestRecord struct {
	SavedAt     time.Time `json:"saved_at"`
	Category    string    `json:"type"`
	ContentPath string    `json:"content_path"`
	ContentHash string    `json:"content_hash,omitempty"`
	Size        int64     `json:"size"`
}

// appendManifest appends one JSON line to {entity}/manifest.log. The line is
// emitted in a single Write call on an O_APPEND descriptor, so concurrent
// writers interleave at record granularity.
func (w *Writer) appendManifest(md *core.DocumentMetadata) error {
	rec := manifestRecord{
		SavedAt:     md.SavedAt,
		Category:    md.Category.String(),
		ContentPath: md.ContentPath,
		ContentHash: md.ContentHash,
		Size:        md.Size,
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	path := filepath.Join(w.base, md.Entity, ManifestName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(line)
	return err
}
