package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/archivit/core"
)

// Key prefixes for different data types
const (
	indexEntryPrefix        = "identry"
	indexEntrySavedAtPrefix = "identrysav"
	runMarkerKeyName        = "idxrun"
)

// makeEntryKey generates a key for an index entry by ID.
func makeEntryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", indexEntryPrefix, id))
}

// makeSavedAtKey generates a composite key for the saved-at index.
// Format: prefix:timestamp:id
func makeSavedAtKey(savedAt time.Time, id core.ID) []byte {
	prefix := indexEntrySavedAtPrefix + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(savedAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeRunMarkerKey generates the key for the index run checkpoint.
func makeRunMarkerKey() []byte {
	return []byte(runMarkerKeyName + ":chkpt")
}
