package core

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types persisted in the index store. Hand-written
// over the varint/ord primitives; the field order is the wire format and
// must not change without bumping the store layout.
var (
	IDMUS         = idMUS{}
	IndexEntryMUS = indexEntryMUS{}
	RunMarkerMUS  = runMarkerMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

// Timestamps travel as UnixMicro, matching the key encoding used by the
// saved-at index.
func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalStrings(ss []string, bs []byte) int {
	n := varint.Int.Marshal(len(ss), bs)
	for _, s := range ss {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) ([]string, int, error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if count < 0 {
		return nil, n, fmt.Errorf("negative string count %d", count)
	}
	if count == 0 {
		return nil, n, nil
	}
	ss := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s, sn, err := ord.String.Unmarshal(bs[n:])
		n += sn
		if err != nil {
			return nil, n, err
		}
		ss = append(ss, s)
	}
	return ss, n, nil
}

func sizeStrings(ss []string) int {
	size := varint.Int.Size(len(ss))
	for _, s := range ss {
		size += ord.String.Size(s)
	}
	return size
}

type indexEntryMUS struct{}

func (indexEntryMUS) Marshal(e IndexEntry, bs []byte) int {
	n := IDMUS.Marshal(e.Id, bs)
	n += ord.String.Marshal(e.Entity, bs[n:])
	n += ord.String.Marshal(e.Filename, bs[n:])
	n += ord.String.Marshal(e.ContentPath, bs[n:])
	n += ord.String.Marshal(e.MetadataPath, bs[n:])
	n += varint.Int.Marshal(int(e.Category), bs[n:])
	n += marshalTime(e.CreatedAt, bs[n:])
	n += marshalTime(e.SavedAt, bs[n:])
	n += marshalStrings(e.Tokens, bs[n:])
	return n
}

func (indexEntryMUS) Unmarshal(bs []byte) (IndexEntry, int, error) {
	var (
		e   IndexEntry
		n   int
		err error
	)
	if e.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return e, n, err
	}
	var sn int
	if e.Entity, sn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + sn, err
	}
	n += sn
	if e.Filename, sn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + sn, err
	}
	n += sn
	if e.ContentPath, sn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + sn, err
	}
	n += sn
	if e.MetadataPath, sn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + sn, err
	}
	n += sn
	var category int
	if category, sn, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return e, n + sn, err
	}
	n += sn
	e.Category = Category(category)
	if e.CreatedAt, sn, err = unmarshalTime(bs[n:]); err != nil {
		return e, n + sn, err
	}
	n += sn
	if e.SavedAt, sn, err = unmarshalTime(bs[n:]); err != nil {
		return e, n + sn, err
	}
	n += sn
	if e.Tokens, sn, err = unmarshalStrings(bs[n:]); err != nil {
		return e, n + sn, err
	}
	n += sn
	return e, n, nil
}

func (indexEntryMUS) Size(e IndexEntry) int {
	return IDMUS.Size(e.Id) +
		ord.String.Size(e.Entity) +
		ord.String.Size(e.Filename) +
		ord.String.Size(e.ContentPath) +
		ord.String.Size(e.MetadataPath) +
		varint.Int.Size(int(e.Category)) +
		sizeTime(e.CreatedAt) +
		sizeTime(e.SavedAt) +
		sizeStrings(e.Tokens)
}

type runMarkerMUS struct{}

func (runMarkerMUS) Marshal(m RunMarker, bs []byte) int {
	n := marshalTime(m.LastRunAt, bs)
	n += varint.Int.Marshal(m.Indexed, bs[n:])
	n += varint.Int.Marshal(m.Skipped, bs[n:])
	return n
}

func (runMarkerMUS) Unmarshal(bs []byte) (RunMarker, int, error) {
	var (
		m   RunMarker
		n   int
		err error
	)
	if m.LastRunAt, n, err = unmarshalTime(bs); err != nil {
		return m, n, err
	}
	var sn int
	if m.Indexed, sn, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return m, n + sn, err
	}
	n += sn
	if m.Skipped, sn, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return m, n + sn, err
	}
	n += sn
	return m, n, nil
}

func (runMarkerMUS) Size(m RunMarker) int {
	return sizeTime(m.LastRunAt) +
		varint.Int.Size(m.Indexed) +
		varint.Int.Size(m.Skipped)
}
