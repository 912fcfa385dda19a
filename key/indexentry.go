package key

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/dragginzgame/icydb-go/icyerr"
)

// IndexEntry is the set of primary keys that currently map to one
// IndexKey: the index store's value type. Kept sorted so a
// unique index's "at most one member" invariant and a non-unique
// index's deterministic iteration order are both trivial to check.
type IndexEntry struct {
	pks []RawDataKey
}

// NewIndexEntry builds an IndexEntry from an initial set of primary
// keys, deduplicating and sorting them.
func NewIndexEntry(pks ...RawDataKey) IndexEntry {
	e := IndexEntry{}
	for _, pk := range pks {
		e.Add(pk)
	}
	return e
}

// Len reports the number of distinct primary keys in the entry.
func (e IndexEntry) Len() int { return len(e.pks) }

// PKs returns the entry's primary keys in sorted order. The returned
// slice must not be mutated.
func (e IndexEntry) PKs() []RawDataKey { return e.pks }

func (e *IndexEntry) find(pk RawDataKey) (int, bool) {
	i := sort.Search(len(e.pks), func(i int) bool { return bytes.Compare(e.pks[i], pk) >= 0 })
	return i, i < len(e.pks) && bytes.Equal(e.pks[i], pk)
}

// Add inserts pk if not already present, preserving sort order.
func (e *IndexEntry) Add(pk RawDataKey) {
	i, ok := e.find(pk)
	if ok {
		return
	}
	e.pks = append(e.pks, nil)
	copy(e.pks[i+1:], e.pks[i:])
	e.pks[i] = append(RawDataKey(nil), pk...)
}

// Remove deletes pk if present, reporting whether the entry is now
// empty.
func (e *IndexEntry) Remove(pk RawDataKey) (empty bool) {
	if i, ok := e.find(pk); ok {
		e.pks = append(e.pks[:i], e.pks[i+1:]...)
	}
	return len(e.pks) == 0
}

// RawIndexEntry is the physical encoding of an IndexEntry: count(4) +
// (len(2)‖pk)* in sorted order.
type RawIndexEntry []byte

// Encode serializes e. The caller is responsible for enforcing
// MaxIndexEntryBytes before persisting; Encode itself never
// fails.
func (e IndexEntry) Encode() RawIndexEntry {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(len(e.pks)))
	for _, pk := range e.pks {
		lenBuf := make([]byte, 2)
		binary.BigEndian.PutUint16(lenBuf, uint16(len(pk)))
		out = append(out, lenBuf...)
		out = append(out, pk...)
	}
	return RawIndexEntry(out)
}

// DecodeIndexEntry reverses Encode. A malformed length prefix or an
// entry exceeding MaxIndexEntryBytes is Corruption: both indicate
// persisted state the engine itself would never have produced.
func DecodeIndexEntry(raw RawIndexEntry) (IndexEntry, error) {
	b := []byte(raw)
	if len(b) > MaxIndexEntryBytes {
		return IndexEntry{}, icyerr.Corrupt(icyerr.OriginIndex, "index entry exceeds MaxIndexEntryBytes")
	}
	if len(b) < 4 {
		return IndexEntry{}, icyerr.Corrupt(icyerr.OriginIndex, "truncated index entry count")
	}
	count := binary.BigEndian.Uint32(b[:4])
	off := 4
	e := IndexEntry{pks: make([]RawDataKey, 0, count)}
	for i := uint32(0); i < count; i++ {
		if off+2 > len(b) {
			return IndexEntry{}, icyerr.Corrupt(icyerr.OriginIndex, "truncated index entry pk length")
		}
		l := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		if off+l > len(b) {
			return IndexEntry{}, icyerr.Corrupt(icyerr.OriginIndex, "truncated index entry pk bytes")
		}
		e.pks = append(e.pks, RawDataKey(append([]byte(nil), b[off:off+l]...)))
		off += l
	}
	if off != len(b) {
		return IndexEntry{}, icyerr.Corrupt(icyerr.OriginIndex, "trailing bytes in index entry")
	}
	for i := 1; i < len(e.pks); i++ {
		if bytes.Compare(e.pks[i-1], e.pks[i]) >= 0 {
			return IndexEntry{}, icyerr.Corrupt(icyerr.OriginIndex, "index entry pks not strictly sorted")
		}
	}
	return e, nil
}
