package key

import (
	"encoding/binary"
	"strings"

	"lukechampine.com/blake3"

	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/value"
)

// IndexId is the derived identity of one declared index: a 16-byte
// fingerprint of the entity name and ordered field list, so two indexes
// over different field sets never collide on the wire even if their
// component counts match.
type IndexId [16]byte

// DeriveIndexId computes the IndexId for one index declaration. It is
// pure and deterministic: the same (entity, fields) always derives the
// same id, which is what lets the index store key on it directly instead
// of the index's human-readable name.
func DeriveIndexId(entityName string, fields []string) IndexId {
	h := blake3.New(16, nil)
	_, _ = h.Write([]byte(entityName))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strings.Join(fields, ",")))
	var out IndexId
	copy(out[:], h.Sum(nil))
	return out
}

const indexKeyTag byte = 0xA1

// IndexKey is the logical address of one row under one secondary index:
// the index's identity plus the per-field fingerprints of the indexed
// values, in field order. It carries no primary key; the set
// of primary keys sharing one IndexKey is the associated IndexEntry.
type IndexKey struct {
	Index        IndexId
	Fingerprints [MaxIndexFields][16]byte
	Len          uint8
}

// NewIndexKey fingerprints each value in order and assembles the
// IndexKey. len(values) must be within [1, MaxIndexFields].
func NewIndexKey(idx IndexId, values []value.Value) (IndexKey, error) {
	if len(values) == 0 || len(values) > MaxIndexFields {
		return IndexKey{}, icyerr.Invariant(icyerr.OriginIndex, "index component count out of range: %d", len(values))
	}
	k := IndexKey{Index: idx, Len: uint8(len(values))}
	for i, v := range values {
		fp, err := value.Fingerprint16(v)
		if err != nil {
			return IndexKey{}, err
		}
		k.Fingerprints[i] = fp
	}
	return k, nil
}

// RawIndexKey is the physical encoding of an IndexKey used as a btree
// key in the index store: tag | index_id | component_count |
// (len‖fingerprint)*. The length prefix on each fixed-size fingerprint is
// redundant today but keeps the wire shape uniform with the physical
// path encoding below, and leaves room for variable-width components
// without a format break.
type RawIndexKey []byte

// Encode produces the RawIndexKey bytes for k.
func (k IndexKey) Encode() RawIndexKey {
	out := make([]byte, 0, KeyPrefix+int(k.Len)*(2+MaxComponentSize))
	out = append(out, indexKeyTag)
	out = append(out, k.Index[:]...)
	out = append(out, k.Len)
	for i := 0; i < int(k.Len); i++ {
		lenBuf := make([]byte, 2)
		binary.BigEndian.PutUint16(lenBuf, MaxComponentSize)
		out = append(out, lenBuf...)
		out = append(out, k.Fingerprints[i][:]...)
	}
	return RawIndexKey(out)
}

// DecodeIndexKey reverses Encode, validating every length prefix and
// rejecting component counts outside [1, MaxIndexFields] as Corruption:
// a well-formed engine never writes such a key.
func DecodeIndexKey(raw RawIndexKey) (IndexKey, error) {
	b := []byte(raw)
	if len(b) < KeyPrefix || b[0] != indexKeyTag {
		return IndexKey{}, icyerr.Corrupt(icyerr.OriginIndex, "malformed index key tag")
	}
	var k IndexKey
	copy(k.Index[:], b[1:17])
	count := b[17]
	if count == 0 || count > MaxIndexFields {
		return IndexKey{}, icyerr.Corrupt(icyerr.OriginIndex, "index key component count out of range: %d", count)
	}
	k.Len = count
	off := KeyPrefix
	for i := 0; i < int(count); i++ {
		if off+2 > len(b) {
			return IndexKey{}, icyerr.Corrupt(icyerr.OriginIndex, "truncated index key component length")
		}
		l := binary.BigEndian.Uint16(b[off : off+2])
		off += 2
		if l != MaxComponentSize || off+int(l) > len(b) {
			return IndexKey{}, icyerr.Corrupt(icyerr.OriginIndex, "malformed index key component")
		}
		copy(k.Fingerprints[i][:], b[off:off+int(l)])
		off += int(l)
	}
	if off != len(b) {
		return IndexKey{}, icyerr.Corrupt(icyerr.OriginIndex, "trailing bytes in index key")
	}
	return k, nil
}

// PhysicalPath is a RawIndexKey extended with one row's primary key
// bytes: a single byte-sortable token for one (IndexKey, PK) pair.
// The index store itself never keys on this form — its keys are plain
// RawIndexKey, with the PK set carried in the IndexEntry value — and no
// code in this module calls it: the executor's union and intersection
// merge plain RawDataKey sets.
func PhysicalPath(k IndexKey, pk RawDataKey) []byte {
	out := append([]byte(nil), k.Encode()...)
	lenBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBuf, uint16(len(pk)))
	out = append(out, lenBuf...)
	out = append(out, pk...)
	return out
}
