// Package key implements the engine's on-disk key and row shapes:
// DataKey / RawDataKey, RawRow, IndexKey / RawIndexKey and
// IndexEntry, all length-prefixed so lexicographic byte order matches
// canonical key order.
package key

// Size caps. MaxIndexFields is fixed by the wire encoding
// (one byte component_count, and the struct's fixed fingerprint array).
const (
	MaxRowBytes        = 4 * 1024 * 1024
	MaxIndexFields     = 4
	MaxIndexEntryBytes = 64 * 1024
	MaxTextPKBytes     = 32
)

// MaxPKSize is the largest encoded size across every supported primary
// key kind (see PKStoredSize).
const MaxPKSize = 2*MaxTextPKBytes + 2 // Text: every byte escaped, plus the two-byte terminator

// KeyPrefix is the fixed overhead at the front of every RawIndexKey:
// the 1-byte wire tag, the 16-byte IndexId and the 1-byte component
// count.
const KeyPrefix = 1 + 16 + 1

// MaxComponentSize is the largest a single index fingerprint component
// can be on the wire (the fingerprint itself is always 16 bytes; the
// length prefix is carried for uniformity, see indexkey.go).
const MaxComponentSize = 16

// MaxIndexKeyBytes is the hard cap on one RawIndexKey's encoded size
//: KEY_PREFIX + MAX_INDEX_FIELDS*(2+MAX_COMPONENT_SIZE) + (2+MAX_PK_SIZE).
const MaxIndexKeyBytes = KeyPrefix + MaxIndexFields*(2+MaxComponentSize) + (2 + MaxPKSize)
