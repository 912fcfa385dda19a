package key

import "github.com/dragginzgame/icydb-go/icyerr"

// RawRow is one row's serialized entity bytes, as the schema collaborator's
// codec produced them. The engine never interprets the payload;
// it only enforces the size cap and carries it opaquely between the store
// and the caller's (de)serialize hooks.
type RawRow []byte

// NewRawRow validates a freshly produced row payload against MaxRowBytes.
// Oversized input here is Unsupported: the caller handed the engine
// something it refuses to accept, as opposed to oversized bytes read back
// from the store, which would indicate Corruption.
func NewRawRow(b []byte) (RawRow, error) {
	if len(b) > MaxRowBytes {
		return nil, icyerr.UnsupportedErr(icyerr.OriginSerialize, "RowTooLarge{size=%d,max=%d}", len(b), MaxRowBytes)
	}
	return RawRow(append([]byte(nil), b...)), nil
}

// DecodeRawRow validates bytes read back from storage. A row found larger
// than MaxRowBytes here can only mean the persisted state is inconsistent
// with an invariant the engine itself enforces at write time, so this is
// Corruption rather than Unsupported.
func DecodeRawRow(b []byte) (RawRow, error) {
	if len(b) > MaxRowBytes {
		return nil, icyerr.Corrupt(icyerr.OriginStore, "RowTooLarge{size=%d,max=%d}", len(b), MaxRowBytes)
	}
	return RawRow(b), nil
}
