package key

import (
	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/value"
)

// DataKey identifies one row within one entity's data store: the
// entity's declared path plus the row's primary-key value.
// Each entity owns its own ordered map, so the path is
// carried for identification and commit-row-op addressing, not for
// ordering within a single store.
type DataKey struct {
	EntityPath string
	PK         value.Value
}

// PKStoredSize returns the upper bound on an encoded primary key's byte
// length for a given Kind. Only kinds
// the engine accepts as primary keys are covered; every other kind is
// rejected by NewDataKey before a size is ever needed.
func PKStoredSize(k value.Kind) (int, bool) {
	switch k {
	case value.KindUlid:
		return 16, true
	case value.KindUint, value.KindInt:
		return 8, true
	case value.KindPrincipal:
		// encodeTextBytes worst case: every byte is 0x00 and gets escaped,
		// plus the two-byte terminator.
		return 2*value.MaxPrincipalLen + 2, true
	case value.KindAccount:
		return 1 + value.MaxAccountOwnerLen + value.AccountSubaccountLen, true
	case value.KindText:
		return 2*MaxTextPKBytes + 2, true
	default:
		return 0, false
	}
}

// NewDataKey validates that pk is a kind and size the engine accepts as
// a primary key, rejecting out-of-bounds inputs at construction
// (Unsupported), never deferring the check to decode time.
func NewDataKey(entityPath string, pk value.Value) (DataKey, error) {
	limit, ok := PKStoredSize(pk.Kind())
	if !ok {
		return DataKey{}, icyerr.UnsupportedErr(icyerr.OriginStore, "UnsupportedPrimaryKeyKind{kind=%s}", pk.Kind())
	}
	if pk.Kind() == value.KindText {
		s, _ := pk.AsText()
		if len(s) > MaxTextPKBytes {
			return DataKey{}, icyerr.UnsupportedErr(icyerr.OriginStore, "PrimaryKeyTooLarge{max=%d}", MaxTextPKBytes)
		}
	}
	enc, err := value.EncodeComponent(pk)
	if err != nil {
		return DataKey{}, icyerr.UnsupportedErr(icyerr.OriginStore, "primary key not encodable: %v", err)
	}
	if len(enc) > limit {
		return DataKey{}, icyerr.UnsupportedErr(icyerr.OriginStore, "PrimaryKeyTooLarge{max=%d}", limit)
	}
	return DataKey{EntityPath: entityPath, PK: pk}, nil
}

// RawDataKey is the physical key stored in a per-entity ordered map: the
// primary key's canonical encoding, self-delimiting by construction
// (fixed width for Ulid/Uint/Int/Account, 0x00 0x00-terminated for
// Principal/Text), so lexicographic order over RawDataKey bytes equals
// canonical_cmp over the decoded PK.
type RawDataKey []byte

// Encode produces the RawDataKey bytes for a DataKey's primary key.
func (k DataKey) Encode() (RawDataKey, error) {
	enc, err := value.EncodeComponent(k.PK)
	if err != nil {
		return nil, err
	}
	return RawDataKey(enc), nil
}

// DecodeDataKey reconstructs the primary key Value from a RawDataKey, given the
// expected PK Kind declared by the entity's schema. Any inconsistency
// between stored bytes and a well-formed encoding of that kind is a
// Corruption error, never Unsupported: the size-acceptance check only
// applies at construction time.
func DecodeDataKey(kind value.Kind, raw RawDataKey) (value.Value, error) {
	limit, ok := PKStoredSize(kind)
	if !ok {
		return value.Value{}, icyerr.Corrupt(icyerr.OriginStore, "UnsupportedPrimaryKeyKind{kind=%s}", kind)
	}
	if len(raw) > limit {
		return value.Value{}, icyerr.Corrupt(icyerr.OriginStore, "RawDataKey exceeds STORED_SIZE for kind=%s", kind)
	}
	return value.DecodeComponent(kind, raw)
}
