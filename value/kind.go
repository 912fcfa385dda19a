// Package value implements the engine's closed Value sum type:
// every storable scalar plus the two structured variants, a canonical
// total order across all of them, and a canonical ordering-preserving
// byte codec for the indexable subset.
package value

// Kind enumerates every Value variant. The numeric order IS the
// canonical_tag used to order values across variants.
type Kind uint8

const (
	KindNull Kind = iota
	KindUnit
	KindBool
	KindInt
	KindUint
	KindFloat
	KindDecimal
	KindText
	KindBlob
	KindUlid
	KindPrincipal
	KindAccount
	KindEnum
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindUnit:
		return "Unit"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindUint:
		return "Uint"
	case KindFloat:
		return "Float"
	case KindDecimal:
		return "Decimal"
	case KindText:
		return "Text"
	case KindBlob:
		return "Blob"
	case KindUlid:
		return "Ulid"
	case KindPrincipal:
		return "Principal"
	case KindAccount:
		return "Account"
	case KindEnum:
		return "Enum"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	default:
		return "Unknown"
	}
}

// CanonicalTag returns the one-byte stable tag used by hashing and
// ordering encoders.
func (k Kind) CanonicalTag() byte { return byte(k) }

// Family groups kinds for predicate coercion legality checks.
type Family uint8

const (
	FamilyNumeric Family = iota
	FamilyTextual
	FamilyIdentifier
	FamilyEnum
	FamilyBlob
	FamilyBool
	FamilyUnit
	FamilyCollection
)

// Family classifies a Kind for coercion-table lookups.
func (k Kind) Family() Family {
	switch k {
	case KindInt, KindUint, KindFloat, KindDecimal:
		return FamilyNumeric
	case KindText:
		return FamilyTextual
	case KindUlid, KindPrincipal, KindAccount:
		return FamilyIdentifier
	case KindEnum:
		return FamilyEnum
	case KindBlob:
		return FamilyBlob
	case KindBool:
		return FamilyBool
	case KindUnit, KindNull:
		return FamilyUnit
	default:
		return FamilyCollection
	}
}

// Indexable reports whether a Value of this kind can appear as an index
// key component. Null, Blob, List and Map cannot.
func (k Kind) Indexable() bool {
	switch k {
	case KindNull, KindBlob, KindList, KindMap:
		return false
	default:
		return true
	}
}
