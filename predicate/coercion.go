package predicate

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/value"
)

// CoercionId identifies how a field's declared kind and a literal
// operand's kind may be compared. The identity is distinct
// from "are they the same Kind": two different numeric Kinds coerce to
// a shared magnitude comparison, while two different identifier Kinds
// never coerce at all.
type CoercionId uint8

const (
	CoercionNone CoercionId = iota
	CoercionIdentity          // same Kind, compared with value.Compare directly
	CoercionNumeric           // both FamilyNumeric, compared as decimal magnitude
	CoercionTextCasefold      // both Text, compared case-insensitively
	CoercionCollectionElement // field is a List/Set, operand tested for membership
)

// Coerce returns the CoercionId legal for comparing a field of kind
// fieldKind against a literal of kind litKind. collection marks a
// List/Set field, where fieldKind is the element kind and the
// resulting coercion tests membership rather than equality. ci requests
// case-insensitive text comparison, legal only between two Text values.
func Coerce(fieldKind, litKind value.Kind, collection, ci bool) CoercionId {
	if collection {
		if fieldKind == litKind || bothNumeric(fieldKind, litKind) {
			return CoercionCollectionElement
		}
		return CoercionNone
	}
	if ci {
		if fieldKind == value.KindText && litKind == value.KindText {
			return CoercionTextCasefold
		}
		return CoercionNone
	}
	if fieldKind == litKind {
		return CoercionIdentity
	}
	if bothNumeric(fieldKind, litKind) {
		return CoercionNumeric
	}
	return CoercionNone
}

func bothNumeric(a, b value.Kind) bool {
	return a.Family() == value.FamilyNumeric && b.Family() == value.FamilyNumeric
}

// CompareCoerced compares a field value against a literal operand under
// the given CoercionId, returning the same -1/0/1 convention as
// value.Compare. Numeric coercion promotes both operands to
// decimal.Decimal so Int, Uint, Float and Decimal fields all compare
// correctly against a literal of any other numeric kind.
// CoercionCollectionElement instead returns 0 when operand equals any
// element of field's list and a nonzero value otherwise, so Eq/Ne read
// as "is a member"/"is not a member".
func CompareCoerced(id CoercionId, field, operand value.Value) (int, error) {
	switch id {
	case CoercionIdentity:
		return value.Compare(field, operand), nil
	case CoercionNumeric:
		fd, err := toDecimal(field)
		if err != nil {
			return 0, err
		}
		od, err := toDecimal(operand)
		if err != nil {
			return 0, err
		}
		return fd.Cmp(od), nil
	case CoercionTextCasefold:
		fs, _ := field.AsText()
		os, _ := operand.AsText()
		return strings.Compare(strings.ToLower(fs), strings.ToLower(os)), nil
	case CoercionCollectionElement:
		elems, _ := field.AsList()
		for _, e := range elems {
			if value.Compare(e, operand) == 0 {
				return 0, nil
			}
		}
		return 1, nil
	default:
		return 0, icyerr.UnsupportedErr(icyerr.OriginQuery, "IncompatibleCoercion{field=%s,operand=%s}", field.Kind(), operand.Kind())
	}
}

func toDecimal(v value.Value) (decimal.Decimal, error) {
	switch v.Kind() {
	case value.KindInt:
		i, _ := v.AsInt()
		return decimal.NewFromInt(i), nil
	case value.KindUint:
		u, _ := v.AsUint()
		return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0), nil
	case value.KindFloat:
		f, _ := v.AsFloat()
		return decimal.NewFromFloat(f), nil
	case value.KindDecimal:
		d, _ := v.AsDecimal()
		return d, nil
	default:
		return decimal.Decimal{}, icyerr.Invariant(icyerr.OriginQuery, "toDecimal called on non-numeric kind %s", v.Kind())
	}
}
