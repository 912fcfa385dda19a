package value

import (
	"bytes"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxPrincipalLen bounds a Principal's raw byte length.
const MaxPrincipalLen = 29

// MaxAccountOwnerLen bounds an Account owner's raw byte length; it doubles
// as the padded width used by the canonical encoder so fixed-width
// comparison matches semantic ordering.
const MaxAccountOwnerLen = 29

// AccountSubaccountLen is the fixed width of an Account's subaccount.
const AccountSubaccountLen = 32

// Account is the identifier pair the engine uses for ledger-style
// entities: an owner principal plus an optional 32-byte subaccount.
type Account struct {
	Owner      []byte
	Subaccount *[32]byte
}

// Enum is a named variant, optionally qualified by a path and carrying an
// optional scalar payload.
type Enum struct {
	Variant string
	Path    *string
	Payload *Value
}

// MapEntry is one key/value pair of a Map value, kept in canonical key
// order with unique keys.
type MapEntry struct {
	Key   Value
	Value Value
}

// Value is the engine's closed sum type. Go has no native sum
// types, so this is a tagged struct: exactly the fields implied by kind
// are meaningful, the rest are zero.
type Value struct {
	kind      Kind
	b         bool
	i         int64
	u         uint64
	f         float64
	dec       decimal.Decimal
	s         string
	blob      []byte
	ulid      [16]byte
	principal []byte
	account   Account
	enum      Enum
	list      []Value
	m         []MapEntry
}

func Null() Value { return Value{kind: KindNull} }
func Unit() Value { return Value{kind: KindUnit} }

func Bool(b bool) Value    { return Value{kind: KindBool, b: b} }
func Int(i int64) Value    { return Value{kind: KindInt, i: i} }
func Uint(u uint64) Value  { return Value{kind: KindUint, u: u} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func DecimalV(d decimal.Decimal) Value { return Value{kind: KindDecimal, dec: d} }
func Text(s string) Value  { return Value{kind: KindText, s: s} }
func Blob(b []byte) Value  { return Value{kind: KindBlob, blob: append([]byte(nil), b...)} }
func Ulid(u [16]byte) Value { return Value{kind: KindUlid, ulid: u} }
func Principal(p []byte) Value {
	return Value{kind: KindPrincipal, principal: append([]byte(nil), p...)}
}
func AccountV(a Account) Value { return Value{kind: KindAccount, account: a} }
func EnumV(e Enum) Value       { return Value{kind: KindEnum, enum: e} }
func List(vs []Value) Value    { return Value{kind: KindList, list: append([]Value(nil), vs...)} }

// MapV builds a Map value, sorting entries into canonical key order.
// Where several entries share a key, only the first of them in input
// order is kept (the sort is stable); callers that need strict
// uniqueness can compare the result's length with the input's.
func MapV(entries []MapEntry) Value {
	sorted := append([]MapEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Compare(sorted[i].Key, sorted[j].Key) < 0
	})
	out := sorted[:0:0]
	for i, e := range sorted {
		if i > 0 && Compare(sorted[i-1].Key, e.Key) == 0 {
			continue
		}
		out = append(out, e)
	}
	return Value{kind: KindMap, m: out}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool)       { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)       { return v.i, v.kind == KindInt }
func (v Value) AsUint() (uint64, bool)     { return v.u, v.kind == KindUint }
func (v Value) AsFloat() (float64, bool)   { return v.f, v.kind == KindFloat }
func (v Value) AsDecimal() (decimal.Decimal, bool) { return v.dec, v.kind == KindDecimal }
func (v Value) AsText() (string, bool)     { return v.s, v.kind == KindText }
func (v Value) AsBlob() ([]byte, bool)     { return v.blob, v.kind == KindBlob }
func (v Value) AsUlid() ([16]byte, bool)   { return v.ulid, v.kind == KindUlid }
func (v Value) AsPrincipal() ([]byte, bool) { return v.principal, v.kind == KindPrincipal }
func (v Value) AsAccount() (Account, bool) { return v.account, v.kind == KindAccount }
func (v Value) AsEnum() (Enum, bool)       { return v.enum, v.kind == KindEnum }
func (v Value) AsList() ([]Value, bool)    { return v.list, v.kind == KindList }
func (v Value) AsMap() ([]MapEntry, bool)  { return v.m, v.kind == KindMap }

// Compare implements canonical_cmp: a total order across every
// Value. Between variants it uses the canonical_tag; within a variant it
// matches the natural order of the underlying scalar, except Decimal
// (value-equal regardless of scale) and Float (deterministic NaN
// placement, matching the encoder's bit trick in codec.go).
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNull, KindUnit:
		return 0
	case KindBool:
		return boolCmp(a.b, b.b)
	case KindInt:
		return int64Cmp(a.i, b.i)
	case KindUint:
		return uint64Cmp(a.u, b.u)
	case KindFloat:
		return floatCmp(a.f, b.f)
	case KindDecimal:
		return a.dec.Cmp(b.dec)
	case KindText:
		return strings.Compare(a.s, b.s)
	case KindBlob:
		return bytes.Compare(a.blob, b.blob)
	case KindUlid:
		return bytes.Compare(a.ulid[:], b.ulid[:])
	case KindPrincipal:
		return bytes.Compare(a.principal, b.principal)
	case KindAccount:
		return accountCmp(a.account, b.account)
	case KindEnum:
		return enumCmp(a.enum, b.enum)
	case KindList:
		return listCmp(a.list, b.list)
	case KindMap:
		return mapCmp(a.m, b.m)
	default:
		return 0
	}
}

// Equal respects canonical form: values that normalize to the same
// canonical representation are equal even if their concrete
// representation differs (e.g. Decimal scale).
func Equal(a, b Value) bool { return Compare(a, b) == 0 }

func boolCmp(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func int64Cmp(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func uint64Cmp(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// floatCmp gives a deterministic total order including NaN, which sorts
// as strictly greater than every other float (matching the "one extreme"
// placement the byte codec produces, see codec.go).
func floatCmp(a, b float64) int {
	aNaN, bNaN := a != a, b != b
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func accountCmp(a, b Account) int {
	if c := bytes.Compare(a.Owner, b.Owner); c != 0 {
		return c
	}
	aHas, bHas := a.Subaccount != nil, b.Subaccount != nil
	if aHas != bHas {
		if !aHas {
			return -1
		}
		return 1
	}
	if !aHas {
		return 0
	}
	return bytes.Compare(a.Subaccount[:], b.Subaccount[:])
}

func enumCmp(a, b Enum) int {
	if c := strings.Compare(a.Variant, b.Variant); c != 0 {
		return c
	}
	aPath, bPath := "", ""
	if a.Path != nil {
		aPath = *a.Path
	}
	if b.Path != nil {
		bPath = *b.Path
	}
	if c := strings.Compare(aPath, bPath); c != 0 {
		return c
	}
	aHas, bHas := a.Payload != nil, b.Payload != nil
	if aHas != bHas {
		if !aHas {
			return -1
		}
		return 1
	}
	if !aHas {
		return 0
	}
	return Compare(*a.Payload, *b.Payload)
}

func listCmp(a, b []Value) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return int64Cmp(int64(len(a)), int64(len(b)))
}

func mapCmp(a, b []MapEntry) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i].Key, b[i].Key); c != 0 {
			return c
		}
		if c := Compare(a[i].Value, b[i].Value); c != 0 {
			return c
		}
	}
	return int64Cmp(int64(len(a)), int64(len(b)))
}
