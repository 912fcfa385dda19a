// Package predicate implements the engine's query filter AST: a small
// boolean algebra over field comparisons, a coercion
// table deciding which field/literal kind pairs may be compared, a
// normalization pass that puts semantically equal predicates into one
// canonical shape, and a fingerprint of that shape for plan caching.
package predicate

import "github.com/dragginzgame/icydb-go/value"

// Kind tags one AST node.
type Kind uint8

const (
	KindTrue Kind = iota
	KindFalse
	KindAnd
	KindOr
	KindNot
	KindCompare
	KindIsNull
	KindIsMissing
	KindIsEmpty
	KindIsNotEmpty
	KindTextContains
)

// CompareOp is the comparison operator of a Compare node.
type CompareOp uint8

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpIn
	OpNotIn
)

// Predicate is the engine's filter AST, a closed tagged-struct sum type
// in the same style as value.Value: only the fields meaningful for Kind
// are populated.
type Predicate struct {
	Kind     Kind
	Children []Predicate // And/Or: every operand. Not: exactly one, at index 0.
	Field    string       // Compare/IsNull/IsMissing/IsEmpty/IsNotEmpty/TextContains
	Op       CompareOp    // Compare
	Operand  value.Value  // Compare (rhs literal, or value.List for In/NotIn), TextContains (substring as value.Text)
	CI       bool         // Compare (case-insensitive text compare), TextContains (case-insensitive substring)
}

func True() Predicate  { return Predicate{Kind: KindTrue} }
func False() Predicate { return Predicate{Kind: KindFalse} }

func And(ps ...Predicate) Predicate { return Predicate{Kind: KindAnd, Children: ps} }
func Or(ps ...Predicate) Predicate  { return Predicate{Kind: KindOr, Children: ps} }
func Not(p Predicate) Predicate     { return Predicate{Kind: KindNot, Children: []Predicate{p}} }

func Compare(field string, op CompareOp, v value.Value) Predicate {
	return Predicate{Kind: KindCompare, Field: field, Op: op, Operand: v}
}

// CompareFold is Compare's case-insensitive form, legal only when field
// and v are both Text.
func CompareFold(field string, op CompareOp, v value.Value) Predicate {
	return Predicate{Kind: KindCompare, Field: field, Op: op, Operand: v, CI: true}
}

// In builds a Compare node matching when field equals any of values.
func In(field string, values []value.Value) Predicate {
	return Predicate{Kind: KindCompare, Field: field, Op: OpIn, Operand: value.List(values)}
}

// NotIn builds a Compare node matching when field equals none of values.
func NotIn(field string, values []value.Value) Predicate {
	return Predicate{Kind: KindCompare, Field: field, Op: OpNotIn, Operand: value.List(values)}
}

func IsNull(field string) Predicate      { return Predicate{Kind: KindIsNull, Field: field} }
func IsMissing(field string) Predicate   { return Predicate{Kind: KindIsMissing, Field: field} }
func IsEmpty(field string) Predicate     { return Predicate{Kind: KindIsEmpty, Field: field} }
func IsNotEmpty(field string) Predicate  { return Predicate{Kind: KindIsNotEmpty, Field: field} }

func TextContains(field, substr string, ci bool) Predicate {
	return Predicate{Kind: KindTextContains, Field: field, Operand: value.Text(substr), CI: ci}
}

func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "Eq"
	case OpNe:
		return "Ne"
	case OpLt:
		return "Lt"
	case OpLe:
		return "Le"
	case OpGt:
		return "Gt"
	case OpGe:
		return "Ge"
	case OpIn:
		return "In"
	case OpNotIn:
		return "NotIn"
	default:
		return "Unknown"
	}
}

func (k Kind) String() string {
	switch k {
	case KindTrue:
		return "True"
	case KindFalse:
		return "False"
	case KindAnd:
		return "And"
	case KindOr:
		return "Or"
	case KindNot:
		return "Not"
	case KindCompare:
		return "Compare"
	case KindIsNull:
		return "IsNull"
	case KindIsMissing:
		return "IsMissing"
	case KindIsEmpty:
		return "IsEmpty"
	case KindIsNotEmpty:
		return "IsNotEmpty"
	case KindTextContains:
		return "TextContains"
	default:
		return "Unknown"
	}
}
