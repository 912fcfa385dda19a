// Package executor runs a validated LogicalPlan's chosen Access over the
// engine's stores: it walks an ordered key stream, decodes
// rows on demand, evaluates the predicate, and applies whichever
// post-access phases the query asked for (filter, order, distinct,
// delete-limit, pagination).
package executor

import (
	"strings"

	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/predicate"
	"github.com/dragginzgame/icydb-go/value"
)

// Fields is a row's decoded field values, the same shape as index.Row
// kept independent here so executor never needs to import index.
type Fields map[string]value.Value

// Eval interprets a normalized predicate against one row's decoded
// fields.
func Eval(p predicate.Predicate, row Fields) (bool, error) {
	switch p.Kind {
	case predicate.KindTrue:
		return true, nil
	case predicate.KindFalse:
		return false, nil
	case predicate.KindAnd:
		for _, c := range p.Children {
			ok, err := Eval(c, row)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case predicate.KindOr:
		for _, c := range p.Children {
			ok, err := Eval(c, row)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case predicate.KindNot:
		ok, err := Eval(p.Children[0], row)
		return !ok, err
	case predicate.KindCompare:
		return evalCompare(p, row)
	case predicate.KindIsNull:
		v, ok := row[p.Field]
		return ok && v.IsNull(), nil
	case predicate.KindIsMissing:
		_, ok := row[p.Field]
		return !ok, nil
	case predicate.KindIsEmpty, predicate.KindIsNotEmpty:
		v, ok := row[p.Field]
		if !ok {
			return false, nil
		}
		empty := false
		if l, isList := v.AsList(); isList {
			empty = len(l) == 0
		} else if m, isMap := v.AsMap(); isMap {
			empty = len(m) == 0
		}
		if p.Kind == predicate.KindIsEmpty {
			return empty, nil
		}
		return !empty, nil
	case predicate.KindTextContains:
		v, ok := row[p.Field]
		if !ok {
			return false, nil
		}
		s, ok := v.AsText()
		if !ok {
			return false, nil
		}
		sub, _ := p.Operand.AsText()
		if p.CI {
			return strings.Contains(strings.ToLower(s), strings.ToLower(sub)), nil
		}
		return strings.Contains(s, sub), nil
	default:
		return false, icyerr.Invariant(icyerr.OriginExecutor, "unknown predicate kind %s", p.Kind)
	}
}

func evalCompare(p predicate.Predicate, row Fields) (bool, error) {
	v, ok := row[p.Field]
	if !ok || v.IsNull() {
		return false, nil
	}
	if p.Op == predicate.OpIn || p.Op == predicate.OpNotIn {
		return evalIn(p, v)
	}
	if _, isList := v.AsList(); isList {
		return evalCollectionElement(p, v)
	}
	c, err := predicate.CompareCoerced(predicate.Coerce(v.Kind(), p.Operand.Kind(), false, p.CI), v, p.Operand)
	if err != nil {
		return false, err
	}
	switch p.Op {
	case predicate.OpEq:
		return c == 0, nil
	case predicate.OpNe:
		return c != 0, nil
	case predicate.OpLt:
		return c < 0, nil
	case predicate.OpLe:
		return c <= 0, nil
	case predicate.OpGt:
		return c > 0, nil
	case predicate.OpGe:
		return c >= 0, nil
	default:
		return false, icyerr.Invariant(icyerr.OriginExecutor, "unknown compare op %s", p.Op)
	}
}

// evalIn evaluates an In/NotIn node: v matches if it coerces equal to
// any element of the operand list.
func evalIn(p predicate.Predicate, v value.Value) (bool, error) {
	elems, ok := p.Operand.AsList()
	if !ok {
		return false, icyerr.Invariant(icyerr.OriginExecutor, "In/NotIn operand is not a list")
	}
	found := false
	for _, elem := range elems {
		c, err := predicate.CompareCoerced(predicate.Coerce(v.Kind(), elem.Kind(), false, p.CI), v, elem)
		if err != nil {
			return false, err
		}
		if c == 0 {
			found = true
			break
		}
	}
	if p.Op == predicate.OpIn {
		return found, nil
	}
	return !found, nil
}

// evalCollectionElement evaluates Eq/Ne against a List/Set field: Eq
// asks whether the operand is a member, Ne whether it is not. The
// element kind is taken from the list's own first entry since the
// schema-declared element kind isn't available at eval time.
func evalCollectionElement(p predicate.Predicate, v value.Value) (bool, error) {
	elems, _ := v.AsList()
	elemKind := p.Operand.Kind()
	if len(elems) > 0 {
		elemKind = elems[0].Kind()
	}
	id := predicate.Coerce(elemKind, p.Operand.Kind(), true, p.CI)
	c, err := predicate.CompareCoerced(id, v, p.Operand)
	if err != nil {
		return false, err
	}
	found := c == 0
	switch p.Op {
	case predicate.OpEq:
		return found, nil
	case predicate.OpNe:
		return !found, nil
	default:
		return false, icyerr.Invariant(icyerr.OriginExecutor, "collection element compare only supports Eq/Ne, got %s", p.Op)
	}
}
