package predicate

import (
	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/schema"
)

// Validate checks a predicate against an entity's declared shape: every
// referenced field must exist and be queryable, and every Compare
// node's operand must coerce against the field's declared kind.
func Validate(p Predicate, model *schema.EntityModel) error {
	switch p.Kind {
	case KindTrue, KindFalse:
		return nil
	case KindAnd, KindOr:
		for _, c := range p.Children {
			if err := Validate(c, model); err != nil {
				return err
			}
		}
		return nil
	case KindNot:
		if len(p.Children) != 1 {
			return icyerr.Invariant(icyerr.OriginQuery, "Not predicate must have exactly one child")
		}
		return Validate(p.Children[0], model)
	case KindCompare:
		f, ok := resolveQueryable(model, p.Field)
		if !ok {
			return icyerr.UnsupportedErr(icyerr.OriginQuery, "FieldNotQueryable{field=%s}", p.Field)
		}
		collection := f.Kind.List || f.Kind.Set
		if p.Op == OpIn || p.Op == OpNotIn {
			elems, ok := p.Operand.AsList()
			if !ok {
				return icyerr.UnsupportedErr(icyerr.OriginQuery, "In/NotIn operand must be a list {field=%s}", p.Field)
			}
			for _, elem := range elems {
				if Coerce(f.Kind.Scalar, elem.Kind(), collection, p.CI) == CoercionNone {
					return icyerr.UnsupportedErr(icyerr.OriginQuery, "IncompatibleCoercion{field=%s,operand=%s}", f.Kind.Scalar, elem.Kind())
				}
			}
			return nil
		}
		if Coerce(f.Kind.Scalar, p.Operand.Kind(), collection, p.CI) == CoercionNone {
			return icyerr.UnsupportedErr(icyerr.OriginQuery, "IncompatibleCoercion{field=%s,operand=%s}", f.Kind.Scalar, p.Operand.Kind())
		}
		return nil
	case KindIsNull, KindIsMissing:
		if _, ok := model.Field(p.Field); !ok {
			return icyerr.UnsupportedErr(icyerr.OriginQuery, "FieldNotFound{field=%s}", p.Field)
		}
		return nil
	case KindIsEmpty, KindIsNotEmpty:
		f, ok := model.Field(p.Field)
		if !ok {
			return icyerr.UnsupportedErr(icyerr.OriginQuery, "FieldNotFound{field=%s}", p.Field)
		}
		if !f.Kind.List && !f.Kind.Set && f.Kind.MapKey == nil {
			return icyerr.UnsupportedErr(icyerr.OriginQuery, "IsEmpty on non-collection field {field=%s}", p.Field)
		}
		return nil
	case KindTextContains:
		f, ok := resolveQueryable(model, p.Field)
		if !ok {
			return icyerr.UnsupportedErr(icyerr.OriginQuery, "FieldNotQueryable{field=%s}", p.Field)
		}
		if !f.Kind.IsScalar() || f.Kind.Scalar.String() != "Text" {
			return icyerr.UnsupportedErr(icyerr.OriginQuery, "TextContains on non-Text field {field=%s}", p.Field)
		}
		return nil
	default:
		return icyerr.Invariant(icyerr.OriginQuery, "unknown predicate kind %s", p.Kind)
	}
}

func resolveQueryable(model *schema.EntityModel, field string) (schema.FieldModel, bool) {
	f, ok := model.Field(field)
	if !ok || !f.Kind.Queryable() {
		return schema.FieldModel{}, false
	}
	return f, true
}
