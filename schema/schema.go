// Package schema is the engine's runtime view of an entity's declared
// shape. The code generator that would normally produce these from
// annotated structs is an external collaborator; this package only
// holds the data it would emit and the small amount of validation the
// engine itself needs before trusting a model.
package schema

import (
	"strings"

	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/value"
)

// Name length bounds.
const (
	MaxEntityNameBytes = 64
	MaxIndexNameBytes  = 200
)

// RelationStrength distinguishes relations whose target existence the
// engine verifies (Strong) from advisory ones (Weak).
type RelationStrength uint8

const (
	RelationWeak RelationStrength = iota
	RelationStrong
)

// FieldKind enumerates a field's declared shape: every value.Kind scalar
// plus the structured, collection, and relation shapes an entity field
// can take.
type FieldKind struct {
	Scalar    value.Kind // the scalar kind; for a List/Set field, the element kind
	List      bool
	Set       bool
	MapKey    *value.Kind
	MapValue  *value.Kind
	Relation  *RelationKind
	Structured *StructuredKind
}

type RelationKind struct {
	Target   string
	Strength RelationStrength
}

type StructuredKind struct {
	Queryable bool
}

func Scalar(k value.Kind) FieldKind { return FieldKind{Scalar: k} }

func (k FieldKind) IsScalar() bool {
	return !k.List && !k.Set && k.MapKey == nil && k.Relation == nil && k.Structured == nil
}

// Queryable reports whether a predicate may reference this field at all.
func (k FieldKind) Queryable() bool {
	if k.Structured != nil {
		return k.Structured.Queryable
	}
	if k.MapKey != nil {
		return false // maps are not queryable except via a dedicated map predicate
	}
	return true
}

// Indexable reports whether this field kind can contribute an index
// component; structured shapes never can.
func (k FieldKind) Indexable() bool {
	return k.IsScalar() && k.Scalar.Indexable()
}

// FieldModel is one declared field of an entity.
type FieldModel struct {
	Name string
	Kind FieldKind
}

// IndexModel declares one secondary index over an ordered list of fields.
type IndexModel struct {
	Name   string
	Store  string
	Fields []string
	Unique bool
}

// EntityModel is the runtime shape of one entity.
type EntityModel struct {
	Name        string
	Path        string
	Fields      []FieldModel
	PrimaryKey  string // references a Fields[i].Name
	Indexes     []IndexModel
}

// Field looks up a field by name.
func (m *EntityModel) Field(name string) (FieldModel, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldModel{}, false
}

// PrimaryKeyField resolves the declared primary-key field.
func (m *EntityModel) PrimaryKeyField() (FieldModel, bool) {
	return m.Field(m.PrimaryKey)
}

// Index looks up a declared index by name.
func (m *EntityModel) Index(name string) (IndexModel, bool) {
	for _, ix := range m.Indexes {
		if ix.Name == name {
			return ix, true
		}
	}
	return IndexModel{}, false
}

// Validate checks the structural invariants every EntityModel must hold:
// ASCII bounded names, a resolvable primary key, indexes that reference
// existing fields with a bounded composite name.
func (m *EntityModel) Validate() error {
	if m.Name == "" || len(m.Name) > MaxEntityNameBytes || !isASCII(m.Name) {
		return icyerr.New(icyerr.Unsupported, icyerr.OriginInterface, "entity name invalid: "+m.Name)
	}
	if _, ok := m.PrimaryKeyField(); !ok {
		return icyerr.New(icyerr.Unsupported, icyerr.OriginInterface, "primary key field not found: "+m.PrimaryKey)
	}
	seen := map[string]bool{}
	for _, f := range m.Fields {
		if seen[f.Name] {
			return icyerr.New(icyerr.Unsupported, icyerr.OriginInterface, "duplicate field: "+f.Name)
		}
		seen[f.Name] = true
	}
	for _, ix := range m.Indexes {
		full := m.Name + "|" + strings.Join(ix.Fields, ",")
		if len(full) > MaxIndexNameBytes {
			return icyerr.New(icyerr.Unsupported, icyerr.OriginInterface, "index name too long: "+full)
		}
		if len(ix.Fields) == 0 {
			return icyerr.New(icyerr.Unsupported, icyerr.OriginInterface, "index has no fields: "+ix.Name)
		}
		for _, fname := range ix.Fields {
			if _, ok := m.Field(fname); !ok {
				return icyerr.New(icyerr.Unsupported, icyerr.OriginInterface, "index field not found: "+fname)
			}
		}
	}
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}
