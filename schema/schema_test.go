package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dragginzgame/icydb-go/value"
)

func validModel() *EntityModel {
	return &EntityModel{
		Name:       "widget",
		Path:       "widget",
		PrimaryKey: "id",
		Fields: []FieldModel{
			{Name: "id", Kind: Scalar(value.KindUint)},
			{Name: "owner", Kind: Scalar(value.KindText)},
		},
		Indexes: []IndexModel{
			{Name: "by_owner", Fields: []string{"owner"}},
		},
	}
}

func TestValidateAcceptsWellFormedModel(t *testing.T) {
	require.NoError(t, validModel().Validate())
}

func TestValidateRejectsMissingPrimaryKey(t *testing.T) {
	m := validModel()
	m.PrimaryKey = "nonexistent"
	require.Error(t, m.Validate())
}

func TestValidateRejectsDuplicateFieldNames(t *testing.T) {
	m := validModel()
	m.Fields = append(m.Fields, FieldModel{Name: "id", Kind: Scalar(value.KindUint)})
	require.Error(t, m.Validate())
}

func TestValidateRejectsIndexOnUnknownField(t *testing.T) {
	m := validModel()
	m.Indexes = append(m.Indexes, IndexModel{Name: "by_ghost", Fields: []string{"ghost"}})
	require.Error(t, m.Validate())
}

func TestValidateRejectsIndexWithNoFields(t *testing.T) {
	m := validModel()
	m.Indexes = append(m.Indexes, IndexModel{Name: "empty"})
	require.Error(t, m.Validate())
}

func TestFieldKindQueryableAndIndexable(t *testing.T) {
	scalar := Scalar(value.KindText)
	require.True(t, scalar.Queryable())
	require.True(t, scalar.Indexable())

	mapKind := FieldKind{MapKey: ptr(value.KindText), MapValue: ptr(value.KindInt)}
	require.False(t, mapKind.Queryable())
	require.False(t, mapKind.Indexable())

	structured := FieldKind{Structured: &StructuredKind{Queryable: true}}
	require.True(t, structured.Queryable())
	require.False(t, structured.Indexable())
}

func ptr[T any](v T) *T { return &v }
