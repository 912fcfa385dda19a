package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/schema"
	"github.com/dragginzgame/icydb-go/store"
	"github.com/dragginzgame/icydb-go/value"
)

func widgetModel() *schema.EntityModel {
	return &schema.EntityModel{
		Name: "widget", Path: "widget", PrimaryKey: "id",
		Fields: []schema.FieldModel{
			{Name: "id", Kind: schema.Scalar(value.KindUint)},
			{Name: "owner", Kind: schema.Scalar(value.KindText)},
		},
		Indexes: []schema.IndexModel{
			{Name: "by_owner", Fields: []string{"owner"}, Unique: true},
		},
	}
}

func pkFor(t *testing.T, id uint64) key.RawDataKey {
	dk, err := key.NewDataKey("widget", value.Uint(id))
	require.NoError(t, err)
	raw, err := dk.Encode()
	require.NoError(t, err)
	return raw
}

func TestDiffInsertOnly(t *testing.T) {
	deltas, err := Diff(widgetModel(), nil, Row{"owner": value.Text("alice")})
	require.NoError(t, err)
	require.Equal(t, CaseInsertOnly, deltas[0].Case())
}

func TestDiffUnchangedWhenIndexedFieldSame(t *testing.T) {
	before := Row{"owner": value.Text("alice")}
	after := Row{"owner": value.Text("alice")}
	deltas, err := Diff(widgetModel(), before, after)
	require.NoError(t, err)
	require.Equal(t, CaseUnchanged, deltas[0].Case())
}

func TestDiffKeyChangedWhenIndexedFieldDiffers(t *testing.T) {
	before := Row{"owner": value.Text("alice")}
	after := Row{"owner": value.Text("bob")}
	deltas, err := Diff(widgetModel(), before, after)
	require.NoError(t, err)
	require.Equal(t, CaseKeyChanged, deltas[0].Case())
}

func TestApplyAndUniqueConflict(t *testing.T) {
	model := widgetModel()
	stores := Stores{"by_owner": store.NewIndexStore()}

	pk1, pk2 := pkFor(t, 1), pkFor(t, 2)
	deltas, err := Diff(model, nil, Row{"owner": value.Text("alice")})
	require.NoError(t, err)
	require.NoError(t, Preflight(deltas, stores, pk1))
	require.NoError(t, Apply(deltas, stores, pk1))

	deltas2, err := Diff(model, nil, Row{"owner": value.Text("alice")})
	require.NoError(t, err)
	err = Preflight(deltas2, stores, pk2)
	require.Error(t, err)
	require.True(t, icyerr.Is(err, icyerr.Conflict))
}

func TestApplyKeyChangedMovesPK(t *testing.T) {
	model := widgetModel()
	stores := Stores{"by_owner": store.NewIndexStore()}
	pk := pkFor(t, 1)

	insertDeltas, _ := Diff(model, nil, Row{"owner": value.Text("alice")})
	require.NoError(t, Apply(insertDeltas, stores, pk))

	updateDeltas, _ := Diff(model, Row{"owner": value.Text("alice")}, Row{"owner": value.Text("bob")})
	require.NoError(t, Preflight(updateDeltas, stores, pk))
	require.NoError(t, Apply(updateDeltas, stores, pk))

	mismatches, err := Verify(model, model.Indexes[0], stores, func(yield func(key.RawDataKey, Row) bool) {
		yield(pk, Row{"owner": value.Text("bob")})
	})
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func TestRebuildFromScratch(t *testing.T) {
	model := widgetModel()
	stores := Stores{"by_owner": store.NewIndexStore()}
	rows := map[string]Row{
		string(pkFor(t, 1)): {"owner": value.Text("alice")},
		string(pkFor(t, 2)): {"owner": value.Text("bob")},
	}
	err := Rebuild(model, model.Indexes[0], stores, func(yield func(key.RawDataKey, Row) bool) {
		for pk, row := range rows {
			if !yield(key.RawDataKey(pk), row) {
				return
			}
		}
	})
	require.NoError(t, err)
	require.Equal(t, 2, stores["by_owner"].Len())
}
