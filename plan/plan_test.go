package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dragginzgame/icydb-go/predicate"
	"github.com/dragginzgame/icydb-go/schema"
	"github.com/dragginzgame/icydb-go/value"
)

func widgetModel() *schema.EntityModel {
	return &schema.EntityModel{
		Name:       "widget",
		Path:       "widget",
		PrimaryKey: "id",
		Fields: []schema.FieldModel{
			{Name: "id", Kind: schema.Scalar(value.KindUint)},
			{Name: "owner", Kind: schema.Scalar(value.KindText)},
		},
		Indexes: []schema.IndexModel{
			{Name: "by_owner", Fields: []string{"owner"}},
		},
	}
}

func TestPlanAppendsPrimaryKeyTieBreak(t *testing.T) {
	lp, err := Plan(Query{EntityPath: "widget", Predicate: predicate.True()}, widgetModel())
	require.NoError(t, err)
	require.Equal(t, "id", lp.OrderBy[len(lp.OrderBy)-1].Field)
}

func TestPlanRejectsUnorderedPagination(t *testing.T) {
	limit := 10
	_, err := Plan(Query{EntityPath: "widget", Predicate: predicate.True(), Limit: &limit}, widgetModel())
	require.Error(t, err)
}

func TestPlanRejectsDeleteAndPaginateTogether(t *testing.T) {
	limit, del := 10, 5
	_, err := Plan(Query{
		EntityPath: "widget", Predicate: predicate.True(),
		OrderBy: []OrderTerm{{Field: "id"}}, Limit: &limit, DeleteLimit: &del,
	}, widgetModel())
	require.Error(t, err)
}

func TestPlanRejectsDeleteLimitWithoutOrdering(t *testing.T) {
	del := 5
	_, err := Plan(Query{EntityPath: "widget", Predicate: predicate.True(), DeleteLimit: &del}, widgetModel())
	require.Error(t, err)
}

func TestChoosePicksByKeyOnPrimaryKeyEquality(t *testing.T) {
	lp, err := Plan(Query{EntityPath: "widget", Predicate: predicate.Compare("id", predicate.OpEq, value.Uint(7))}, widgetModel())
	require.NoError(t, err)
	a := Choose(lp)
	require.Equal(t, AccessByKey, a.Kind)
}

func TestChoosePicksIndexPrefixOnIndexedEquality(t *testing.T) {
	lp, err := Plan(Query{EntityPath: "widget", Predicate: predicate.Compare("owner", predicate.OpEq, value.Text("alice"))}, widgetModel())
	require.NoError(t, err)
	a := Choose(lp)
	require.Equal(t, AccessIndexPrefix, a.Kind)
	require.Equal(t, "by_owner", a.IndexName)
}

func TestChoosePicksByKeysOnPrimaryKeyIn(t *testing.T) {
	lp, err := Plan(Query{
		EntityPath: "widget",
		Predicate:  predicate.In("id", []value.Value{value.Uint(1), value.Uint(2), value.Uint(3)}),
	}, widgetModel())
	require.NoError(t, err)
	a := Choose(lp)
	require.Equal(t, AccessByKeys, a.Kind)
	require.Len(t, a.Keys, 3)
}

func TestChoosePicksIndexUnionOnIndexedIn(t *testing.T) {
	lp, err := Plan(Query{
		EntityPath: "widget",
		Predicate:  predicate.In("owner", []value.Value{value.Text("alice"), value.Text("bob")}),
	}, widgetModel())
	require.NoError(t, err)
	a := Choose(lp)
	require.Equal(t, AccessUnion, a.Kind)
	require.Len(t, a.Children, 2)
	for _, c := range a.Children {
		require.Equal(t, AccessIndexPrefix, c.Kind)
		require.Equal(t, "by_owner", c.IndexName)
		require.Len(t, c.Prefix, 1)
	}
}

func TestChooseFallsBackToFullScanOnNotIn(t *testing.T) {
	lp, err := Plan(Query{
		EntityPath: "widget",
		Predicate:  predicate.NotIn("owner", []value.Value{value.Text("alice")}),
	}, widgetModel())
	require.NoError(t, err)
	a := Choose(lp)
	require.Equal(t, AccessFullScan, a.Kind)
}

func TestChooseFallsBackToFullScan(t *testing.T) {
	lp, err := Plan(Query{EntityPath: "widget", Predicate: predicate.True()}, widgetModel())
	require.NoError(t, err)
	a := Choose(lp)
	require.Equal(t, AccessFullScan, a.Kind)
}

func TestCanonicalizeFlattensNestedUnion(t *testing.T) {
	leaf := Access{Kind: AccessByKey, Key: value.Uint(1)}
	nested := Access{Kind: AccessUnion, Children: []Access{
		{Kind: AccessUnion, Children: []Access{leaf, leaf}},
		leaf,
	}}
	got := Canonicalize(nested)
	require.Equal(t, AccessUnion, got.Kind)
	require.Len(t, got.Children, 3)
}

func TestFingerprintStableAcrossEquivalentPlans(t *testing.T) {
	a, err := Plan(Query{EntityPath: "widget", Predicate: predicate.Compare("owner", predicate.OpEq, value.Text("alice"))}, widgetModel())
	require.NoError(t, err)
	b, err := Plan(Query{EntityPath: "widget", Predicate: predicate.And(predicate.True(), predicate.Compare("owner", predicate.OpEq, value.Text("alice")))}, widgetModel())
	require.NoError(t, err)
	require.Equal(t, Of(a), Of(b))
}

func TestPlanCacheRoundTrip(t *testing.T) {
	c, err := NewCache(10)
	require.NoError(t, err)
	lp, err := Plan(Query{EntityPath: "widget", Predicate: predicate.True()}, widgetModel())
	require.NoError(t, err)
	fp := Of(lp)
	a := Choose(lp)
	c.Put(fp, a)
	got, ok := c.Get(fp)
	require.True(t, ok)
	require.Equal(t, a, got)
}
