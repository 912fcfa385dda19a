package executor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dragginzgame/icydb-go/cursor"
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/plan"
	"github.com/dragginzgame/icydb-go/predicate"
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
			{Name: "price", Kind: schema.Scalar(value.KindDecimal)},
		},
		Indexes: []schema.IndexModel{
			{Name: "by_owner", Fields: []string{"owner"}, Unique: false},
		},
	}
}

// encodeWidget is a stand-in for a generated entity codec: it encodes a
// row as three length-prefixed components in field order, just enough
// to exercise the executor pipeline without pulling in examples/fixture.
func encodeWidget(id uint64, owner string, price value.Value) key.RawRow {
	idb, _ := value.EncodeComponent(value.Uint(id))
	ownb, _ := value.EncodeComponent(value.Text(owner))
	priceb, _ := value.EncodeComponent(price)
	out := append([]byte{byte(len(idb))}, idb...)
	out = append(out, byte(len(ownb)))
	out = append(out, ownb...)
	out = append(out, byte(len(priceb)))
	out = append(out, priceb...)
	return key.RawRow(out)
}

func decodeWidget(raw key.RawRow) (Fields, error) {
	b := []byte(raw)
	idLen := int(b[0])
	id, err := value.DecodeComponent(value.KindUint, b[1:1+idLen])
	if err != nil {
		return nil, err
	}
	off := 1 + idLen
	ownLen := int(b[off])
	off++
	owner, err := value.DecodeComponent(value.KindText, b[off:off+ownLen])
	if err != nil {
		return nil, err
	}
	off += ownLen
	priceLen := int(b[off])
	off++
	price, err := value.DecodeComponent(value.KindDecimal, b[off:off+priceLen])
	if err != nil {
		return nil, err
	}
	return Fields{"id": id, "owner": owner, "price": price}, nil
}

func seedStore(t *testing.T) (*store.DataStore, map[string]*store.IndexStore) {
	t.Helper()
	ds := store.NewDataStore()
	put := func(id uint64, owner string, price string) {
		dk, err := key.NewDataKey("widget", value.Uint(id))
		require.NoError(t, err)
		raw, err := dk.Encode()
		require.NoError(t, err)
		d, err := decimal.NewFromString(price)
		require.NoError(t, err)
		ds.Put(raw, encodeWidget(id, owner, value.DecimalV(d)))
	}
	put(1, "alice", "10.00")
	put(2, "bob", "20.00")
	put(3, "alice", "30.00")
	ixs := map[string]*store.IndexStore{"by_owner": store.NewIndexStore()}
	return ds, ixs
}

func TestEvalCompareEq(t *testing.T) {
	row := Fields{"owner": value.Text("alice")}
	p := predicate.Compare("owner", predicate.OpEq, value.Text("alice"))
	ok, err := Eval(p, row)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvalIsMissing(t *testing.T) {
	row := Fields{"owner": value.Text("alice")}
	p := predicate.IsMissing("nope")
	ok, err := Eval(p, row)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvalCompareIn(t *testing.T) {
	row := Fields{"owner": value.Text("bob")}
	p := predicate.In("owner", []value.Value{value.Text("alice"), value.Text("bob")})
	ok, err := Eval(p, row)
	require.NoError(t, err)
	require.True(t, ok)

	p = predicate.In("owner", []value.Value{value.Text("alice")})
	ok, err = Eval(p, row)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvalCompareNotIn(t *testing.T) {
	row := Fields{"owner": value.Text("carol")}
	p := predicate.NotIn("owner", []value.Value{value.Text("alice"), value.Text("bob")})
	ok, err := Eval(p, row)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvalCompareFoldIsCaseInsensitive(t *testing.T) {
	row := Fields{"owner": value.Text("Alice")}
	p := predicate.CompareFold("owner", predicate.OpEq, value.Text("alice"))
	ok, err := Eval(p, row)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvalTextContainsCaseInsensitive(t *testing.T) {
	row := Fields{"owner": value.Text("ALICE SMITH")}
	ok, err := Eval(predicate.TextContains("owner", "alice", true), row)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Eval(predicate.TextContains("owner", "alice", false), row)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvalCollectionElementMembership(t *testing.T) {
	row := Fields{"tags": value.List([]value.Value{value.Text("red"), value.Text("blue")})}
	ok, err := Eval(predicate.Compare("tags", predicate.OpEq, value.Text("blue")), row)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Eval(predicate.Compare("tags", predicate.OpNe, value.Text("blue")), row)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolveFullScanOrdersByPK(t *testing.T) {
	ds, ixs := seedStore(t)
	stream, err := Resolve(plan.Access{Kind: plan.AccessFullScan}, ds, ixs)
	require.NoError(t, err)
	require.Len(t, stream.Keys, 3)
	require.True(t, stream.PKOrdered)
}

func TestResolveByKey(t *testing.T) {
	ds, ixs := seedStore(t)
	stream, err := Resolve(plan.Access{Kind: plan.AccessByKey, Key: value.Uint(2)}, ds, ixs)
	require.NoError(t, err)
	require.Len(t, stream.Keys, 1)
}

func TestExecuteFilterAndOrder(t *testing.T) {
	ds, ixs := seedStore(t)
	model := widgetModel()
	q := plan.Query{
		EntityPath: "widget",
		Predicate:  predicate.Compare("owner", predicate.OpEq, value.Text("alice")),
		OrderBy:    []plan.OrderTerm{{Field: "id", Direction: plan.Ascending}},
	}
	lp, err := plan.Plan(q, model)
	require.NoError(t, err)
	access := plan.Choose(lp)

	result, err := Execute(lp, access, ds, ixs, decodeWidget, cursor.Boundary{}, cursor.V1, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	id0, _ := result.Rows[0].Fields["id"].AsUint()
	require.Equal(t, uint64(1), id0)
}

func TestExecutePagination(t *testing.T) {
	ds, ixs := seedStore(t)
	model := widgetModel()
	limit := 1
	q := plan.Query{
		EntityPath: "widget",
		Predicate:  predicate.True(),
		OrderBy:    []plan.OrderTerm{{Field: "id", Direction: plan.Ascending}},
		Limit:      &limit,
	}
	lp, err := plan.Plan(q, model)
	require.NoError(t, err)
	access := plan.Choose(lp)

	result, err := Execute(lp, access, ds, ixs, decodeWidget, cursor.Boundary{}, cursor.V1, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.True(t, result.HasNextToken)
	require.NotEmpty(t, result.NextToken)

	tok, err := cursor.Decode(result.NextToken)
	require.NoError(t, err)
	require.NoError(t, cursor.Validate(tok, lp))

	result2, err := Execute(lp, access, ds, ixs, decodeWidget, tok.Boundary, cursor.V1, nil)
	require.NoError(t, err)
	require.Len(t, result2.Rows, 1)
	id1, _ := result2.Rows[0].Fields["id"].AsUint()
	require.Equal(t, uint64(2), id1)
}

// TestExecutePaginationSkipsRowsThatSortBeforeDeletedAnchor covers the
// case where the anchor row is gone by the time the next page resolves:
// the boundary must still be enforced by value comparison, not by
// matching the anchor row's identity, so a row that ties the anchor's
// leading order field but sorts before it on the tie-break is dropped
// rather than re-served.
func TestExecutePaginationSkipsRowsThatSortBeforeDeletedAnchor(t *testing.T) {
	ds, ixs := seedStore(t)
	model := widgetModel()
	limit := 1
	q := plan.Query{
		EntityPath: "widget",
		Predicate:  predicate.True(),
		OrderBy: []plan.OrderTerm{
			{Field: "price", Direction: plan.Ascending},
			{Field: "id", Direction: plan.Ascending},
		},
		Limit: &limit,
	}
	lp, err := plan.Plan(q, model)
	require.NoError(t, err)
	access := plan.Choose(lp)

	result, err := Execute(lp, access, ds, ixs, decodeWidget, cursor.Boundary{}, cursor.V1, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	firstID, _ := result.Rows[0].Fields["id"].AsUint()
	require.Equal(t, uint64(1), firstID)
	require.True(t, result.HasNextToken)

	tok, err := cursor.Decode(result.NextToken)
	require.NoError(t, err)

	// The anchor row (id 1) is deleted, and a new row lands with the same
	// price as the anchor but a smaller id than it.
	dk1, err := key.NewDataKey("widget", value.Uint(1))
	require.NoError(t, err)
	raw1, err := dk1.Encode()
	require.NoError(t, err)
	ds.Delete(raw1)

	dk0, err := key.NewDataKey("widget", value.Uint(0))
	require.NoError(t, err)
	raw0, err := dk0.Encode()
	require.NoError(t, err)
	d, err := decimal.NewFromString("10.00")
	require.NoError(t, err)
	ds.Put(raw0, encodeWidget(0, "new", value.DecimalV(d)))

	result2, err := Execute(lp, access, ds, ixs, decodeWidget, tok.Boundary, cursor.V1, nil)
	require.NoError(t, err)
	require.Len(t, result2.Rows, 1)
	nextID, _ := result2.Rows[0].Fields["id"].AsUint()
	require.Equal(t, uint64(2), nextID)
}

func TestAggregateCount(t *testing.T) {
	ds, ixs := seedStore(t)
	model := widgetModel()
	q := plan.Query{
		EntityPath: "widget",
		Predicate:  predicate.True(),
		Aggregate:  &plan.Aggregate{Kind: plan.AggregateCount},
	}
	lp, err := plan.Plan(q, model)
	require.NoError(t, err)
	access := plan.Choose(lp)

	result, err := Execute(lp, access, ds, ixs, decodeWidget, cursor.Boundary{}, cursor.V1, nil)
	require.NoError(t, err)
	require.NotNil(t, result.AggregateValue)
	n, _ := result.AggregateValue.AsUint()
	require.Equal(t, uint64(3), n)
}

func TestAggregateCountPushesDownWithoutDecoding(t *testing.T) {
	ds, ixs := seedStore(t)
	model := widgetModel()
	q := plan.Query{
		EntityPath: "widget",
		Predicate:  predicate.True(),
		Aggregate:  &plan.Aggregate{Kind: plan.AggregateCount},
	}
	lp, err := plan.Plan(q, model)
	require.NoError(t, err)
	access := plan.Choose(lp)
	require.Equal(t, plan.AccessFullScan, access.Kind)

	panicDecode := func(key.RawRow) (Fields, error) {
		t.Fatal("decode should not run when COUNT(*) pushes down to stream.ExactCount")
		return nil, nil
	}
	result, err := Execute(lp, access, ds, ixs, panicDecode, cursor.Boundary{}, cursor.V1, nil)
	require.NoError(t, err)
	require.NotNil(t, result.AggregateValue)
	n, _ := result.AggregateValue.AsUint()
	require.Equal(t, uint64(3), n)
}

func TestAggregateCountWithPredicateStillDecodesAndFilters(t *testing.T) {
	ds, ixs := seedStore(t)
	model := widgetModel()
	q := plan.Query{
		EntityPath: "widget",
		Predicate:  predicate.Compare("owner", predicate.OpEq, value.Text("alice")),
		Aggregate:  &plan.Aggregate{Kind: plan.AggregateCount},
	}
	lp, err := plan.Plan(q, model)
	require.NoError(t, err)
	access := plan.Choose(lp)

	result, err := Execute(lp, access, ds, ixs, decodeWidget, cursor.Boundary{}, cursor.V1, nil)
	require.NoError(t, err)
	require.NotNil(t, result.AggregateValue)
	n, _ := result.AggregateValue.AsUint()
	require.Equal(t, uint64(2), n)
}

func TestExecuteDeleteLimit(t *testing.T) {
	ds, ixs := seedStore(t)
	model := widgetModel()
	limit := 2
	q := plan.Query{
		EntityPath:  "widget",
		Predicate:   predicate.True(),
		OrderBy:     []plan.OrderTerm{{Field: "id", Direction: plan.Ascending}},
		DeleteLimit: &limit,
	}
	lp, err := plan.Plan(q, model)
	require.NoError(t, err)
	access := plan.Choose(lp)

	result, err := Execute(lp, access, ds, ixs, decodeWidget, cursor.Boundary{}, cursor.V1, nil)
	require.NoError(t, err)
	require.Len(t, result.DeleteKeys, 2)
}
