package cursor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/plan"
	"github.com/dragginzgame/icydb-go/predicate"
	"github.com/dragginzgame/icydb-go/schema"
	"github.com/dragginzgame/icydb-go/value"
)

func widgetModel() *schema.EntityModel {
	return &schema.EntityModel{
		Name: "widget", Path: "widget", PrimaryKey: "id",
		Fields: []schema.FieldModel{
			{Name: "id", Kind: schema.Scalar(value.KindUint)},
			{Name: "owner", Kind: schema.Scalar(value.KindText)},
		},
	}
}

func orderedPlan(t *testing.T) plan.LogicalPlan {
	lp, err := plan.Plan(plan.Query{
		EntityPath: "widget", Predicate: predicate.True(),
		OrderBy: []plan.OrderTerm{{Field: "owner"}},
	}, widgetModel())
	require.NoError(t, err)
	return lp
}

func TestTokenEncodeDecodeRoundTrip(t *testing.T) {
	lp := orderedPlan(t)
	tok, err := NextToken(lp, map[string]value.Value{"owner": value.Text("alice"), "id": value.Uint(1)}, V1)
	require.NoError(t, err)

	got, err := Decode(tok)
	require.NoError(t, err)
	require.NoError(t, Validate(got, lp))
}

func TestValidateRejectsSignatureMismatch(t *testing.T) {
	lp := orderedPlan(t)
	other, err := plan.Plan(plan.Query{
		EntityPath: "widget", Predicate: predicate.Compare("owner", predicate.OpEq, value.Text("bob")),
		OrderBy: []plan.OrderTerm{{Field: "owner"}},
	}, widgetModel())
	require.NoError(t, err)

	tok, err := NextToken(other, map[string]value.Value{"owner": value.Text("bob"), "id": value.Uint(1)}, V1)
	require.NoError(t, err)
	got, err := Decode(tok)
	require.NoError(t, err)

	err = Validate(got, lp)
	require.Error(t, err)
	require.True(t, icyerr.Is(err, icyerr.Conflict))
}

func TestValidateRejectsArityMismatch(t *testing.T) {
	lp := orderedPlan(t)
	tok := Token{Version: V1, Signature: SignatureOf(lp)}
	err := Validate(tok, lp)
	require.Error(t, err)
}

func TestValidateRejectsGroupedDescendingOrder(t *testing.T) {
	lp, err := plan.Plan(plan.Query{
		EntityPath: "widget", Predicate: predicate.True(), Distinct: true,
		OrderBy: []plan.OrderTerm{{Field: "owner", Direction: plan.Descending}},
	}, widgetModel())
	require.NoError(t, err)
	tok, err := NextToken(lp, map[string]value.Value{"owner": value.Text("alice"), "id": value.Uint(1)}, V1)
	require.NoError(t, err)
	got, err := Decode(tok)
	require.NoError(t, err)
	err = Validate(got, lp)
	require.Error(t, err)
}

func TestV2ValidateRejectsOffsetMismatch(t *testing.T) {
	limit := 10
	lp, err := plan.Plan(plan.Query{
		EntityPath: "widget", Predicate: predicate.True(), Limit: &limit, Offset: 20,
		OrderBy: []plan.OrderTerm{{Field: "owner"}},
	}, widgetModel())
	require.NoError(t, err)
	tok, err := NextToken(lp, map[string]value.Value{"owner": value.Text("alice"), "id": value.Uint(1)}, V2)
	require.NoError(t, err)
	got, err := Decode(tok)
	require.NoError(t, err)
	got.Offset = 5
	err = Validate(got, lp)
	require.Error(t, err)
}
