package cursor

import (
	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/plan"
	"github.com/dragginzgame/icydb-go/value"
)

// BoundaryFromRow builds the Boundary a cursor resumes from, reading one
// value per OrderTerm out of the last row a page returned.
func BoundaryFromRow(lp plan.LogicalPlan, rowFields map[string]value.Value) (Boundary, error) {
	b := Boundary{}
	for _, term := range lp.OrderBy {
		v, ok := rowFields[term.Field]
		if !ok {
			return Boundary{}, icyerr.Invariant(icyerr.OriginExecutor, "row missing ordered field %s", term.Field)
		}
		f, ok := lp.Model.Field(term.Field)
		if !ok {
			return Boundary{}, icyerr.Invariant(icyerr.OriginExecutor, "order field %s not in schema", term.Field)
		}
		b.Slots = append(b.Slots, BoundarySlot{Field: term.Field, Kind: f.Kind.Scalar, Value: v})
	}
	return b, nil
}

// NextToken builds and encodes the token for the next page, given the
// last row's field values. version selects whether the token carries a
// redundant Offset for V2-style cross-validation.
func NextToken(lp plan.LogicalPlan, rowFields map[string]value.Value, version Version) (string, error) {
	b, err := BoundaryFromRow(lp, rowFields)
	if err != nil {
		return "", err
	}
	t := Token{Version: version, Signature: SignatureOf(lp), Boundary: b}
	if version == V2 {
		t.Offset = lp.Offset
	}
	return Encode(t)
}
