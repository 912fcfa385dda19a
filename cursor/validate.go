package cursor

import (
	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/plan"
)

// Validate checks a decoded token against the LogicalPlan the current
// request produced:
//   - Signature must match exactly: a cursor from a differently-shaped
//     query is rejected outright, never partially honored.
//   - Arity must equal the plan's OrderBy length (including the implicit
//     primary-key tie-break).
//   - Each slot's declared Kind must match the corresponding OrderBy
//     field's current declared kind (a schema change invalidates old
//     cursors rather than silently misinterpreting their bytes).
//   - A V2 token's Offset must equal the request's declared Offset.
//   - A grouped (Distinct) query's cursor only ever advances in ascending
//     order; a descending OrderBy combined with Distinct is rejected at
//     validation time rather than left to produce an inconsistent page.
func Validate(t Token, lp plan.LogicalPlan) error {
	want := SignatureOf(lp)
	if t.Signature != want {
		return icyerr.ConflictErr(icyerr.OriginResponse, "CursorSignatureMismatch")
	}
	if len(t.Boundary.Slots) != len(lp.OrderBy) {
		return icyerr.ConflictErr(icyerr.OriginResponse, "CursorArityMismatch{got=%d,want=%d}", len(t.Boundary.Slots), len(lp.OrderBy))
	}
	for i, slot := range t.Boundary.Slots {
		term := lp.OrderBy[i]
		if slot.Field != term.Field {
			return icyerr.ConflictErr(icyerr.OriginResponse, "CursorFieldMismatch{slot=%d}", i)
		}
		f, ok := lp.Model.Field(term.Field)
		if !ok || f.Kind.Scalar != slot.Kind {
			return icyerr.ConflictErr(icyerr.OriginResponse, "CursorKindMismatch{slot=%d}", i)
		}
	}
	if t.Version == V2 && t.Offset != lp.Offset {
		return icyerr.ConflictErr(icyerr.OriginResponse, "CursorOffsetMismatch{got=%d,want=%d}", t.Offset, lp.Offset)
	}
	if lp.Distinct {
		for _, term := range lp.OrderBy {
			if term.Direction != plan.Ascending {
				return icyerr.UnsupportedErr(icyerr.OriginResponse, "GroupedCursorRequiresAscendingOrder{field=%s}", term.Field)
			}
		}
	}
	return nil
}
