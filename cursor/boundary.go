package cursor

import "github.com/dragginzgame/icydb-go/value"

// BoundarySlot is the last-seen value of one ORDER BY field, the unit a
// Boundary is built from.
type BoundarySlot struct {
	Field string
	Kind  value.Kind
	Value value.Value
}

// Boundary is the full resume point for a paginated scan: one slot per
// ORDER BY term (including the implicit primary-key tie-break plan.Plan
// always appends), in the same order the plan declares them.
type Boundary struct {
	Slots []BoundarySlot
}

// Empty reports whether this is the zero boundary (the first page has
// no boundary to resume from).
func (b Boundary) Empty() bool { return len(b.Slots) == 0 }
