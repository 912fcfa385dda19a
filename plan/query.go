// Package plan implements query planning: turning a typed
// query intent into a validated LogicalPlan, choosing an AccessPlan over
// the available indexes, and caching access plans by fingerprint so
// repeated shape-identical queries skip replanning.
package plan

import "github.com/dragginzgame/icydb-go/predicate"

// Direction is an ORDER BY term's sort direction.
type Direction uint8

const (
	Ascending Direction = iota
	Descending
)

// OrderTerm is one field in a query's declared ordering.
type OrderTerm struct {
	Field     string
	Direction Direction
}

// Aggregate identifies an aggregate computed over a query's matched rows
// instead of returning the rows themselves.
type Aggregate struct {
	Kind  AggregateKind
	Field string // unused for Count
}

type AggregateKind uint8

const (
	AggregateNone AggregateKind = iota
	AggregateCount
	AggregateSum
	AggregateMin
	AggregateMax
)

// Query is the typed intent the caller hands the planner:
// what entity, filtered how, ordered how, and what to do with the
// matches (return rows, delete them, or aggregate them).
type Query struct {
	EntityPath  string
	Predicate   predicate.Predicate
	OrderBy     []OrderTerm
	Limit       *int
	Offset      int
	Distinct    bool
	DeleteLimit *int
	Aggregate   *Aggregate
}
