package plan

import (
	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/predicate"
	"github.com/dragginzgame/icydb-go/schema"
)

// LogicalPlan is a validated Query: every policy rule has already been
// checked, and the ordering has been completed with a primary-key
// tie-break so row order is always fully deterministic.
type LogicalPlan struct {
	Model       *schema.EntityModel
	Predicate   predicate.Predicate // normalized
	OrderBy     []OrderTerm
	Limit       *int
	Offset      int
	Distinct    bool
	DeleteLimit *int
	Aggregate   *Aggregate
}

// Plan validates q against the policy rules the planner enforces before
// any access plan is chosen:
//   - An empty ORDER BY is illegal whenever pagination or delete-limit is
//     requested (there is nothing stable to paginate or limit over).
//   - Delete and pagination (Limit/Offset) are mutually exclusive: a
//     delete with a row cap uses DeleteLimit instead.
//   - DeleteLimit requires an explicit ordering, so "delete the first N"
//     is well-defined.
//   - Every plan gets an implicit primary-key tie-break appended to
//     OrderBy, so two rows that tie on every declared field still sort
//     deterministically.
func Plan(q Query, model *schema.EntityModel) (LogicalPlan, error) {
	if err := predicate.Validate(q.Predicate, model); err != nil {
		return LogicalPlan{}, err
	}
	if q.DeleteLimit != nil && (q.Limit != nil || q.Offset != 0) {
		return LogicalPlan{}, icyerr.UnsupportedErr(icyerr.OriginQuery, "DeleteAndPaginateMutuallyExclusive")
	}
	if q.DeleteLimit != nil && len(q.OrderBy) == 0 {
		return LogicalPlan{}, icyerr.UnsupportedErr(icyerr.OriginQuery, "DeleteLimitRequiresOrdering")
	}
	if (q.Limit != nil || q.Offset != 0) && len(q.OrderBy) == 0 {
		return LogicalPlan{}, icyerr.UnsupportedErr(icyerr.OriginQuery, "UnorderedPaginationRejected")
	}
	for _, t := range q.OrderBy {
		if _, ok := model.Field(t.Field); !ok {
			return LogicalPlan{}, icyerr.UnsupportedErr(icyerr.OriginQuery, "FieldNotFound{field=%s}", t.Field)
		}
	}

	order := append([]OrderTerm(nil), q.OrderBy...)
	pkAlreadyLast := len(order) > 0 && order[len(order)-1].Field == model.PrimaryKey
	if !pkAlreadyLast {
		order = append(order, OrderTerm{Field: model.PrimaryKey, Direction: Ascending})
	}

	return LogicalPlan{
		Model:       model,
		Predicate:   predicate.Normalize(q.Predicate),
		OrderBy:     order,
		Limit:       q.Limit,
		Offset:      q.Offset,
		Distinct:    q.Distinct,
		DeleteLimit: q.DeleteLimit,
		Aggregate:   q.Aggregate,
	}, nil
}
