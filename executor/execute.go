// Package executor runs a validated LogicalPlan's chosen Access over the
// engine's stores: it walks an ordered key stream, decodes rows on
// demand, evaluates the predicate, and applies whichever post-access
// phases the query asked for (filter, order, distinct, delete-limit,
// pagination, aggregation).
package executor

import (
	"go.uber.org/zap"

	"github.com/dragginzgame/icydb-go/cursor"
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/plan"
	"github.com/dragginzgame/icydb-go/predicate"
	"github.com/dragginzgame/icydb-go/store"
	"github.com/dragginzgame/icydb-go/value"
)

// RowDecoder turns a stored row's bytes into the field map the rest of
// the pipeline operates on. The engine supplies one per entity, built
// from that entity's generated codec.
type RowDecoder func(key.RawRow) (Fields, error)

// Result is everything a single Execute call can produce: a page of
// matched rows, the keys a delete-limited query would remove, or a
// single aggregate value. Exactly one of Rows/DeleteKeys/AggregateValue
// is meaningful, depending on the plan.
type Result struct {
	Rows            []Row
	DeleteKeys      []key.RawDataKey
	AggregateValue  *value.Value
	NextToken       string
	HasNextToken    bool
}

// Execute runs lp's chosen access plan to completion. boundary is the
// already-validated resume point from an inbound continuation token, or
// the zero Boundary for a first page. version controls which cursor
// wire shape NextToken is encoded with.
func Execute(lp plan.LogicalPlan, access plan.Access, ds *store.DataStore, ixs map[string]*store.IndexStore, decode RowDecoder, boundary cursor.Boundary, version cursor.Version, log *zap.Logger) (Result, error) {
	stream, err := Resolve(access, ds, ixs)
	if err != nil {
		return Result{}, err
	}

	if lp.Aggregate != nil && lp.Aggregate.Kind == plan.AggregateCount && lp.Predicate.Kind == predicate.KindTrue {
		if log != nil {
			log.Debug("executor count pushdown", zap.Int("count", stream.ExactCount))
		}
		v := value.Uint(uint64(stream.ExactCount))
		return Result{AggregateValue: &v}, nil
	}

	rows := make([]Row, 0, len(stream.Keys))
	for _, k := range stream.Keys {
		raw, ok := ds.Get(k)
		if !ok {
			continue // row deleted between access resolution and decode; treat as absent
		}
		fields, err := decode(raw)
		if err != nil {
			return Result{}, err
		}
		rows = append(rows, Row{PK: k, Fields: fields})
	}

	rows, err = Filter(rows, lp.Predicate)
	if err != nil {
		return Result{}, err
	}

	if lp.Aggregate != nil && lp.Aggregate.Kind != plan.AggregateNone {
		v, err := Aggregate(rows, *lp.Aggregate)
		if err != nil {
			return Result{}, err
		}
		return Result{AggregateValue: &v}, nil
	}

	if !pkOrderSuffices(stream, lp.Model.PrimaryKey, lp.OrderBy) {
		Order(rows, lp.OrderBy)
	}

	if lp.DeleteLimit != nil {
		if *lp.DeleteLimit < len(rows) {
			rows = rows[:*lp.DeleteLimit]
		}
		keys := make([]key.RawDataKey, len(rows))
		for i, r := range rows {
			keys[i] = key.RawDataKey(r.PK)
		}
		if log != nil {
			log.Debug("executor delete-limit resolved", zap.Int("count", len(keys)))
		}
		return Result{DeleteKeys: keys}, nil
	}

	if lp.Distinct {
		fields := make([]string, len(lp.OrderBy))
		for i, t := range lp.OrderBy {
			fields[i] = t.Field
		}
		rows, err = Distinct(rows, fields)
		if err != nil {
			return Result{}, err
		}
	}

	rows = SkipPastBoundary(rows, boundary, lp.OrderBy)

	hasMore := lp.Limit != nil && *lp.Limit < len(rows)
	var nextTok string
	if hasMore {
		lastRow := rows[*lp.Limit-1]
		nextTok, err = cursor.NextToken(lp, lastRow.Fields, version)
		if err != nil {
			return Result{}, err
		}
	}

	rows = Paginate(rows, 0, lp.Limit)
	return Result{Rows: rows, NextToken: nextTok, HasNextToken: hasMore}, nil
}

// pkOrderSuffices reports whether a stream already in ascending
// primary-key order satisfies terms without sorting: true only when
// terms is exactly [primary key ascending], the one shape plan.Plan
// guarantees appears as the trailing tie-break on every plan.
func pkOrderSuffices(s Stream, primaryKey string, terms []plan.OrderTerm) bool {
	return s.PKOrdered && len(terms) == 1 && terms[0].Direction == plan.Ascending && terms[0].Field == primaryKey
}
