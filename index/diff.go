// Package index implements secondary index maintenance:
// deriving the IndexKey a row op adds or removes per declared index,
// enforcing uniqueness before a mutation commits, rebuilding an index
// from scratch, and checking strong-relation target existence.
package index

import (
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/schema"
	"github.com/dragginzgame/icydb-go/value"
)

// Row is a row's decoded field values, keyed by field name. The engine
// itself never decodes row bytes (the schema collaborator's codec does);
// callers driving index maintenance must supply this view already
// decoded.
type Row map[string]value.Value

// Delta is one index's before/after IndexKey for a single row op. Before
// and/or After are nil when the row's fields don't fully populate that
// index's key (e.g. a missing field short-circuits indexing for that row).
type Delta struct {
	Index  schema.IndexModel
	Before *key.IndexKey
	After  *key.IndexKey
}

// Case classifies a Delta against the four possible update shapes.
type Case uint8

const (
	CaseInsertOnly    Case = iota // Before == nil, After != nil
	CaseDeleteOnly                // Before != nil, After == nil
	CaseUnchanged                  // Before == After (same IndexKey, or both nil)
	CaseKeyChanged                 // Before != nil, After != nil, and they differ
)

func (d Delta) Case() Case {
	switch {
	case d.Before == nil && d.After != nil:
		return CaseInsertOnly
	case d.Before != nil && d.After == nil:
		return CaseDeleteOnly
	case d.Before != nil && d.After != nil && *d.Before != *d.After:
		return CaseKeyChanged
	default:
		return CaseUnchanged
	}
}

// indexKeyFor derives one index's IndexKey from a decoded row, returning
// ok=false if any indexed field is absent from the row (the row doesn't
// participate in that index).
func indexKeyFor(entityName string, ix schema.IndexModel, row Row) (key.IndexKey, bool, error) {
	values := make([]value.Value, 0, len(ix.Fields))
	for _, f := range ix.Fields {
		v, ok := row[f]
		if !ok || v.IsNull() {
			return key.IndexKey{}, false, nil
		}
		values = append(values, v)
	}
	id := key.DeriveIndexId(entityName, ix.Fields)
	k, err := key.NewIndexKey(id, values)
	if err != nil {
		return key.IndexKey{}, false, err
	}
	return k, true, nil
}

// Diff computes every declared index's Delta for one row op: before is
// nil for an insert, after is nil for a delete.
func Diff(model *schema.EntityModel, before, after Row) ([]Delta, error) {
	deltas := make([]Delta, 0, len(model.Indexes))
	for _, ix := range model.Indexes {
		d := Delta{Index: ix}
		if before != nil {
			k, ok, err := indexKeyFor(model.Name, ix, before)
			if err != nil {
				return nil, err
			}
			if ok {
				d.Before = &k
			}
		}
		if after != nil {
			k, ok, err := indexKeyFor(model.Name, ix, after)
			if err != nil {
				return nil, err
			}
			if ok {
				d.After = &k
			}
		}
		deltas = append(deltas, d)
	}
	return deltas, nil
}
