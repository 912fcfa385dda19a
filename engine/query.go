package engine

import (
	"github.com/dragginzgame/icydb-go/commit"
	"github.com/dragginzgame/icydb-go/cursor"
	"github.com/dragginzgame/icydb-go/executor"
	"github.com/dragginzgame/icydb-go/index"
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/plan"
)

// Query plans and runs q against entityPath, resuming from token (the
// empty string for a first page). A SELECT-shaped query returns rows; a
// delete-limited query deletes the matched rows transactionally and
// returns no rows; an aggregate query returns its single reduced value.
func (e *Engine) Query(entityPath string, q plan.Query, token string) (executor.Result, error) {
	h, err := e.resolve(entityPath)
	if err != nil {
		return executor.Result{}, err
	}
	q.EntityPath = entityPath

	lp, err := plan.Plan(q, h.model)
	if err != nil {
		return executor.Result{}, err
	}

	var boundary cursor.Boundary
	if token != "" {
		tok, err := cursor.Decode(token)
		if err != nil {
			return executor.Result{}, err
		}
		if err := cursor.Validate(tok, lp); err != nil {
			return executor.Result{}, err
		}
		boundary = tok.Boundary
	}

	fp := plan.Of(lp)
	access, ok := e.plans.Get(fp)
	if !ok {
		access = plan.Choose(lp)
		e.plans.Put(fp, access)
	}
	executor.LogAccess(e.log, entityPath, access)

	result, err := executor.Execute(lp, access, h.data, h.indexes, h.codec.Decode, boundary, e.cfg.CursorVersion, e.log)
	if err != nil {
		return executor.Result{}, err
	}

	if lp.DeleteLimit != nil {
		if err := e.deleteKeys(h, result.DeleteKeys); err != nil {
			return executor.Result{}, err
		}
	}

	return result, nil
}

// deleteKeys removes a batch of rows the delete-limit phase selected,
// under a single commit marker covering the whole batch.
func (e *Engine) deleteKeys(h *entityHandle, keys []key.RawDataKey) error {
	if len(keys) == 0 {
		return nil
	}
	if len(keys) > e.cfg.MaxRowOpsPerCommit {
		keys = keys[:e.cfg.MaxRowOpsPerCommit]
	}

	var ops []commit.RowOp
	var allDeltas [][]index.Delta
	for _, k := range keys {
		before, ok := h.data.Get(k)
		if !ok {
			continue
		}
		beforeFields, err := h.codec.Decode(before)
		if err != nil {
			return err
		}
		deltas, err := index.Diff(h.model, index.Row(beforeFields), nil)
		if err != nil {
			return err
		}
		ops = append(ops, commit.RowOp{EntityPath: h.model.Path, Key: k, Before: before})
		allDeltas = append(allDeltas, deltas)
	}
	if len(ops) == 0 {
		return nil
	}

	m := commit.NewMarker(ops)
	if err := e.guard.Begin(m); err != nil {
		return err
	}
	for i, op := range ops {
		h.data.Delete(op.Key)
		if err := index.Apply(allDeltas[i], h.indexes, op.Key); err != nil {
			return err
		}
	}
	return e.guard.Finish()
}
