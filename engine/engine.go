package engine

import (
	"go.uber.org/zap"

	"github.com/dragginzgame/icydb-go/commit"
	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/index"
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/plan"
	"github.com/dragginzgame/icydb-go/store"
)

// Engine is the single process-wide handle every CRUD and query call
// goes through: the registry of entity stores, the one commit slot
// shared across all of them, and the plan cache that lets repeated
// query shapes skip replanning.
type Engine struct {
	cfg       Config
	entities  map[string]*entityHandle
	commitLog *store.CommitSlot
	guard     *commit.Guard
	plans     *plan.Cache
	log       *zap.Logger
}

// New builds an Engine with empty stores and no registered entities.
// Callers register every entity the build declares, then call Recover
// before serving any request, mirroring a canister's init/post_upgrade
// split.
func New(cfg Config, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	slot := store.NewCommitSlot()
	cache, err := plan.NewCache(cfg.PlanCacheSize)
	if err != nil {
		return nil, icyerr.Wrap(err, icyerr.Unsupported, icyerr.OriginInterface, "build plan cache")
	}
	return &Engine{
		cfg:       cfg,
		entities:  make(map[string]*entityHandle),
		commitLog: slot,
		guard:     commit.NewGuard(slot, log),
		plans:     cache,
		log:       log,
	}, nil
}

func (e *Engine) resolve(entityPath string) (*entityHandle, error) {
	h, ok := e.entities[entityPath]
	if !ok {
		return nil, icyerr.New(icyerr.Unsupported, icyerr.OriginInterface, "entity not registered: "+entityPath)
	}
	return h, nil
}

// Recover replays any commit marker left in-flight by a crash before the
// previous process's Finish call landed. It must run once at startup,
// after every entity has been registered and its stores restored from
// stable memory, and before the engine accepts any new request.
func (e *Engine) Recover() error {
	m, found, err := e.guard.Recover()
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	touched := make(map[string]*entityHandle)
	for _, op := range m.RowOps {
		h, ok := e.entities[op.EntityPath]
		if !ok {
			continue // entity dropped since the marker was written; nothing to replay it into
		}
		touched[op.EntityPath] = h
		var before, after index.Row
		if op.Before != nil {
			f, err := h.codec.Decode(op.Before)
			if err != nil {
				return err
			}
			before = index.Row(f)
		}
		if op.After != nil {
			f, err := h.codec.Decode(op.After)
			if err != nil {
				return err
			}
			after = index.Row(f)
		}
		deltas, err := index.Diff(h.model, before, after)
		if err != nil {
			return err
		}
		if op.IsDelete() {
			h.data.Delete(op.Key)
		} else {
			h.data.Put(op.Key, op.After)
		}
		if err := index.Apply(deltas, h.indexes, op.Key); err != nil {
			return err
		}
	}
	if err := e.guard.Finish(); err != nil {
		return err
	}
	// Delta replay above only touches the keys the marker names; rebuild
	// every index belonging to an entity the marker wrote to so a partial
	// or stale index entry left by the crash can't survive recovery.
	for _, h := range touched {
		if err := e.rebuildIndexes(h); err != nil {
			return icyerr.Wrap(err, icyerr.Corruption, icyerr.OriginIndex, "rebuild after recovery")
		}
	}
	e.log.Info("replayed in-flight commit", zap.Int("row_ops", len(m.RowOps)))
	return nil
}

// rebuildIndexes clears and repopulates every index store h declares
// from the current, authoritative rows in h.data. Used after marker
// replay during Recover, where the replayed rows are trusted but any
// index entry they touched is not.
func (e *Engine) rebuildIndexes(h *entityHandle) error {
	for _, ix := range h.model.Indexes {
		var decodeErr error
		src := func(yield func(pk key.RawDataKey, row index.Row) bool) {
			h.data.Ascend(nil, func(k key.RawDataKey, raw key.RawRow) bool {
				fields, err := h.codec.Decode(raw)
				if err != nil {
					decodeErr = err
					return false
				}
				return yield(k, index.Row(fields))
			})
		}
		if err := index.Rebuild(h.model, ix, h.indexes, src); err != nil {
			return err
		}
		if decodeErr != nil {
			return decodeErr
		}
	}
	return nil
}
