package commit

import (
	"go.uber.org/zap"

	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/store"
)

// Guard sequences the begin/apply/finish protocol around one CommitSlot
//. It never touches a data or index store itself: applying
// row ops is the caller's job (the engine package, which owns every
// entity's stores), Guard only guarantees the marker is durable before
// the caller starts applying and cleared only after every op has landed.
type Guard struct {
	slot *store.CommitSlot
	log  *zap.Logger
}

func NewGuard(slot *store.CommitSlot, log *zap.Logger) *Guard {
	return &Guard{slot: slot, log: log}
}

// Begin validates and durably writes the marker. The caller must not
// start applying row ops until Begin returns successfully. Beginning
// over an already-occupied slot is an invariant violation: at most one
// mutation is ever in flight, and a non-empty slot here means either a
// prior Finish was skipped or Recover was never run after a restart.
func (g *Guard) Begin(m Marker) error {
	if _, occupied := g.slot.Get(); occupied {
		return icyerr.Invariant(icyerr.OriginStore, "commit begin with marker already present")
	}
	if err := Validate(m); err != nil {
		return err
	}
	raw, err := Encode(m)
	if err != nil {
		return err
	}
	g.slot.Set(raw)
	g.log.Debug("commit begin", zap.Int("row_ops", len(m.RowOps)))
	return nil
}

// Finish clears the marker once every row op has been applied. A crash
// before Finish is called is exactly what Recover is for. Finishing an
// empty slot is an invariant violation: it means there was nothing in
// flight to finish.
func (g *Guard) Finish() error {
	if _, occupied := g.slot.Get(); !occupied {
		return icyerr.Invariant(icyerr.OriginStore, "commit finish with no marker present")
	}
	g.slot.Clear()
	g.log.Debug("commit finish")
	return nil
}

// Recover inspects the slot at startup: a non-empty slot means
// the previous process died between Begin and Finish, and the returned
// marker's row ops must be re-applied (idempotently — see Marker) before
// the engine accepts any new request.
func (g *Guard) Recover() (Marker, bool, error) {
	raw, ok := g.slot.Get()
	if !ok {
		return Marker{}, false, nil
	}
	m, err := Decode(raw)
	if err != nil {
		return Marker{}, false, err
	}
	if err := Validate(m); err != nil {
		return Marker{}, false, err
	}
	g.log.Warn("recovering in-flight commit", zap.Int("row_ops", len(m.RowOps)))
	return m, true, nil
}
