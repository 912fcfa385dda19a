package engine

import (
	"go.uber.org/zap"

	"github.com/dragginzgame/icydb-go/commit"
	"github.com/dragginzgame/icydb-go/executor"
	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/index"
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/value"
)

// Insert adds a new row, failing if the primary key already exists.
func (e *Engine) Insert(entityPath string, pk value.Value, fields executor.Fields) error {
	h, err := e.resolve(entityPath)
	if err != nil {
		return err
	}
	dk, err := key.NewDataKey(entityPath, pk)
	if err != nil {
		return err
	}
	raw, err := dk.Encode()
	if err != nil {
		return err
	}
	if _, exists := h.data.Get(raw); exists {
		return icyerr.ConflictErr(icyerr.OriginStore, "PrimaryKeyAlreadyExists{entity=%s}", entityPath)
	}
	after, err := h.codec.Encode(fields)
	if err != nil {
		return err
	}
	deltas, err := index.Diff(h.model, nil, index.Row(fields))
	if err != nil {
		return err
	}
	if err := index.Preflight(deltas, h.indexes, raw); err != nil {
		return err
	}
	op := commit.RowOp{EntityPath: entityPath, Key: raw, After: after}
	return e.applyOne(h, op, deltas)
}

// Update replaces an existing row's fields in place.
func (e *Engine) Update(entityPath string, pk value.Value, fields executor.Fields) error {
	h, err := e.resolve(entityPath)
	if err != nil {
		return err
	}
	dk, err := key.NewDataKey(entityPath, pk)
	if err != nil {
		return err
	}
	raw, err := dk.Encode()
	if err != nil {
		return err
	}
	before, exists := h.data.Get(raw)
	if !exists {
		return icyerr.ConflictErr(icyerr.OriginStore, "RowNotFound{entity=%s}", entityPath)
	}
	beforeFields, err := h.codec.Decode(before)
	if err != nil {
		return err
	}
	after, err := h.codec.Encode(fields)
	if err != nil {
		return err
	}
	deltas, err := index.Diff(h.model, index.Row(beforeFields), index.Row(fields))
	if err != nil {
		return err
	}
	if err := index.Preflight(deltas, h.indexes, raw); err != nil {
		return err
	}
	op := commit.RowOp{EntityPath: entityPath, Key: raw, Before: before, After: after}
	return e.applyOne(h, op, deltas)
}

// Delete removes a row by primary key.
func (e *Engine) Delete(entityPath string, pk value.Value) error {
	h, err := e.resolve(entityPath)
	if err != nil {
		return err
	}
	dk, err := key.NewDataKey(entityPath, pk)
	if err != nil {
		return err
	}
	raw, err := dk.Encode()
	if err != nil {
		return err
	}
	before, exists := h.data.Get(raw)
	if !exists {
		return icyerr.ConflictErr(icyerr.OriginStore, "RowNotFound{entity=%s}", entityPath)
	}
	beforeFields, err := h.codec.Decode(before)
	if err != nil {
		return err
	}
	deltas, err := index.Diff(h.model, index.Row(beforeFields), nil)
	if err != nil {
		return err
	}
	op := commit.RowOp{EntityPath: entityPath, Key: raw, Before: before}
	return e.applyOne(h, op, deltas)
}

// Get fetches and decodes one row by primary key.
func (e *Engine) Get(entityPath string, pk value.Value) (executor.Fields, bool, error) {
	h, err := e.resolve(entityPath)
	if err != nil {
		return nil, false, err
	}
	dk, err := key.NewDataKey(entityPath, pk)
	if err != nil {
		return nil, false, err
	}
	raw, err := dk.Encode()
	if err != nil {
		return nil, false, err
	}
	row, ok := h.data.Get(raw)
	if !ok {
		return nil, false, nil
	}
	fields, err := h.codec.Decode(row)
	if err != nil {
		return nil, false, err
	}
	return fields, true, nil
}

// applyOne drives the begin/apply/finish sequence for a single row
// mutation: the marker is written durably before the data store or any
// index store is touched, and cleared only once both have landed.
func (e *Engine) applyOne(h *entityHandle, op commit.RowOp, deltas []index.Delta) error {
	m := commit.NewMarker([]commit.RowOp{op})
	if err := e.guard.Begin(m); err != nil {
		return err
	}
	if op.After != nil {
		h.data.Put(op.Key, op.After)
	} else {
		h.data.Delete(op.Key)
	}
	if err := index.Apply(deltas, h.indexes, op.Key); err != nil {
		e.log.Error("index apply failed after commit began", zap.Error(err))
		return err
	}
	return e.guard.Finish()
}
