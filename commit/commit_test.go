package commit

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/store"
)

func sampleMarker() Marker {
	return NewMarker([]RowOp{
		{EntityPath: "widget", Key: key.RawDataKey("pk-1"), After: key.RawRow("row-v1")},
	})
}

func TestMarkerEncodeDecodeRoundTrip(t *testing.T) {
	m := sampleMarker()
	raw, err := Encode(m)
	require.NoError(t, err)
	got, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestValidateRejectsNoOpRowOp(t *testing.T) {
	m := Marker{ID: [16]byte{1}, RowOps: []RowOp{{EntityPath: "widget", Key: key.RawDataKey("pk-1")}}}
	err := Validate(m)
	require.Error(t, err)
	require.True(t, icyerr.Is(err, icyerr.InvariantViolation))
}

func TestValidateRejectsEmptyMarker(t *testing.T) {
	err := Validate(Marker{ID: [16]byte{1}})
	require.Error(t, err)
}

func TestGuardBeginFinishClearsSlot(t *testing.T) {
	slot := store.NewCommitSlot()
	g := NewGuard(slot, zap.NewNop())

	require.NoError(t, g.Begin(sampleMarker()))
	_, ok := slot.Get()
	require.True(t, ok)

	require.NoError(t, g.Finish())
	_, ok = slot.Get()
	require.False(t, ok)
}

func TestGuardBeginRejectsAlreadyOccupiedSlot(t *testing.T) {
	slot := store.NewCommitSlot()
	g := NewGuard(slot, zap.NewNop())

	require.NoError(t, g.Begin(sampleMarker()))
	err := g.Begin(sampleMarker())
	require.Error(t, err)
	require.True(t, icyerr.Is(err, icyerr.InvariantViolation))
}

func TestGuardFinishRejectsEmptySlot(t *testing.T) {
	slot := store.NewCommitSlot()
	g := NewGuard(slot, zap.NewNop())

	err := g.Finish()
	require.Error(t, err)
	require.True(t, icyerr.Is(err, icyerr.InvariantViolation))
}

func TestGuardRecoverReturnsInFlightMarker(t *testing.T) {
	slot := store.NewCommitSlot()
	g := NewGuard(slot, zap.NewNop())
	m := sampleMarker()
	require.NoError(t, g.Begin(m))

	// Simulate a crash: a fresh Guard over the same (durable) slot.
	recovered := NewGuard(slot, zap.NewNop())
	got, found, err := recovered.Recover()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, m, got)
}

func TestGuardRecoverNoneWhenSlotEmpty(t *testing.T) {
	slot := store.NewCommitSlot()
	g := NewGuard(slot, zap.NewNop())
	_, found, err := g.Recover()
	require.NoError(t, err)
	require.False(t, found)
}
