package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dragginzgame/icydb-go/key"
)

func TestDataStorePutGetDelete(t *testing.T) {
	ds := NewDataStore()
	k := key.RawDataKey("pk-1")
	_, existed := ds.Put(k, key.RawRow("row-bytes"))
	require.False(t, existed)

	row, ok := ds.Get(k)
	require.True(t, ok)
	require.Equal(t, key.RawRow("row-bytes"), row)

	prev, existed := ds.Delete(k)
	require.True(t, existed)
	require.Equal(t, key.RawRow("row-bytes"), prev)

	_, ok = ds.Get(k)
	require.False(t, ok)
}

func TestDataStoreAscendOrdersByKey(t *testing.T) {
	ds := NewDataStore()
	ds.Put(key.RawDataKey([]byte{2}), key.RawRow("b"))
	ds.Put(key.RawDataKey([]byte{1}), key.RawRow("a"))
	ds.Put(key.RawDataKey([]byte{3}), key.RawRow("c"))

	var seen []string
	ds.Ascend(nil, func(_ key.RawDataKey, row key.RawRow) bool {
		seen = append(seen, string(row))
		return true
	})
	require.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestHostSimRegionSurvivesRestart(t *testing.T) {
	h := NewHostSim()
	require.NoError(t, h.SaveRegion("data", []byte("persisted")))

	restarted := h.Restart()
	data, ok, err := restarted.LoadRegion("data")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("persisted"), data)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ds := NewDataStore()
	ds.Put(key.RawDataKey([]byte{1}), key.RawRow("a"))
	ds.Put(key.RawDataKey([]byte{2}), key.RawRow("b"))

	keys, vals := ds.Snapshot()
	blob := EncodeSnapshot(keys, vals)
	gotKeys, gotVals, err := DecodeSnapshot(blob)
	require.NoError(t, err)

	restored := NewDataStore()
	restored.Restore(gotKeys, gotVals)
	require.Equal(t, ds.Len(), restored.Len())
	row, ok := restored.Get(key.RawDataKey([]byte{1}))
	require.True(t, ok)
	require.Equal(t, key.RawRow("a"), row)
}

func TestCommitSlotSetClearRestore(t *testing.T) {
	slot := NewCommitSlot()
	_, ok := slot.Get()
	require.False(t, ok)

	slot.Set([]byte("marker-bytes"))
	got, ok := slot.Get()
	require.True(t, ok)
	require.Equal(t, []byte("marker-bytes"), got)

	snap := slot.Snapshot()
	restored := NewCommitSlot()
	restored.Restore(snap)
	got, ok = restored.Get()
	require.True(t, ok)
	require.Equal(t, []byte("marker-bytes"), got)

	slot.Clear()
	_, ok = slot.Get()
	require.False(t, ok)
}

func TestHostSimExportImportBytesRoundTrip(t *testing.T) {
	host := NewHostSim()
	require.NoError(t, host.SaveRegion("data:widget", []byte("row-bytes")))
	require.NoError(t, host.SaveRegion("index:widget:by_owner", []byte("index-bytes")))

	blob, err := host.ExportBytes()
	require.NoError(t, err)

	restored := NewHostSim()
	require.NoError(t, restored.ImportBytes(blob))

	data, ok, err := restored.LoadRegion("data:widget")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("row-bytes"), data)

	ix, ok, err := restored.LoadRegion("index:widget:by_owner")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("index-bytes"), ix)
}

func TestHostSimExportBytesEmpty(t *testing.T) {
	host := NewHostSim()
	blob, err := host.ExportBytes()
	require.NoError(t, err)

	restored := NewHostSim()
	require.NoError(t, restored.ImportBytes(blob))
	_, ok, err := restored.LoadRegion("anything")
	require.NoError(t, err)
	require.False(t, ok)
}
