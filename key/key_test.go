package key

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/value"
)

func TestDataKeyOversizedTextRejectedAtConstruction(t *testing.T) {
	huge := make([]byte, MaxTextPKBytes+1)
	_, err := NewDataKey("widget", value.Text(string(huge)))
	require.Error(t, err)
	require.True(t, icyerr.Is(err, icyerr.Unsupported))
}

func TestDataKeyRoundTrip(t *testing.T) {
	dk, err := NewDataKey("widget", value.Uint(42))
	require.NoError(t, err)
	raw, err := dk.Encode()
	require.NoError(t, err)
	got, err := DecodeDataKey(value.KindUint, raw)
	require.NoError(t, err)
	require.True(t, value.Equal(value.Uint(42), got))
}

func TestRawDataKeyOrderMatchesCanonicalOrder(t *testing.T) {
	a, err := NewDataKey("widget", value.Uint(1))
	require.NoError(t, err)
	b, err := NewDataKey("widget", value.Uint(2))
	require.NoError(t, err)
	rawA, _ := a.Encode()
	rawB, _ := b.Encode()
	require.True(t, bytes.Compare(rawA, rawB) < 0)
}

func TestRawRowSizeCapUnsupportedVsCorruption(t *testing.T) {
	oversized := make([]byte, MaxRowBytes+1)
	_, err := NewRawRow(oversized)
	require.Error(t, err)
	require.True(t, icyerr.Is(err, icyerr.Unsupported))

	_, err = DecodeRawRow(oversized)
	require.Error(t, err)
	require.True(t, icyerr.Is(err, icyerr.Corruption))
}

func TestIndexKeyRoundTrip(t *testing.T) {
	idx := DeriveIndexId("widget", []string{"owner", "status"})
	k, err := NewIndexKey(idx, []value.Value{value.Text("alice"), value.Text("active")})
	require.NoError(t, err)
	raw := k.Encode()
	got, err := DecodeIndexKey(raw)
	require.NoError(t, err)
	require.Equal(t, k, got)
}

func TestDeriveIndexIdDiffersByFieldSet(t *testing.T) {
	a := DeriveIndexId("widget", []string{"owner"})
	b := DeriveIndexId("widget", []string{"owner", "status"})
	require.NotEqual(t, a, b)
}

func TestIndexEntryAddIgnoresDuplicatePK(t *testing.T) {
	e := NewIndexEntry()
	dk, err := NewDataKey("widget", value.Uint(1))
	require.NoError(t, err)
	raw, _ := dk.Encode()
	e.Add(raw)
	e.Add(raw)
	require.Equal(t, 1, e.Len())
}

func TestIndexEntryEncodeDecodeRoundTrip(t *testing.T) {
	e := NewIndexEntry()
	for i := uint64(0); i < 5; i++ {
		dk, err := NewDataKey("widget", value.Uint(i))
		require.NoError(t, err)
		raw, _ := dk.Encode()
		e.Add(raw)
	}
	enc := e.Encode()
	got, err := DecodeIndexEntry(enc)
	require.NoError(t, err)
	require.Equal(t, e.Len(), got.Len())
	require.Equal(t, e.PKs(), got.PKs())
}

func TestIndexEntryRemoveReportsEmpty(t *testing.T) {
	e := NewIndexEntry()
	dk, err := NewDataKey("widget", value.Uint(9))
	require.NoError(t, err)
	raw, _ := dk.Encode()
	e.Add(raw)
	require.True(t, e.Remove(raw))
}
