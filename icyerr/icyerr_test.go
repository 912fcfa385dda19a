package icyerr

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCarriesClassOriginMessage(t *testing.T) {
	err := New(Corruption, OriginStore, "bad marker")
	require.Equal(t, Corruption, err.Class)
	require.Equal(t, OriginStore, err.Origin)
	require.Equal(t, "corruption/store: bad marker", err.Error())
	require.Nil(t, err.Unwrap())
}

func TestWrapPreservesCauseAndUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, Internal, OriginStore, "flush failed")
	require.True(t, strings.Contains(err.Error(), "disk full"))
	require.True(t, strings.Contains(err.Error(), "internal/store"))
	require.ErrorIs(t, err, cause)
}

func TestCorruptFormatsMessage(t *testing.T) {
	err := Corrupt(OriginIndex, "entry %d missing key %q", 3, "abc")
	require.Equal(t, Corruption, err.Class)
	require.Equal(t, OriginIndex, err.Origin)
	require.Equal(t, `entry 3 missing key "abc"`, err.Message)
}

func TestUnsupportedErrFormatsMessage(t *testing.T) {
	err := UnsupportedErr(OriginSerialize, "kind %s not indexable", "blob")
	require.Equal(t, Unsupported, err.Class)
	require.Equal(t, "kind blob not indexable", err.Message)
}

func TestConflictErrFormatsMessage(t *testing.T) {
	err := ConflictErr(OriginIndex, "unique violation on %s", "by_owner")
	require.Equal(t, Conflict, err.Class)
	require.Equal(t, "unique violation on by_owner", err.Message)
}

func TestInvariantCapturesCallSite(t *testing.T) {
	err := Invariant(OriginExecutor, "impossible state %d", 7)
	require.Equal(t, InvariantViolation, err.Class)
	require.NotEmpty(t, err.CallSite())
	require.True(t, strings.Contains(err.CallSite(), "icyerr_test.go"))
}

func TestIsMatchesClassThroughWrapping(t *testing.T) {
	base := Corrupt(OriginStore, "torn write")
	wrapped := errors.New("outer")
	joined := errors.Join(wrapped, base)

	require.True(t, Is(base, Corruption))
	require.True(t, Is(joined, Corruption))
	require.False(t, Is(base, Conflict))
	require.False(t, Is(errors.New("plain"), Corruption))
}

func TestOriginOfReturnsFalseForUnclassifiedError(t *testing.T) {
	_, ok := OriginOf(errors.New("plain"))
	require.False(t, ok)

	origin, ok := OriginOf(New(Internal, OriginQuery, "x"))
	require.True(t, ok)
	require.Equal(t, OriginQuery, origin)
}

func TestCallSiteEmptyForNonInvariantErrors(t *testing.T) {
	err := New(Internal, OriginStore, "x")
	require.Empty(t, err.CallSite())
}
