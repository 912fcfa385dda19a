package value

import (
	"bytes"
	"math"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// valueCmp diffs two Value slices by canonical equality rather than by
// struct field, since Value's internal representation (e.g. a Decimal's
// scale, as in "3.00" versus "3") is deliberately not what callers
// should compare on.
var valueCmp = cmp.Comparer(func(a, b Value) bool { return Compare(a, b) == 0 })

// TestCanonicalFloatOrder is seed scenario 5: sorting the
// encoded bytes of {-1.5, -0.0, +0.0, 1.5, NaN} must match canonical
// order in the non-NaN prefix.
func TestCanonicalFloatOrder(t *testing.T) {
	negZero := math.Copysign(0, -1)
	floats := []float64{math.NaN(), 1.5, negZero, 0.0, -1.5}
	type pair struct {
		f   float64
		enc []byte
	}
	pairs := make([]pair, len(floats))
	for i, f := range floats {
		enc, err := EncodeComponent(Float(f))
		require.NoError(t, err)
		pairs[i] = pair{f, enc}
	}
	sort.Slice(pairs, func(i, j int) bool { return bytes.Compare(pairs[i].enc, pairs[j].enc) < 0 })

	nonNaN := make([]float64, 0, 4)
	for _, p := range pairs {
		if !math.IsNaN(p.f) {
			nonNaN = append(nonNaN, p.f)
		} else {
			// NaN must land deterministically at one extreme; this
			// encoder puts it last because Go's math.NaN() has its sign bit clear.
		}
	}
	require.Equal(t, []float64{-1.5, negZero, 0.0, 1.5}, nonNaN)
	require.True(t, math.Signbit(nonNaN[1]))
	require.False(t, math.Signbit(nonNaN[2]))
}

func TestDecimalCanonicalEquality(t *testing.T) {
	a, err := decimal.NewFromString("1.000")
	require.NoError(t, err)
	b, err := decimal.NewFromString("1.0")
	require.NoError(t, err)

	encA, err := EncodeComponent(DecimalV(a))
	require.NoError(t, err)
	encB, err := EncodeComponent(DecimalV(b))
	require.NoError(t, err)
	require.Equal(t, encA, encB)
	require.True(t, Equal(DecimalV(a), DecimalV(b)))
}

func TestDecimalOrdering(t *testing.T) {
	values := []string{"-100", "-1.5", "-0.001", "0", "0.5", "1", "99.9"}
	encodings := make([][]byte, len(values))
	for i, s := range values {
		d, err := decimal.NewFromString(s)
		require.NoError(t, err)
		enc, err := EncodeComponent(DecimalV(d))
		require.NoError(t, err)
		encodings[i] = enc
	}
	for i := 1; i < len(encodings); i++ {
		require.True(t, bytes.Compare(encodings[i-1], encodings[i]) < 0, "expected %s < %s", values[i-1], values[i])
	}
}

func TestIntegerOrderPreserved(t *testing.T) {
	ints := []int64{math.MinInt64, -100, -1, 0, 1, 100, math.MaxInt64}
	for i := 1; i < len(ints); i++ {
		a, err := EncodeComponent(Int(ints[i-1]))
		require.NoError(t, err)
		b, err := EncodeComponent(Int(ints[i]))
		require.NoError(t, err)
		require.True(t, bytes.Compare(a, b) < 0)
		require.Equal(t, -1, Compare(Int(ints[i-1]), Int(ints[i])))
	}
}

func TestTextRoundTripWithEscaping(t *testing.T) {
	texts := []string{"", "a", "aa", "ab", "b", "\x00", "\x00\x00"}
	encodings := make([][]byte, len(texts))
	for i, s := range texts {
		enc, err := EncodeComponent(Text(s))
		require.NoError(t, err)
		encodings[i] = enc
		v, err := DecodeComponent(KindText, enc)
		require.NoError(t, err)
		got, _ := v.AsText()
		require.Equal(t, s, got)
	}
}

func TestAccountRoundTrip(t *testing.T) {
	sub := [32]byte{1, 2, 3}
	a := Account{Owner: []byte("owner-bytes"), Subaccount: &sub}
	enc, err := EncodeComponent(AccountV(a))
	require.NoError(t, err)
	v, err := DecodeComponent(KindAccount, enc)
	require.NoError(t, err)
	got, ok := v.AsAccount()
	require.True(t, ok)
	require.Equal(t, a.Owner, got.Owner)
	require.Equal(t, *a.Subaccount, *got.Subaccount)
}

func TestEnumEncodeOrdersByVariant(t *testing.T) {
	e1 := Enum{Variant: "Active"}
	e2 := Enum{Variant: "Closed"}
	enc1, err := EncodeComponent(EnumV(e1))
	require.NoError(t, err)
	enc2, err := EncodeComponent(EnumV(e2))
	require.NoError(t, err)
	require.True(t, bytes.Compare(enc1, enc2) < 0)
}

func TestNullAndStructuredAreNotIndexable(t *testing.T) {
	_, err := EncodeComponent(Null())
	require.Error(t, err)
	_, err = EncodeComponent(Blob([]byte("x")))
	require.Error(t, err)
	_, err = EncodeComponent(List([]Value{Int(1)}))
	require.Error(t, err)
	_, err = EncodeComponent(MapV(nil))
	require.Error(t, err)
}

func TestFingerprint16Deterministic(t *testing.T) {
	a, err := Fingerprint16(Text("hello"))
	require.NoError(t, err)
	b, err := Fingerprint16(Text("hello"))
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := Fingerprint16(Text("world"))
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestValueSliceDiffViaCmp(t *testing.T) {
	d, err := decimal.NewFromString("3.00")
	require.NoError(t, err)
	got := []Value{Uint(1), DecimalV(d), Text("x")}
	want := []Value{Uint(1), DecimalV(decimal.New(3, 0)), Text("x")}

	if diff := cmp.Diff(want, got, valueCmp); diff != "" {
		t.Fatalf("unexpected diff (-want +got):\n%s", diff)
	}

	want[2] = Text("y")
	if diff := cmp.Diff(want, got, valueCmp); diff == "" {
		t.Fatal("expected a diff after changing the third element")
	}
}
