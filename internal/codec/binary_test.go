package codec

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func binaryRoundTrip(t *testing.T, v Value) Value {
	t.Helper()
	data, err := serializeBinary(v)
	require.NoError(t, err)
	out, err := deserializeBinary(data)
	require.NoError(t, err)
	return out
}

func TestBinaryScalars(t *testing.T) {
	require.Equal(t, Null{}, binaryRoundTrip(t, Null{}))
	require.Equal(t, Boolean(true), binaryRoundTrip(t, Boolean(true)))
	require.Equal(t, Boolean(false), binaryRoundTrip(t, Boolean(false)))
}

func TestBinaryIntegerWidths(t *testing.T) {
	for _, n := range []float64{
		0, 1, 127, // packed into the tag byte
		-1, -128, 128, // int8 boundary
		-32768, 32767, 1000, // int16
		-2147483648, 2147483647, 100000, // int32
		1 << 40, -(1 << 40), // int64
	} {
		got := binaryRoundTrip(t, Number(n))
		require.Equal(t, Number(n), got, "value %v", n)
	}
}

func TestBinarySmallIntIsOneByte(t *testing.T) {
	data, err := serializeBinary(Number(5))
	require.NoError(t, err)
	// format version byte + one tag byte
	require.Len(t, data, 2)
}

func TestBinaryFloats(t *testing.T) {
	for _, f := range []float64{0.5, -math.Pi, 1e300, math.Inf(1), math.Inf(-1)} {
		require.Equal(t, Number(f), binaryRoundTrip(t, Number(f)), "value %v", f)
	}
	nan := binaryRoundTrip(t, Number(math.NaN()))
	require.True(t, math.IsNaN(float64(nan.(Number))))
}

func TestBinaryStringLengths(t *testing.T) {
	for _, n := range []int{0, 1, 15, 16, 255, 256, 70000} {
		s := String(strings.Repeat("x", n))
		require.Equal(t, s, binaryRoundTrip(t, s), "length %d", n)
	}
}

func TestBinaryContainers(t *testing.T) {
	arr := Array{Number(1), String("two"), Boolean(true), Null{}}
	require.Equal(t, arr, binaryRoundTrip(t, arr))

	m := Map{
		{Key: String("id"), Value: String("Test")},
		{Key: Number(1), Value: Map{{Key: String("kind"), Value: String("aura")}}},
		{Key: String("xOffset"), Value: Number(-12.5)},
	}
	require.Equal(t, m, binaryRoundTrip(t, m))

	big := make(Array, 300)
	for i := range big {
		big[i] = Number(float64(i))
	}
	require.Equal(t, big, binaryRoundTrip(t, big))
}

func TestBinaryRejectsTrailingBytes(t *testing.T) {
	data, err := serializeBinary(Number(1))
	require.NoError(t, err)
	_, err = deserializeBinary(append(data, 0x00))
	require.Error(t, err)
}

func TestBinaryRejectsTruncation(t *testing.T) {
	data, err := serializeBinary(String(strings.Repeat("y", 100)))
	require.NoError(t, err)
	for _, cut := range []int{0, 1, 2, len(data) / 2, len(data) - 1} {
		_, err := deserializeBinary(data[:cut])
		require.Error(t, err, "prefix of %d bytes", cut)
	}
}

func TestBinaryRejectsUnknownVersion(t *testing.T) {
	_, err := deserializeBinary([]byte{0x7f, 0x03})
	require.Error(t, err)
}

func TestBinaryDepthLimit(t *testing.T) {
	// 1-element array nested past the depth bound.
	var v Value = Number(1)
	for i := 0; i < maxBinaryDepth+10; i++ {
		v = Array{v}
	}
	data, err := serializeBinary(v)
	require.NoError(t, err)
	_, err = deserializeBinary(data)
	require.Error(t, err)
}

func TestBinaryMixedContainer(t *testing.T) {
	// Hand-built: format version, mixed tag with array count 2, map count
	// 1, two packed small ints, then the pair "a" = 3.
	data := []byte{
		binaryFormatVersion,
		2<<4 | embMixed<<2 | 2,
		1,
		7<<1 | 1,
		9<<1 | 1,
		1<<4 | embString<<2 | 2, 'a',
		3<<1 | 1,
	}
	v, err := deserializeBinary(data)
	require.NoError(t, err)
	require.Equal(t, Map{
		{Key: Number(1), Value: Number(7)},
		{Key: Number(2), Value: Number(9)},
		{Key: String("a"), Value: Number(3)},
	}, v)
}
