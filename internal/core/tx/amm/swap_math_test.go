package amm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstantProductOut(t *testing.T) {
	// 1,000,000 x 500,000 pool taking 10,000 in:
	// k/(x+in) = 500,000,000,000/1,010,000 = 495,049 so 4,951 comes out.
	out, ok := ConstantProductOut(1_000_000, 500_000, 10_000)
	require.True(t, ok)
	require.Equal(t, uint64(4_951), out)

	// Reserves beyond 32 bits force the product through 128 bits.
	// With equal reserves r, out is exactly the input: r*r splits as
	// (r+a)*(r-a)+a*a and the a*a remainder truncates away.
	out, ok = ConstantProductOut(math.MaxUint64/2, math.MaxUint64/2, 1_000_000)
	require.True(t, ok)
	require.Equal(t, uint64(1_000_000), out)

	// Zero input moves nothing.
	out, ok = ConstantProductOut(1_000_000, 500_000, 0)
	require.True(t, ok)
	require.Zero(t, out)
}

func TestConstantProductOutRejects(t *testing.T) {
	_, ok := ConstantProductOut(0, 500_000, 10)
	require.False(t, ok)

	_, ok = ConstantProductOut(1_000_000, 0, 10)
	require.False(t, ok)

	// Input overflows the in-side reserve.
	_, ok = ConstantProductOut(math.MaxUint64, 500_000, 1)
	require.False(t, ok)
}

func TestFeeOn(t *testing.T) {
	fee, ok := FeeOn(4_951, 30)
	require.True(t, ok)
	require.Equal(t, uint64(14), fee)

	fee, ok = FeeOn(math.MaxUint64, 30)
	require.True(t, ok)
	require.Equal(t, uint64(55_340_232_221_128_654), fee)

	_, ok = FeeOn(100, 10_000)
	require.False(t, ok)
}

func TestEffectivePrice(t *testing.T) {
	// 10,000 quote for 4,937 bonds, scaled by 1e6.
	price, ok := EffectivePrice(10_000, 4_937)
	require.True(t, ok)
	require.Equal(t, uint64(2_025_521), price)

	_, ok = EffectivePrice(10_000, 0)
	require.False(t, ok)
}
