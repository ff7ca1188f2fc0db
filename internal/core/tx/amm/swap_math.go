// Package amm implements the constant-product swap pool attached to a
// bond market. Pool reserves live in the market's vault token
// accounts; the pool entry itself only records its derivation.
package amm

import "math/bits"

// feeDenominator is the basis-point scale for swap fees.
const feeDenominator = 10_000

// priceScale expresses effective prices in quote micro-units per bond
// unit.
const priceScale = 1_000_000

// ConstantProductOut computes the gross output of a swap against
// reserves (inReserve, outReserve) holding x*y=k, before fees. All
// intermediates are 128-bit; ok is false when the input overflows the
// reserve or a reserve is zero.
func ConstantProductOut(inReserve, outReserve, amountIn uint64) (out uint64, ok bool) {
	if inReserve == 0 || outReserve == 0 {
		return 0, false
	}
	newIn := inReserve + amountIn
	if newIn < inReserve {
		return 0, false
	}

	hi, lo := bits.Mul64(inReserve, outReserve)
	if hi >= newIn {
		return 0, false
	}
	// The division truncates, which keeps the computed output at or
	// below the exact constant-product amount.
	newOut, _ := bits.Div64(hi, lo, newIn)
	if newOut > outReserve {
		return 0, false
	}
	return outReserve - newOut, true
}

// FeeOn returns the fee retained from a gross output, rounded down.
// ok is false for a fee rate at or above the full denominator.
func FeeOn(amount uint64, feeBps uint16) (fee uint64, ok bool) {
	if feeBps >= feeDenominator {
		return 0, false
	}
	hi, lo := bits.Mul64(amount, uint64(feeBps))
	fee, _ = bits.Div64(hi, lo, feeDenominator)
	return fee, true
}

// EffectivePrice returns the realized price of a trade in quote
// micro-units per bond unit, rounded down. ok is false when the bond
// amount is zero or the scaled price exceeds uint64.
func EffectivePrice(quoteAmount, bondAmount uint64) (price uint64, ok bool) {
	if bondAmount == 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(quoteAmount, priceScale)
	if hi >= bondAmount {
		return 0, false
	}
	price, _ = bits.Div64(hi, lo, bondAmount)
	return price, true
}
