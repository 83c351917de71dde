package numeric

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// divPrecision is the base-10 scale used for all inexact divisions.
const divPrecision = 34

// Q192 is 2^192, the denominator of the squared Q96 sqrt price.
var Q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// tickBase is the price ratio of one tick step.
var tickBase = decimal.RequireFromString("1.0001")

// Exponent returns 10^decimals as a decimal.
func Exponent(decimals int32) decimal.Decimal {
	return decimal.New(1, decimals)
}

// FromRaw converts a raw integer token amount to a decimal using the
// token's decimals. A nil value converts to zero.
func FromRaw(value *big.Int, decimals int32) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -decimals)
}

// SafeDiv divides a by b, returning zero when b is zero. "No price
// available" is a valid result, not an error.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, divPrecision)
}

// ParseBig parses a base-10 integer string. Empty input parses to zero.
func ParseBig(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}

// PricesFromSqrt converts a pool's Q96 sqrt price into the two token
// exchange rates. price1 is token1 units per one token0; price0 is its
// guarded reciprocal.
func PricesFromSqrt(sqrtPrice *big.Int, decimals0, decimals1 int32) (decimal.Decimal, decimal.Decimal) {
	if sqrtPrice == nil {
		return decimal.Zero, decimal.Zero
	}
	num := decimal.NewFromBigInt(new(big.Int).Mul(sqrtPrice, sqrtPrice), 0)
	denom := decimal.NewFromBigInt(Q192, 0)

	price1 := num.DivRound(denom, divPrecision).
		Mul(Exponent(decimals0)).
		DivRound(Exponent(decimals1), divPrecision)
	price0 := SafeDiv(decimal.New(1, 0), price1)
	return price0, price1
}

// TickPrices returns the token prices at a tick index: price0 =
// 1.0001^tick, price1 = 1/price0.
func TickPrices(tickIdx int32) (decimal.Decimal, decimal.Decimal) {
	price0 := powTruncated(tickBase, int64(tickIdx))
	price1 := SafeDiv(decimal.New(1, 0), price0)
	return price0, price1
}

// powTruncated raises base to an integer exponent by squaring, rounding
// intermediate results so large tick indexes stay tractable.
func powTruncated(base decimal.Decimal, exp int64) decimal.Decimal {
	if exp == 0 {
		return decimal.New(1, 0)
	}
	if exp < 0 {
		return SafeDiv(decimal.New(1, 0), powTruncated(base, -exp))
	}

	result := decimal.New(1, 0)
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base).Round(divPrecision)
		}
		base = base.Mul(base).Round(divPrecision)
		exp >>= 1
	}
	return result
}
