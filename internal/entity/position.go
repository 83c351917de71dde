package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ZeroAddress marks burned or not-yet-owned positions.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Position is one NFT liquidity position. ID is the token id as
// decimal text.
type Position struct {
	ID          string
	Owner       string
	Pool        string
	Token0      string
	Token1      string
	TickLower   string
	TickUpper   string
	Transaction string

	Liquidity *big.Int

	DepositedToken0 decimal.Decimal
	DepositedToken1 decimal.Decimal
	WithdrawnToken0 decimal.Decimal
	WithdrawnToken1 decimal.Decimal
	CollectedToken0 decimal.Decimal
	CollectedToken1 decimal.Decimal

	CollectedFeesToken0 decimal.Decimal
	CollectedFeesToken1 decimal.Decimal

	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
}

// PositionSnapshot captures a position after each mutation.
// ID is "<position>#<blockNumber>".
type PositionSnapshot struct {
	ID          string
	Owner       string
	Pool        string
	Position    string
	BlockNumber int64
	Timestamp   int64
	Transaction string

	Liquidity *big.Int

	DepositedToken0     decimal.Decimal
	DepositedToken1     decimal.Decimal
	WithdrawnToken0     decimal.Decimal
	WithdrawnToken1     decimal.Decimal
	CollectedFeesToken0 decimal.Decimal
	CollectedFeesToken1 decimal.Decimal

	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
}
