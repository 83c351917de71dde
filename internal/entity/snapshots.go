package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Interval lengths in seconds for snapshot bucketing.
const (
	HourSeconds = 3600
	DaySeconds  = 86400
)

// FactoryDayData is the protocol-wide daily rollup. ID is the day index
// as decimal text.
type FactoryDayData struct {
	ID                 string
	Date               int64
	VolumeMatic        decimal.Decimal
	VolumeUSD          decimal.Decimal
	VolumeUSDUntracked decimal.Decimal
	FeesUSD            decimal.Decimal
	TxCount            int64
	TVLUSD             decimal.Decimal
}

// PoolDayData is one pool's daily rollup. ID is "<pool>-<dayIndex>".
type PoolDayData struct {
	ID   string
	Date int64
	Pool string

	Liquidity        *big.Int
	SqrtPrice        *big.Int
	Token0Price      decimal.Decimal
	Token1Price      decimal.Decimal
	Tick             *int32
	FeeGrowthGlobal0 *big.Int
	FeeGrowthGlobal1 *big.Int

	TVLUSD     decimal.Decimal
	Volume0    decimal.Decimal
	Volume1    decimal.Decimal
	VolumeUSD  decimal.Decimal
	FeesUSD    decimal.Decimal
	Token0Fees decimal.Decimal
	Token1Fees decimal.Decimal
	TxCount    int64

	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

// PoolHourData is one pool's hourly rollup. ID is "<pool>-<hourIndex>".
type PoolHourData struct {
	ID          string
	PeriodStart int64
	Pool        string

	Liquidity        *big.Int
	SqrtPrice        *big.Int
	Token0Price      decimal.Decimal
	Token1Price      decimal.Decimal
	Tick             *int32
	FeeGrowthGlobal0 *big.Int
	FeeGrowthGlobal1 *big.Int

	TVLUSD    decimal.Decimal
	Volume0   decimal.Decimal
	Volume1   decimal.Decimal
	VolumeUSD decimal.Decimal
	FeesUSD   decimal.Decimal
	TxCount   int64

	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

// TokenDayData is one token's daily rollup. ID is "<token>-<dayIndex>".
type TokenDayData struct {
	ID    string
	Date  int64
	Token string

	Volume          decimal.Decimal
	VolumeUSD       decimal.Decimal
	UntrackedVolume decimal.Decimal
	FeesUSD         decimal.Decimal

	TotalValueLocked    decimal.Decimal
	TotalValueLockedUSD decimal.Decimal

	PriceUSD decimal.Decimal
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
}

// TokenHourData is one token's hourly rollup. ID is "<token>-<hourIndex>".
type TokenHourData struct {
	ID          string
	PeriodStart int64
	Token       string

	Volume          decimal.Decimal
	VolumeUSD       decimal.Decimal
	UntrackedVolume decimal.Decimal
	FeesUSD         decimal.Decimal

	TotalValueLocked    decimal.Decimal
	TotalValueLockedUSD decimal.Decimal

	PriceUSD decimal.Decimal
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
}

// TickDayData is one tick's daily rollup. ID is "<pool>#<tickIdx>-<dayIndex>".
type TickDayData struct {
	ID   string
	Date int64
	Pool string
	Tick string

	LiquidityGross *big.Int
	LiquidityNet   *big.Int

	VolumeToken0 decimal.Decimal
	VolumeToken1 decimal.Decimal
	VolumeUSD    decimal.Decimal
	FeesUSD      decimal.Decimal

	FeeGrowthOutside0 *big.Int
	FeeGrowthOutside1 *big.Int
}

// FeeHourData tracks fee-level statistics per pool per hour.
// ID is "<pool>-<hourIndex>".
type FeeHourData struct {
	ID          string
	Pool        string
	PeriodStart int64

	Fee          int64
	ChangesCount int64
	MinFee       int64
	MaxFee       int64
	StartFee     int64
	EndFee       int64
}
