// Package entity defines the accounting records maintained by the
// indexer. Identifiers are lowercase hex addresses, or composite keys
// documented per type. Decimal fields carry human-scaled values;
// *big.Int fields carry raw on-chain integers.
package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FactoryID is the id of the factory singleton row.
const FactoryID = "factory"

// BundleID is the id of the native price singleton row.
const BundleID = "1"

// Factory is the protocol-wide aggregate singleton.
type Factory struct {
	ID               string
	PoolCount        int64
	TxCount          int64
	TotalVolumeUSD   decimal.Decimal
	TotalVolumeMatic decimal.Decimal
	UntrackedVolume  decimal.Decimal
	TotalFeesUSD     decimal.Decimal
	TotalFeesMatic   decimal.Decimal
	TotalValueUSD    decimal.Decimal
	TotalValueMatic  decimal.Decimal
	Owner            string
}

// Bundle holds the USD price of the chain's native token.
type Bundle struct {
	ID            string
	MaticPriceUSD decimal.Decimal
}

// Token is an ERC-20 participating in at least one pool.
type Token struct {
	ID          string
	Symbol      string
	Name        string
	Decimals    int32
	TotalSupply *big.Int

	Volume          decimal.Decimal
	VolumeUSD       decimal.Decimal
	UntrackedVolume decimal.Decimal
	FeesUSD         decimal.Decimal
	TxCount         int64
	PoolCount       int64

	TotalValueLocked    decimal.Decimal
	TotalValueLockedUSD decimal.Decimal

	DerivedMatic decimal.Decimal

	// WhitelistPools lists pool ids that pair this token with a
	// whitelisted counterparty, for price discovery walks.
	WhitelistPools []string
}

// Pool is one concentrated-liquidity pair.
type Pool struct {
	ID             string
	CreatedAt      int64
	CreatedAtBlock int64
	Token0         string
	Token1         string

	// ReversedOrder marks pools whose on-chain token order is the
	// opposite of the canonical reporting order. Set once at creation.
	ReversedOrder bool

	Fee           int64
	CommunityFee0 int64
	CommunityFee1 int64

	Liquidity *big.Int
	SqrtPrice *big.Int
	// Tick is nil until the pool is initialized.
	Tick             *int32
	FeeGrowthGlobal0 *big.Int
	FeeGrowthGlobal1 *big.Int

	Token0Price decimal.Decimal
	Token1Price decimal.Decimal

	Volume0         decimal.Decimal
	Volume1         decimal.Decimal
	VolumeUSD       decimal.Decimal
	UntrackedVolume decimal.Decimal
	FeesUSD         decimal.Decimal
	UntrackedFees   decimal.Decimal
	FeesToken0      decimal.Decimal
	FeesToken1      decimal.Decimal
	TxCount         int64

	CollectedFees0   decimal.Decimal
	CollectedFees1   decimal.Decimal
	CollectedFeesUSD decimal.Decimal

	TotalValueLocked0      decimal.Decimal
	TotalValueLocked1      decimal.Decimal
	TotalValueLockedMatic  decimal.Decimal
	TotalValueLockedUSD    decimal.Decimal
	LiquidityProviderCount int64
}

// Tick is one initialized tick of a pool. ID is "<pool>#<tickIdx>".
type Tick struct {
	ID             string
	Pool           string
	TickIdx        int32
	CreatedAt      int64
	CreatedAtBlock int64

	LiquidityGross *big.Int
	LiquidityNet   *big.Int

	Price0 decimal.Decimal
	Price1 decimal.Decimal

	VolumeToken0 decimal.Decimal
	VolumeToken1 decimal.Decimal
	VolumeUSD    decimal.Decimal
	FeesUSD      decimal.Decimal

	FeeGrowthOutside0 *big.Int
	FeeGrowthOutside1 *big.Int
}

// Transaction groups the events of one on-chain transaction.
type Transaction struct {
	ID          string
	BlockNumber int64
	Timestamp   int64
	GasLimit    *big.Int
	GasPrice    *big.Int
}

// Mint is a liquidity deposit. ID is "<txHash>#<poolTxCount>".
type Mint struct {
	ID          string
	Transaction string
	Timestamp   int64
	Pool        string
	Token0      string
	Token1      string
	Owner       string
	Sender      string
	Origin      string

	Liquidity *big.Int
	Amount0   decimal.Decimal
	Amount1   decimal.Decimal
	AmountUSD decimal.Decimal

	TickLower int32
	TickUpper int32
	LogIndex  int64
}

// Burn is a liquidity withdrawal. ID is "<txHash>#<poolTxCount>".
type Burn struct {
	ID          string
	Transaction string
	Timestamp   int64
	Pool        string
	Token0      string
	Token1      string
	Owner       string
	Origin      string

	Liquidity *big.Int
	Amount0   decimal.Decimal
	Amount1   decimal.Decimal
	AmountUSD decimal.Decimal

	TickLower int32
	TickUpper int32
	LogIndex  int64
}

// Swap is one trade. ID is "<txHash>#<factoryTxCount>".
type Swap struct {
	ID          string
	Transaction string
	Timestamp   int64
	Pool        string
	Token0      string
	Token1      string
	Sender      string
	Recipient   string
	Origin      string

	Amount0   decimal.Decimal
	Amount1   decimal.Decimal
	AmountUSD decimal.Decimal

	SqrtPriceX96 *big.Int
	Tick         int32
	LogIndex     int64
}

// PoolFeeData records one fee reconfiguration.
// ID is "<timestamp>-<pool>".
type PoolFeeData struct {
	ID        string
	Pool      string
	Fee       int64
	Timestamp int64
}
