// Package pricing derives USD valuations from pool state. All prices
// route through the chain's native token: a token's DerivedMatic rate
// times the bundle's MaticPriceUSD gives its USD price.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"algebraScope/internal/entity"
	"algebraScope/internal/numeric"
	"algebraScope/internal/store"
)

// Config selects the reference pool and the price-discovery whitelist.
type Config struct {
	// BaseToken is the wrapped native token address.
	BaseToken string
	// BaseStablePool prices the native token against a stablecoin.
	BaseStablePool string
	// WhitelistTokens may appear on the known side of a discovery hop.
	WhitelistTokens []string
	// Stablecoins are pinned to one USD.
	Stablecoins []string
	// MinimumBaseLocked is the native-token TVL a pool must hold on
	// its known side before it can price the unknown side.
	MinimumBaseLocked decimal.Decimal
}

// Pricer walks the pool graph to value tokens in native and USD terms.
type Pricer struct {
	store       *store.Store
	cfg         Config
	whitelisted map[string]bool
	stable      map[string]bool
}

// New builds a Pricer over the given store.
func New(st *store.Store, cfg Config) *Pricer {
	cfg.BaseToken = strings.ToLower(cfg.BaseToken)
	cfg.BaseStablePool = strings.ToLower(cfg.BaseStablePool)

	whitelisted := make(map[string]bool, len(cfg.WhitelistTokens))
	for _, addr := range cfg.WhitelistTokens {
		whitelisted[strings.ToLower(addr)] = true
	}
	stable := make(map[string]bool, len(cfg.Stablecoins))
	for _, addr := range cfg.Stablecoins {
		stable[strings.ToLower(addr)] = true
	}
	return &Pricer{store: st, cfg: cfg, whitelisted: whitelisted, stable: stable}
}

// IsWhitelisted reports whether the token can anchor a discovery hop.
func (p *Pricer) IsWhitelisted(addr string) bool {
	return p.whitelisted[strings.ToLower(addr)]
}

// BasePriceUSD reads the native token's USD price off the reference
// stable pool. Zero until that pool exists and is priced.
func (p *Pricer) BasePriceUSD() decimal.Decimal {
	pool := p.store.Pools.Get(p.cfg.BaseStablePool)
	if pool == nil {
		return decimal.Zero
	}
	if pool.Token0 == p.cfg.BaseToken {
		return pool.Token1Price
	}
	return pool.Token0Price
}

// DerivedBase computes the token's price in native-token terms by
// scanning its whitelist pools for the deepest priced counterparty.
// Returns zero when no pool qualifies.
func (p *Pricer) DerivedBase(token *entity.Token, bundle *entity.Bundle) decimal.Decimal {
	if token.ID == p.cfg.BaseToken {
		return decimal.New(1, 0)
	}
	if p.stable[token.ID] {
		return numeric.SafeDiv(decimal.New(1, 0), bundle.MaticPriceUSD)
	}

	largestLocked := decimal.Zero
	priceSoFar := decimal.Zero

	for _, poolID := range token.WhitelistPools {
		pool := p.store.Pools.Get(poolID)
		if pool == nil || pool.Liquidity == nil || pool.Liquidity.Sign() <= 0 {
			continue
		}
		if pool.Token0 == token.ID {
			other := p.store.Tokens.Get(pool.Token1)
			if other == nil {
				continue
			}
			locked := pool.TotalValueLocked1.Mul(other.DerivedMatic)
			if locked.GreaterThan(largestLocked) && locked.GreaterThan(p.cfg.MinimumBaseLocked) {
				largestLocked = locked
				priceSoFar = pool.Token1Price.Mul(other.DerivedMatic)
			}
		}
		if pool.Token1 == token.ID {
			other := p.store.Tokens.Get(pool.Token0)
			if other == nil {
				continue
			}
			locked := pool.TotalValueLocked0.Mul(other.DerivedMatic)
			if locked.GreaterThan(largestLocked) && locked.GreaterThan(p.cfg.MinimumBaseLocked) {
				largestLocked = locked
				priceSoFar = pool.Token0Price.Mul(other.DerivedMatic)
			}
		}
	}
	return priceSoFar
}

// TrackedVolumeUSD values a trade using only whitelisted legs. Both
// sides whitelisted sums both legs; one side doubles it; neither side
// contributes nothing. Callers halve the two-leg sum to get per-trade
// volume.
func (p *Pricer) TrackedVolumeUSD(amount0 decimal.Decimal, token0 *entity.Token, amount1 decimal.Decimal, token1 *entity.Token, bundle *entity.Bundle) decimal.Decimal {
	price0 := token0.DerivedMatic.Mul(bundle.MaticPriceUSD)
	price1 := token1.DerivedMatic.Mul(bundle.MaticPriceUSD)

	wl0 := p.whitelisted[token0.ID]
	wl1 := p.whitelisted[token1.ID]
	switch {
	case wl0 && wl1:
		return amount0.Mul(price0).Add(amount1.Mul(price1))
	case wl0:
		return amount0.Mul(price0).Mul(decimal.New(2, 0))
	case wl1:
		return amount1.Mul(price1).Mul(decimal.New(2, 0))
	default:
		return decimal.Zero
	}
}
