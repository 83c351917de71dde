package pricing

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"algebraScope/internal/entity"
	"algebraScope/internal/store"
)

const (
	wmatic = "0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270"
	usdc   = "0x2791bca1f2de4661ed88a30c99a7a9449aa84174"
	abc    = "0x00000000000000000000000000000000000abc00"

	stablePool = "0x00000000000000000000000000000000000p0001"
	abcPool    = "0x00000000000000000000000000000000000p0002"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture(t *testing.T) (*store.Store, *Pricer) {
	t.Helper()
	st := store.New()
	p := New(st, Config{
		BaseToken:         wmatic,
		BaseStablePool:    stablePool,
		WhitelistTokens:   []string{wmatic, usdc},
		Stablecoins:       []string{usdc},
		MinimumBaseLocked: dec("100"),
	})
	return st, p
}

func TestBasePriceUSD(t *testing.T) {
	st, p := newFixture(t)

	if !p.BasePriceUSD().IsZero() {
		t.Fatalf("price before reference pool exists: want 0")
	}

	// WMATIC is token0, so its USD price is token1 (USDC) per token0.
	st.Pools.Put(stablePool, &entity.Pool{
		ID:          stablePool,
		Token0:      wmatic,
		Token1:      usdc,
		Token1Price: dec("0.72"),
		Token0Price: dec("1.3888"),
	})
	if !p.BasePriceUSD().Equal(dec("0.72")) {
		t.Fatalf("base price: got %s, want 0.72", p.BasePriceUSD())
	}
}

func TestDerivedBaseIdentityAndStable(t *testing.T) {
	st, p := newFixture(t)
	bundle := &entity.Bundle{ID: entity.BundleID, MaticPriceUSD: dec("0.5")}

	base := &entity.Token{ID: wmatic}
	st.Tokens.Put(wmatic, base)
	if !p.DerivedBase(base, bundle).Equal(decimal.New(1, 0)) {
		t.Fatalf("base token: want derived price 1")
	}

	stableTok := &entity.Token{ID: usdc}
	st.Tokens.Put(usdc, stableTok)
	if !p.DerivedBase(stableTok, bundle).Equal(dec("2")) {
		t.Fatalf("stablecoin: want 1/maticPriceUSD = 2, got %s", p.DerivedBase(stableTok, bundle))
	}
}

func TestDerivedBaseWhitelistWalk(t *testing.T) {
	st, p := newFixture(t)
	bundle := &entity.Bundle{ID: entity.BundleID, MaticPriceUSD: dec("0.5")}

	st.Tokens.Put(wmatic, &entity.Token{ID: wmatic, DerivedMatic: decimal.New(1, 0)})
	unknown := &entity.Token{ID: abc, WhitelistPools: []string{abcPool}}
	st.Tokens.Put(abc, unknown)

	// ABC is token0 paired with WMATIC; 4 WMATIC buys 1 ABC.
	st.Pools.Put(abcPool, &entity.Pool{
		ID:                abcPool,
		Token0:            abc,
		Token1:            wmatic,
		Liquidity:         big.NewInt(1),
		Token1Price:       dec("4"),
		TotalValueLocked1: dec("500"),
	})

	got := p.DerivedBase(unknown, bundle)
	if !got.Equal(dec("4")) {
		t.Fatalf("derived price: got %s, want 4", got)
	}
}

func TestDerivedBaseRespectsMinimumLocked(t *testing.T) {
	st, p := newFixture(t)
	bundle := &entity.Bundle{ID: entity.BundleID, MaticPriceUSD: dec("0.5")}

	st.Tokens.Put(wmatic, &entity.Token{ID: wmatic, DerivedMatic: decimal.New(1, 0)})
	unknown := &entity.Token{ID: abc, WhitelistPools: []string{abcPool}}
	st.Tokens.Put(abc, unknown)

	// Counterparty side holds only 50 WMATIC, under the 100 floor.
	st.Pools.Put(abcPool, &entity.Pool{
		ID:                abcPool,
		Token0:            abc,
		Token1:            wmatic,
		Liquidity:         big.NewInt(1),
		Token1Price:       dec("4"),
		TotalValueLocked1: dec("50"),
	})

	if got := p.DerivedBase(unknown, bundle); !got.IsZero() {
		t.Fatalf("shallow pool should not price token: got %s", got)
	}
}

func TestTrackedVolumeUSD(t *testing.T) {
	_, p := newFixture(t)
	bundle := &entity.Bundle{ID: entity.BundleID, MaticPriceUSD: dec("2")}

	wl0 := &entity.Token{ID: wmatic, DerivedMatic: dec("1")}
	wl1 := &entity.Token{ID: usdc, DerivedMatic: dec("0.5")}
	unlisted := &entity.Token{ID: abc, DerivedMatic: dec("3")}

	// Both whitelisted: 10*2 + 20*1 = 40.
	got := p.TrackedVolumeUSD(dec("10"), wl0, dec("20"), wl1, bundle)
	if !got.Equal(dec("40")) {
		t.Fatalf("both whitelisted: got %s, want 40", got)
	}

	// One whitelisted: 10*2*2 = 40.
	got = p.TrackedVolumeUSD(dec("10"), wl0, dec("20"), unlisted, bundle)
	if !got.Equal(dec("40")) {
		t.Fatalf("one whitelisted: got %s, want 40", got)
	}

	// Neither whitelisted: zero.
	got = p.TrackedVolumeUSD(dec("10"), unlisted, dec("20"), unlisted, bundle)
	if !got.IsZero() {
		t.Fatalf("none whitelisted: got %s, want 0", got)
	}
}
