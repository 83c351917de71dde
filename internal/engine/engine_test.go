package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"algebraScope/internal/entity"
	"algebraScope/internal/intervals"
	"algebraScope/internal/model"
	"algebraScope/internal/pricing"
	"algebraScope/internal/store"
)

const (
	wmaticAddr = "0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270"
	usdcAddr   = "0x2791bca1f2de4661ed88a30c99a7a9449aa84174"
	poolAddr   = "0x00000000000000000000000000000000000p0001"
)

type fakeReader struct {
	metaErr   map[string]error
	tickReads int
}

func (f *fakeReader) TokenMetadata(_ context.Context, token string) (TokenMetadata, error) {
	if err := f.metaErr[token]; err != nil {
		return TokenMetadata{}, err
	}
	return TokenMetadata{Symbol: "TOK", Name: "Token", Decimals: 18, TotalSupply: big.NewInt(0)}, nil
}

func (f *fakeReader) TickFeeGrowthOutside(_ context.Context, _ string, _ int32) (*big.Int, *big.Int, error) {
	f.tickReads++
	return big.NewInt(0), big.NewInt(0), nil
}

func (f *fakeReader) PoolFeeGrowthGlobal(_ context.Context, _ string) (*big.Int, *big.Int, error) {
	return big.NewInt(0), big.NewInt(0), nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newEngine(t *testing.T, reader *fakeReader, cfg Config) (*Engine, *store.Store) {
	t.Helper()
	st := store.New()
	pricer := pricing.New(st, pricing.Config{
		BaseToken:       wmaticAddr,
		BaseStablePool:  poolAddr,
		WhitelistTokens: []string{wmaticAddr, usdcAddr},
	})
	return New(st, pricer, intervals.New(st), reader, cfg, nil), st
}

func event(name, address string, ts uint64, decoded interface{}) *model.Event {
	return &model.Event{
		BlockNumber: 1000,
		TxHash:      "0xtx1",
		Address:     address,
		EventName:   name,
		Timestamp:   ts,
		TxOrigin:    "0xorigin",
		Decoded:     decoded,
	}
}

func createPool(t *testing.T, e *Engine) {
	t.Helper()
	err := e.Apply(context.Background(), event(model.EventPoolCreated, "0xfactory", 1000, &model.PoolCreatedData{
		Token0: wmaticAddr,
		Token1: usdcAddr,
		Pool:   poolAddr,
	}))
	if err != nil {
		t.Fatalf("pool creation: %v", err)
	}
}

func initializePool(t *testing.T, e *Engine) {
	t.Helper()
	sqrt := new(big.Int).Lsh(big.NewInt(1), 96)
	err := e.Apply(context.Background(), event(model.EventInitialize, poolAddr, 1000, &model.InitializeData{
		Price: sqrt.String(),
		Tick:  0,
	}))
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
}

func raw(amount string) string {
	d := decimal.RequireFromString(amount)
	return d.Shift(18).BigInt().String()
}

func TestPoolCreatedMetadataFailureCreatesNothing(t *testing.T) {
	reader := &fakeReader{metaErr: map[string]error{usdcAddr: errors.New("contract unreachable")}}
	e, st := newEngine(t, reader, Config{})

	// Token1 metadata fails after token0 resolved; the event is
	// swallowed so the run keeps going past it.
	ev := event(model.EventPoolCreated, "0xfactory", 1000, &model.PoolCreatedData{
		Token0: wmaticAddr, Token1: usdcAddr, Pool: poolAddr,
	})
	if err := e.Apply(context.Background(), ev); err != nil {
		t.Fatalf("unresolvable metadata must be skipped, not fatal: %v", err)
	}
	if st.Pools.Get(poolAddr) != nil {
		t.Fatalf("skipped creation must not register the pool")
	}
	if st.Tokens.Get(wmaticAddr) != nil || st.Tokens.Get(usdcAddr) != nil {
		t.Fatalf("skipped creation must not leave partial token entities")
	}
	if e.State().Factory.PoolCount != 0 {
		t.Fatalf("skipped creation must not bump pool count")
	}

	// A resighting after the reader recovers still creates everything.
	reader.metaErr = nil
	if err := e.Apply(context.Background(), ev); err != nil {
		t.Fatalf("resighting: %v", err)
	}
	if st.Pools.Get(poolAddr) == nil || e.State().Factory.PoolCount != 1 {
		t.Fatalf("resighted creation should register the pool once")
	}
	if st.Tokens.Get(wmaticAddr) == nil || st.Tokens.Get(usdcAddr) == nil {
		t.Fatalf("resighted creation should register both tokens")
	}
}

func TestPoolCreatedReversedOrder(t *testing.T) {
	e, st := newEngine(t, &fakeReader{}, Config{ReversedPools: []string{poolAddr}})
	createPool(t, e)

	pool := st.Pools.Get(poolAddr)
	if pool == nil {
		t.Fatalf("pool not created")
	}
	if !pool.ReversedOrder {
		t.Fatalf("pool should carry the reversed flag")
	}
	if pool.Token0 != usdcAddr || pool.Token1 != wmaticAddr {
		t.Fatalf("reversed pool must swap token order: got %s/%s", pool.Token0, pool.Token1)
	}
}

func TestWhitelistPoolRegistration(t *testing.T) {
	e, st := newEngine(t, &fakeReader{}, Config{})
	createPool(t, e)

	for _, addr := range []string{wmaticAddr, usdcAddr} {
		tok := st.Tokens.Get(addr)
		if tok == nil || len(tok.WhitelistPools) != 1 || tok.WhitelistPools[0] != poolAddr {
			t.Fatalf("token %s should list the new pool for discovery", addr)
		}
	}
}

func TestMintStraddlingCurrentTick(t *testing.T) {
	e, st := newEngine(t, &fakeReader{}, Config{})
	createPool(t, e)
	initializePool(t, e)

	err := e.Apply(context.Background(), event(model.EventMint, poolAddr, 2000, &model.MintData{
		Sender:          "0xsender",
		Owner:           "0xowner",
		BottomTick:      -60,
		TopTick:         60,
		LiquidityAmount: "1000",
		Amount0:         raw("100"),
		Amount1:         raw("100"),
	}))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	pool := st.Pools.Get(poolAddr)
	if pool.Liquidity.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("in-range mint must raise active liquidity: got %s", pool.Liquidity)
	}
	if !pool.TotalValueLocked0.Equal(dec("100")) || !pool.TotalValueLocked1.Equal(dec("100")) {
		t.Fatalf("pool TVL: got %s/%s, want 100/100", pool.TotalValueLocked0, pool.TotalValueLocked1)
	}

	lower := st.Ticks.Get(poolAddr + "#-60")
	upper := st.Ticks.Get(poolAddr + "#60")
	if lower == nil || upper == nil {
		t.Fatalf("mint must create its boundary ticks")
	}
	if lower.LiquidityNet.Cmp(big.NewInt(1000)) != 0 || upper.LiquidityNet.Cmp(big.NewInt(-1000)) != 0 {
		t.Fatalf("tick nets: got %s/%s, want 1000/-1000", lower.LiquidityNet, upper.LiquidityNet)
	}
	if lower.LiquidityGross.Cmp(big.NewInt(1000)) != 0 || upper.LiquidityGross.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("tick gross: got %s/%s, want 1000/1000", lower.LiquidityGross, upper.LiquidityGross)
	}

	mint := st.Mints.Get("0xtx1#1")
	if mint == nil || mint.TickLower != -60 || mint.TickUpper != 60 {
		t.Fatalf("mint entity missing or wrong: %+v", mint)
	}
}

func TestMintOutsideRangeLeavesActiveLiquidity(t *testing.T) {
	e, st := newEngine(t, &fakeReader{}, Config{})
	createPool(t, e)
	initializePool(t, e)

	err := e.Apply(context.Background(), event(model.EventMint, poolAddr, 2000, &model.MintData{
		BottomTick:      120,
		TopTick:         180,
		LiquidityAmount: "1000",
		Amount0:         raw("10"),
		Amount1:         "0",
	}))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if st.Pools.Get(poolAddr).Liquidity.Sign() != 0 {
		t.Fatalf("out-of-range mint must not change active liquidity")
	}
}

func TestSwapAccounting(t *testing.T) {
	e, st := newEngine(t, &fakeReader{}, Config{})
	createPool(t, e)
	initializePool(t, e)

	err := e.Apply(context.Background(), event(model.EventMint, poolAddr, 2000, &model.MintData{
		BottomTick: -60, TopTick: 60, LiquidityAmount: "1000",
		Amount0: raw("100"), Amount1: raw("100"),
	}))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	// First swap establishes pool prices and the native USD rate; its
	// own volume is valued at the stale zero rates.
	sqrt := new(big.Int).Lsh(big.NewInt(1), 96)
	err = e.Apply(context.Background(), event(model.EventSwap, poolAddr, 2500, &model.SwapData{
		Amount0:   raw("1"),
		Amount1:   raw("-1"),
		Price:     sqrt.String(),
		Liquidity: "1000",
		Tick:      0,
	}))
	if err != nil {
		t.Fatalf("priming swap: %v", err)
	}

	err = e.Apply(context.Background(), event(model.EventSwap, poolAddr, 3000, &model.SwapData{
		Sender:    "0xsender",
		Recipient: "0xrecipient",
		Amount0:   raw("10"),
		Amount1:   raw("-9.97"),
		Price:     sqrt.String(),
		Liquidity: "1000",
		Tick:      0,
	}))
	if err != nil {
		t.Fatalf("swap: %v", err)
	}

	pool := st.Pools.Get(poolAddr)
	bundle := e.State().Bundle
	factory := e.State().Factory

	// 1:1 sqrt price over the reference pool pins the native price.
	if !bundle.MaticPriceUSD.Equal(dec("1")) {
		t.Fatalf("native price: got %s, want 1", bundle.MaticPriceUSD)
	}
	if !pool.Token0Price.Equal(dec("1")) || !pool.Token1Price.Equal(dec("1")) {
		t.Fatalf("pool prices: got %s/%s, want 1/1", pool.Token0Price, pool.Token1Price)
	}

	// Both sides whitelisted: tracked volume is the leg average.
	wantVolume := dec("9.985")
	if !pool.VolumeUSD.Equal(wantVolume) {
		t.Fatalf("tracked volume: got %s, want %s", pool.VolumeUSD, wantVolume)
	}
	if !factory.TotalVolumeUSD.Equal(wantVolume) {
		t.Fatalf("factory volume: got %s, want %s", factory.TotalVolumeUSD, wantVolume)
	}

	// Token buckets mirror the tracked amount into their untracked
	// column.
	day := st.TokenDayDatas.Get(wmaticAddr + "-0")
	if day == nil {
		t.Fatalf("token day bucket missing")
	}
	if !day.VolumeUSD.Equal(wantVolume) || !day.UntrackedVolume.Equal(wantVolume) {
		t.Fatalf("token day volumes: got %s/%s, want %s both", day.VolumeUSD, day.UntrackedVolume, wantVolume)
	}

	// Fee at the default 100 ppm of tracked volume.
	wantFees := wantVolume.Mul(dec("0.0001"))
	if !pool.FeesUSD.Equal(wantFees) {
		t.Fatalf("fees: got %s, want %s", pool.FeesUSD, wantFees)
	}

	// Conservation: signed amounts from both swaps accumulate into TVL.
	if !pool.TotalValueLocked0.Equal(dec("111")) {
		t.Fatalf("tvl0: got %s, want 111", pool.TotalValueLocked0)
	}
	if !pool.TotalValueLocked1.Equal(dec("89.03")) {
		t.Fatalf("tvl1: got %s, want 89.03", pool.TotalValueLocked1)
	}

	// Factory TVL stays the sum over pools.
	if !factory.TotalValueMatic.Equal(pool.TotalValueLockedMatic) {
		t.Fatalf("factory tvl %s != pool tvl %s", factory.TotalValueMatic, pool.TotalValueLockedMatic)
	}

	// Input side is token0 on both swaps, so fees accrue against
	// token0 only: (1 + 10) * 0.0001.
	if !pool.FeesToken0.Equal(dec("11").Mul(dec("0.0001"))) {
		t.Fatalf("feesToken0: got %s", pool.FeesToken0)
	}
	if !pool.FeesToken1.IsZero() {
		t.Fatalf("feesToken1 should be untouched: got %s", pool.FeesToken1)
	}

	swap := st.Swaps.Get("0xtx1#3")
	if swap == nil {
		t.Fatalf("swap entity not stored")
	}
	if !swap.Amount0.Equal(dec("10")) || !swap.Amount1.Equal(dec("-9.97")) {
		t.Fatalf("swap amounts: got %s/%s", swap.Amount0, swap.Amount1)
	}
}

func TestSwapReversedPoolMirrorsCanonicalPool(t *testing.T) {
	ctx := context.Background()
	mirror, mirrorStore := newEngine(t, &fakeReader{}, Config{ReversedPools: []string{poolAddr}})
	plain, plainStore := newEngine(t, &fakeReader{}, Config{})

	// The mirrored pool is created in emitted order and flipped on
	// storage; the plain pool is created in the stored order directly.
	createPool(t, mirror)
	err := plain.Apply(ctx, event(model.EventPoolCreated, "0xfactory", 1000, &model.PoolCreatedData{
		Token0: usdcAddr, Token1: wmaticAddr, Pool: poolAddr,
	}))
	if err != nil {
		t.Fatalf("pool creation: %v", err)
	}
	initializePool(t, mirror)
	initializePool(t, plain)

	for _, e := range []*Engine{mirror, plain} {
		err := e.Apply(ctx, event(model.EventMint, poolAddr, 2000, &model.MintData{
			BottomTick: -60, TopTick: 60, LiquidityAmount: "1000",
			Amount0: raw("100"), Amount1: raw("100"),
		}))
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
	}

	// One trade, quoted both ways: the mirrored pool sees amounts and
	// sqrt price in its emitted order, the plain pool sees the swapped
	// amounts and the inverse sqrt price.
	err = mirror.Apply(ctx, event(model.EventSwap, poolAddr, 3000, &model.SwapData{
		Amount0: raw("10"), Amount1: raw("-2.5"),
		Price: new(big.Int).Lsh(big.NewInt(1), 97).String(), Liquidity: "1000", Tick: 0,
	}))
	if err != nil {
		t.Fatalf("mirrored swap: %v", err)
	}
	err = plain.Apply(ctx, event(model.EventSwap, poolAddr, 3000, &model.SwapData{
		Amount0: raw("-2.5"), Amount1: raw("10"),
		Price: new(big.Int).Lsh(big.NewInt(1), 95).String(), Liquidity: "1000", Tick: 0,
	}))
	if err != nil {
		t.Fatalf("plain swap: %v", err)
	}

	mp, pp := mirrorStore.Pools.Get(poolAddr), plainStore.Pools.Get(poolAddr)
	if !mp.Token0Price.Equal(pp.Token0Price) || !mp.Token1Price.Equal(pp.Token1Price) {
		t.Fatalf("prices diverge: %s/%s vs %s/%s",
			mp.Token0Price, mp.Token1Price, pp.Token0Price, pp.Token1Price)
	}
	if !mp.Token0Price.Equal(dec("4")) {
		t.Fatalf("token0 price: got %s, want 4", mp.Token0Price)
	}
	if !mp.TotalValueLocked0.Equal(pp.TotalValueLocked0) || !mp.TotalValueLocked1.Equal(pp.TotalValueLocked1) {
		t.Fatalf("reserves diverge: %s/%s vs %s/%s",
			mp.TotalValueLocked0, mp.TotalValueLocked1, pp.TotalValueLocked0, pp.TotalValueLocked1)
	}
	if !mp.Volume0.Equal(pp.Volume0) || !mp.Volume1.Equal(pp.Volume1) {
		t.Fatalf("volumes diverge: %s/%s vs %s/%s", mp.Volume0, mp.Volume1, pp.Volume0, pp.Volume1)
	}
	for _, addr := range []string{wmaticAddr, usdcAddr} {
		mt, pt := mirrorStore.Tokens.Get(addr), plainStore.Tokens.Get(addr)
		if !mt.TotalValueLocked.Equal(pt.TotalValueLocked) {
			t.Fatalf("token %s reserves diverge: %s vs %s", addr, mt.TotalValueLocked, pt.TotalValueLocked)
		}
	}
}

func TestSwapRedeliveryKeepsExtremesDoublesVolume(t *testing.T) {
	e, st := newEngine(t, &fakeReader{}, Config{})
	createPool(t, e)
	initializePool(t, e)

	ctx := context.Background()
	err := e.Apply(ctx, event(model.EventMint, poolAddr, 2000, &model.MintData{
		BottomTick: -60, TopTick: 60, LiquidityAmount: "1000",
		Amount0: raw("100"), Amount1: raw("100"),
	}))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	// First swap of the hour opens the bucket at price 4.
	err = e.Apply(ctx, event(model.EventSwap, poolAddr, 3700, &model.SwapData{
		Amount0: raw("1"), Amount1: raw("-4"),
		Price: new(big.Int).Lsh(big.NewInt(1), 97).String(), Liquidity: "1000", Tick: 0,
	}))
	if err != nil {
		t.Fatalf("opening swap: %v", err)
	}

	ev := event(model.EventSwap, poolAddr, 4000, &model.SwapData{
		Amount0: raw("10"), Amount1: raw("-9"),
		Price: new(big.Int).Lsh(big.NewInt(1), 96).String(), Liquidity: "1000", Tick: 0,
	})
	if err := e.Apply(ctx, ev); err != nil {
		t.Fatalf("swap: %v", err)
	}

	hour := st.PoolHourDatas.Get(fmt.Sprintf("%s-%d", poolAddr, 4000/entity.HourSeconds))
	if hour == nil {
		t.Fatalf("hour bucket missing")
	}
	if !hour.High.Equal(dec("4")) || !hour.Low.Equal(dec("1")) {
		t.Fatalf("hour range: got %s/%s, want 4/1", hour.High, hour.Low)
	}
	volumeUSD := hour.VolumeUSD

	// Delivering the same swap again widens nothing but counts its
	// volume a second time.
	if err := e.Apply(ctx, ev); err != nil {
		t.Fatalf("redelivered swap: %v", err)
	}
	if !hour.High.Equal(dec("4")) || !hour.Low.Equal(dec("1")) {
		t.Fatalf("redelivery moved the range: got %s/%s", hour.High, hour.Low)
	}
	if !hour.Volume0.Equal(dec("21")) || !hour.Volume1.Equal(dec("22")) {
		t.Fatalf("redelivery volumes: got %s/%s, want 21/22", hour.Volume0, hour.Volume1)
	}
	if !hour.VolumeUSD.GreaterThan(volumeUSD) {
		t.Fatalf("redelivery must add volume: %s then %s", volumeUSD, hour.VolumeUSD)
	}
}

func TestSwapCommunityFeeReducesInputSide(t *testing.T) {
	e, st := newEngine(t, &fakeReader{}, Config{})
	createPool(t, e)
	initializePool(t, e)

	pool := st.Pools.Get(poolAddr)
	pool.Fee = 10000         // 1%
	pool.CommunityFee0 = 100 // 10% of the fee

	sqrt := new(big.Int).Lsh(big.NewInt(1), 96)
	err := e.Apply(context.Background(), event(model.EventSwap, poolAddr, 3000, &model.SwapData{
		Amount0:   raw("100"),
		Amount1:   raw("-99"),
		Price:     sqrt.String(),
		Liquidity: "1000",
		Tick:      0,
	}))
	if err != nil {
		t.Fatalf("swap: %v", err)
	}

	// 100 * (10000*100)/1e9 = 0.1 skimmed off the input side.
	if !pool.TotalValueLocked0.Equal(dec("99.9")) {
		t.Fatalf("community fee not deducted: tvl0 %s, want 99.9", pool.TotalValueLocked0)
	}
}

func TestSwapTickResyncCap(t *testing.T) {
	reader := &fakeReader{}
	e, _ := newEngine(t, reader, Config{})
	createPool(t, e)
	initializePool(t, e)

	err := e.Apply(context.Background(), event(model.EventMint, poolAddr, 2000, &model.MintData{
		BottomTick: -60, TopTick: 60, LiquidityAmount: "1000",
		Amount0: raw("100"), Amount1: raw("100"),
	}))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	reader.tickReads = 0

	sqrt := new(big.Int).Lsh(big.NewInt(1), 96)
	swapTo := func(tick int32) {
		t.Helper()
		err := e.Apply(context.Background(), event(model.EventSwap, poolAddr, 3000, &model.SwapData{
			Amount0: raw("1"), Amount1: raw("-1"),
			Price: sqrt.String(), Liquidity: "1000", Tick: tick,
		}))
		if err != nil {
			t.Fatalf("swap to %d: %v", tick, err)
		}
	}

	// 0 -> 600 crosses ten spacings; only the tracked tick at 60
	// triggers a read.
	swapTo(600)
	if reader.tickReads != 1 {
		t.Fatalf("crossing resync reads: got %d, want 1", reader.tickReads)
	}

	// 600 -> 60600 crosses 1000 spacings, beyond the cap: no reads.
	reader.tickReads = 0
	swapTo(60600)
	if reader.tickReads != 0 {
		t.Fatalf("capped resync must skip reads: got %d", reader.tickReads)
	}
}

func TestCollectNetsOutSameTransactionBurns(t *testing.T) {
	e, st := newEngine(t, &fakeReader{}, Config{})
	createPool(t, e)
	initializePool(t, e)

	ctx := context.Background()
	err := e.Apply(ctx, event(model.EventMint, poolAddr, 2000, &model.MintData{
		BottomTick: -60, TopTick: 60, LiquidityAmount: "1000",
		Amount0: raw("100"), Amount1: raw("100"),
	}))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	err = e.Apply(ctx, event(model.EventBurn, poolAddr, 2500, &model.BurnData{
		Owner: "0xowner", BottomTick: -60, TopTick: 60, LiquidityAmount: "1000",
		Amount0: raw("5"), Amount1: raw("5"),
	}))
	if err != nil {
		t.Fatalf("burn: %v", err)
	}

	// Collect in the same transaction pays out principal plus fees;
	// only the excess over the burn leaves the reserves again.
	err = e.Apply(ctx, event(model.EventCollect, poolAddr, 2500, &model.CollectData{
		Owner: "0xowner", BottomTick: -60, TopTick: 60,
		Amount0: raw("6"), Amount1: raw("6"),
	}))
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	// 100 minted, 5 burned, 6 collected of which 5 is the burned
	// principal already accounted for: reserves drop by 1 more.
	pool := st.Pools.Get(poolAddr)
	if !pool.TotalValueLocked0.Equal(dec("94")) || !pool.TotalValueLocked1.Equal(dec("94")) {
		t.Fatalf("collect reserves: got %s/%s, want 94/94", pool.TotalValueLocked0, pool.TotalValueLocked1)
	}
	tok := st.Tokens.Get(wmaticAddr)
	if !tok.TotalValueLocked.Equal(dec("94")) {
		t.Fatalf("token reserves: got %s, want 94", tok.TotalValueLocked)
	}
}

func TestChangeFeeRecordsHistory(t *testing.T) {
	e, st := newEngine(t, &fakeReader{}, Config{})
	createPool(t, e)

	err := e.Apply(context.Background(), event(model.EventFee, poolAddr, 5000, &model.FeeData{Fee: 3000}))
	if err != nil {
		t.Fatalf("fee change: %v", err)
	}

	if st.Pools.Get(poolAddr).Fee != 3000 {
		t.Fatalf("pool fee not updated")
	}
	record := st.PoolFees.Get(fmt.Sprintf("%d-%s", 5000, poolAddr))
	if record == nil || record.Fee != 3000 {
		t.Fatalf("fee history record missing")
	}
	hour := st.FeeHourDatas.Get(fmt.Sprintf("%s-%d", poolAddr, 5000/entity.HourSeconds))
	if hour == nil || hour.EndFee != 3000 {
		t.Fatalf("fee hour bucket missing")
	}
}

func TestCommunityFeeUpdate(t *testing.T) {
	e, st := newEngine(t, &fakeReader{}, Config{})
	createPool(t, e)

	err := e.Apply(context.Background(), event(model.EventCommunityFee, poolAddr, 5000, &model.CommunityFeeData{
		CommunityFee0: 150, CommunityFee1: 200,
	}))
	if err != nil {
		t.Fatalf("community fee: %v", err)
	}
	pool := st.Pools.Get(poolAddr)
	if pool.CommunityFee0 != 150 || pool.CommunityFee1 != 200 {
		t.Fatalf("community fees: got %d/%d", pool.CommunityFee0, pool.CommunityFee1)
	}
}
