package engine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"algebraScope/internal/entity"
	"algebraScope/internal/model"
	"algebraScope/internal/numeric"
)

var two = decimal.New(2, 0)

// handleInitialize records the pool's first price and tick, then
// refreshes native and derived prices now that a new pool is live.
func (e *Engine) handleInitialize(ev *model.Event) error {
	data, ok := ev.Decoded.(*model.InitializeData)
	if !ok {
		return fmt.Errorf("engine: bad payload for %s", ev.EventName)
	}
	pool, err := e.pool(ev)
	if err != nil {
		return err
	}

	price, err := numeric.ParseBig(data.Price)
	if err != nil {
		return fmt.Errorf("engine: initialize price: %w", err)
	}
	tick := data.Tick
	pool.SqrtPrice = price
	pool.Tick = &tick

	token0, err := e.token(pool.Token0)
	if err != nil {
		return err
	}
	token1, err := e.token(pool.Token1)
	if err != nil {
		return err
	}

	e.state.Bundle.MaticPriceUSD = e.pricer.BasePriceUSD()
	e.intervals.PoolDay(pool, int64(ev.Timestamp))
	e.intervals.PoolHour(pool, int64(ev.Timestamp))

	token0.DerivedMatic = e.pricer.DerivedBase(token0, e.state.Bundle)
	token1.DerivedMatic = e.pricer.DerivedBase(token1, e.state.Bundle)
	return nil
}

// poolAmounts converts a pool event's raw amounts into decimals in
// canonical token order, honoring the pool's reversed flag.
func poolAmounts(pool *entity.Pool, token0, token1 *entity.Token, raw0, raw1 string) (decimal.Decimal, decimal.Decimal, error) {
	a0, err := numeric.ParseBig(raw0)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("amount0: %w", err)
	}
	a1, err := numeric.ParseBig(raw1)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("amount1: %w", err)
	}
	if pool.ReversedOrder {
		a0, a1 = a1, a0
	}
	return numeric.FromRaw(a0, token0.Decimals), numeric.FromRaw(a1, token1.Decimals), nil
}

func (e *Engine) handleMint(ctx context.Context, ev *model.Event) error {
	data, ok := ev.Decoded.(*model.MintData)
	if !ok {
		return fmt.Errorf("engine: bad payload for %s", ev.EventName)
	}
	pool, err := e.pool(ev)
	if err != nil {
		return err
	}
	token0, err := e.token(pool.Token0)
	if err != nil {
		return err
	}
	token1, err := e.token(pool.Token1)
	if err != nil {
		return err
	}
	factory, bundle := e.state.Factory, e.state.Bundle

	amount0, amount1, err := poolAmounts(pool, token0, token1, data.Amount0, data.Amount1)
	if err != nil {
		return fmt.Errorf("engine: mint %s: %w", ev.TxHash, err)
	}
	liquidity, err := numeric.ParseBig(data.LiquidityAmount)
	if err != nil {
		return fmt.Errorf("engine: mint liquidity: %w", err)
	}

	amountUSD := amount0.Mul(e.tokenUSD(token0)).Add(amount1.Mul(e.tokenUSD(token1)))

	// reset tvl aggregates until new amounts calculated
	factory.TotalValueMatic = factory.TotalValueMatic.Sub(pool.TotalValueLockedMatic)
	factory.TxCount++

	token0.TxCount++
	token0.TotalValueLocked = token0.TotalValueLocked.Add(amount0)
	token0.TotalValueLockedUSD = token0.TotalValueLocked.Mul(e.tokenUSD(token0))

	token1.TxCount++
	token1.TotalValueLocked = token1.TotalValueLocked.Add(amount1)
	token1.TotalValueLockedUSD = token1.TotalValueLocked.Mul(e.tokenUSD(token1))

	pool.TxCount++

	// Active liquidity only moves when the position straddles the
	// current tick.
	if pool.Tick != nil && data.BottomTick <= *pool.Tick && data.TopTick > *pool.Tick {
		pool.Liquidity = new(big.Int).Add(pool.Liquidity, liquidity)
	}
	pool.TotalValueLocked0 = pool.TotalValueLocked0.Add(amount0)
	pool.TotalValueLocked1 = pool.TotalValueLocked1.Add(amount1)
	pool.TotalValueLockedMatic = pool.TotalValueLocked0.Mul(token0.DerivedMatic).
		Add(pool.TotalValueLocked1.Mul(token1.DerivedMatic))
	pool.TotalValueLockedUSD = pool.TotalValueLockedMatic.Mul(bundle.MaticPriceUSD)

	factory.TotalValueMatic = factory.TotalValueMatic.Add(pool.TotalValueLockedMatic)
	factory.TotalValueUSD = factory.TotalValueMatic.Mul(bundle.MaticPriceUSD)

	tx := e.loadTransaction(ev)
	mint := &entity.Mint{
		ID:          fmt.Sprintf("%s#%d", tx.ID, pool.TxCount),
		Transaction: tx.ID,
		Timestamp:   tx.Timestamp,
		Pool:        pool.ID,
		Token0:      pool.Token0,
		Token1:      pool.Token1,
		Owner:       data.Owner,
		Sender:      data.Sender,
		Origin:      ev.TxOrigin,
		Liquidity:   liquidity,
		Amount0:     amount0,
		Amount1:     amount1,
		AmountUSD:   amountUSD,
		TickLower:   data.BottomTick,
		TickUpper:   data.TopTick,
		LogIndex:    int64(ev.LogIndex),
	}
	e.store.Mints.Put(mint.ID, mint)

	lower := e.getOrCreateTick(pool, data.BottomTick, ev)
	upper := e.getOrCreateTick(pool, data.TopTick, ev)

	lower.LiquidityGross = new(big.Int).Add(lower.LiquidityGross, liquidity)
	lower.LiquidityNet = new(big.Int).Add(lower.LiquidityNet, liquidity)
	upper.LiquidityGross = new(big.Int).Add(upper.LiquidityGross, liquidity)
	upper.LiquidityNet = new(big.Int).Sub(upper.LiquidityNet, liquidity)

	ts := int64(ev.Timestamp)
	e.intervals.FactoryDay(factory, ts)
	e.intervals.PoolDay(pool, ts)
	e.intervals.PoolHour(pool, ts)
	e.intervals.TokenDay(token0, bundle, ts)
	e.intervals.TokenDay(token1, bundle, ts)
	e.intervals.TokenHour(token0, bundle, ts)
	e.intervals.TokenHour(token1, bundle, ts)

	e.syncTickFeeVars(ctx, lower, ts)
	e.syncTickFeeVars(ctx, upper, ts)
	return nil
}

func (e *Engine) handleBurn(ctx context.Context, ev *model.Event) error {
	data, ok := ev.Decoded.(*model.BurnData)
	if !ok {
		return fmt.Errorf("engine: bad payload for %s", ev.EventName)
	}
	pool, err := e.pool(ev)
	if err != nil {
		return err
	}
	token0, err := e.token(pool.Token0)
	if err != nil {
		return err
	}
	token1, err := e.token(pool.Token1)
	if err != nil {
		return err
	}
	factory, bundle := e.state.Factory, e.state.Bundle

	amount0, amount1, err := poolAmounts(pool, token0, token1, data.Amount0, data.Amount1)
	if err != nil {
		return fmt.Errorf("engine: burn %s: %w", ev.TxHash, err)
	}
	liquidity, err := numeric.ParseBig(data.LiquidityAmount)
	if err != nil {
		return fmt.Errorf("engine: burn liquidity: %w", err)
	}

	amountUSD := amount0.Mul(e.tokenUSD(token0)).Add(amount1.Mul(e.tokenUSD(token1)))

	factory.TotalValueMatic = factory.TotalValueMatic.Sub(pool.TotalValueLockedMatic)
	factory.TxCount++

	token0.TxCount++
	token0.TotalValueLocked = token0.TotalValueLocked.Sub(amount0)
	token0.TotalValueLockedUSD = token0.TotalValueLocked.Mul(e.tokenUSD(token0))

	token1.TxCount++
	token1.TotalValueLocked = token1.TotalValueLocked.Sub(amount1)
	token1.TotalValueLockedUSD = token1.TotalValueLocked.Mul(e.tokenUSD(token1))

	pool.TxCount++
	if pool.Tick != nil && data.BottomTick <= *pool.Tick && data.TopTick > *pool.Tick {
		pool.Liquidity = new(big.Int).Sub(pool.Liquidity, liquidity)
	}
	pool.TotalValueLocked0 = pool.TotalValueLocked0.Sub(amount0)
	pool.TotalValueLocked1 = pool.TotalValueLocked1.Sub(amount1)
	pool.TotalValueLockedMatic = pool.TotalValueLocked0.Mul(token0.DerivedMatic).
		Add(pool.TotalValueLocked1.Mul(token1.DerivedMatic))
	pool.TotalValueLockedUSD = pool.TotalValueLockedMatic.Mul(bundle.MaticPriceUSD)

	factory.TotalValueMatic = factory.TotalValueMatic.Add(pool.TotalValueLockedMatic)
	factory.TotalValueUSD = factory.TotalValueMatic.Mul(bundle.MaticPriceUSD)

	tx := e.loadTransaction(ev)
	burn := &entity.Burn{
		ID:          fmt.Sprintf("%s#%d", tx.ID, pool.TxCount),
		Transaction: tx.ID,
		Timestamp:   tx.Timestamp,
		Pool:        pool.ID,
		Token0:      pool.Token0,
		Token1:      pool.Token1,
		Owner:       data.Owner,
		Origin:      ev.TxOrigin,
		Liquidity:   liquidity,
		Amount0:     amount0,
		Amount1:     amount1,
		AmountUSD:   amountUSD,
		TickLower:   data.BottomTick,
		TickUpper:   data.TopTick,
		LogIndex:    int64(ev.LogIndex),
	}
	e.store.Burns.Put(burn.ID, burn)

	lower := e.store.Ticks.Get(tickID(pool.ID, data.BottomTick))
	upper := e.store.Ticks.Get(tickID(pool.ID, data.TopTick))
	if lower == nil || upper == nil {
		return fmt.Errorf("engine: burn %s references unknown ticks %d/%d", ev.TxHash, data.BottomTick, data.TopTick)
	}
	lower.LiquidityGross = new(big.Int).Sub(lower.LiquidityGross, liquidity)
	lower.LiquidityNet = new(big.Int).Sub(lower.LiquidityNet, liquidity)
	upper.LiquidityGross = new(big.Int).Sub(upper.LiquidityGross, liquidity)
	upper.LiquidityNet = new(big.Int).Add(upper.LiquidityNet, liquidity)

	ts := int64(ev.Timestamp)
	e.intervals.FactoryDay(factory, ts)
	e.intervals.PoolDay(pool, ts)
	e.intervals.PoolHour(pool, ts)
	e.intervals.TokenDay(token0, bundle, ts)
	e.intervals.TokenDay(token1, bundle, ts)
	e.intervals.TokenHour(token0, bundle, ts)
	e.intervals.TokenHour(token1, bundle, ts)
	e.syncTickFeeVars(ctx, lower, ts)
	e.syncTickFeeVars(ctx, upper, ts)
	return nil
}

func (e *Engine) handleSwap(ctx context.Context, ev *model.Event) error {
	data, ok := ev.Decoded.(*model.SwapData)
	if !ok {
		return fmt.Errorf("engine: bad payload for %s", ev.EventName)
	}
	pool, err := e.pool(ev)
	if err != nil {
		return err
	}
	if pool.Tick == nil {
		return fmt.Errorf("engine: swap on uninitialized pool %s", pool.ID)
	}
	token0, err := e.token(pool.Token0)
	if err != nil {
		return err
	}
	token1, err := e.token(pool.Token1)
	if err != nil {
		return err
	}
	factory, bundle := e.state.Factory, e.state.Bundle
	oldTick := *pool.Tick

	amount0, amount1, err := poolAmounts(pool, token0, token1, data.Amount0, data.Amount1)
	if err != nil {
		return fmt.Errorf("engine: swap %s: %w", ev.TxHash, err)
	}

	// The input side carries the community fee; take it off before it
	// enters volume and TVL.
	amount0Abs := amount0
	if amount0.IsNegative() {
		amount0Abs = amount0.Neg()
	} else {
		communityFee := amount0.Mul(decimal.New(pool.Fee*pool.CommunityFee0, -9))
		amount0 = amount0.Sub(communityFee)
		amount0Abs = amount0
	}
	amount1Abs := amount1
	if amount1.IsNegative() {
		amount1Abs = amount1.Neg()
	} else {
		communityFee := amount1.Mul(decimal.New(pool.Fee*pool.CommunityFee1, -9))
		amount1 = amount1.Sub(communityFee)
		amount1Abs = amount1
	}

	amount0USD := amount0Abs.Mul(token0.DerivedMatic).Mul(bundle.MaticPriceUSD)
	amount1USD := amount1Abs.Mul(token1.DerivedMatic).Mul(bundle.MaticPriceUSD)

	// Halved because input and output both count once.
	trackedUSD := numeric.SafeDiv(e.pricer.TrackedVolumeUSD(amount0Abs, token0, amount1Abs, token1, bundle), two)
	trackedMatic := numeric.SafeDiv(trackedUSD, bundle.MaticPriceUSD)
	untrackedUSD := numeric.SafeDiv(amount0USD.Add(amount1USD), two)

	feeRate := decimal.New(pool.Fee, -6)
	feesMatic := trackedMatic.Mul(feeRate)
	feesUSD := trackedUSD.Mul(feeRate)
	untrackedFees := untrackedUSD.Mul(feeRate)

	factory.TxCount++
	factory.TotalVolumeMatic = factory.TotalVolumeMatic.Add(trackedMatic)
	factory.TotalVolumeUSD = factory.TotalVolumeUSD.Add(trackedUSD)
	factory.UntrackedVolume = factory.UntrackedVolume.Add(untrackedUSD)
	factory.TotalFeesMatic = factory.TotalFeesMatic.Add(feesMatic)
	factory.TotalFeesUSD = factory.TotalFeesUSD.Add(feesUSD)

	factory.TotalValueMatic = factory.TotalValueMatic.Sub(pool.TotalValueLockedMatic)

	pool.Volume0 = pool.Volume0.Add(amount0Abs)
	pool.Volume1 = pool.Volume1.Add(amount1Abs)
	pool.VolumeUSD = pool.VolumeUSD.Add(trackedUSD)
	pool.UntrackedVolume = pool.UntrackedVolume.Add(untrackedUSD)
	pool.FeesUSD = pool.FeesUSD.Add(feesUSD)
	pool.UntrackedFees = pool.UntrackedFees.Add(untrackedFees)
	pool.TxCount++

	liquidity, err := numeric.ParseBig(data.Liquidity)
	if err != nil {
		return fmt.Errorf("engine: swap liquidity: %w", err)
	}
	sqrtPrice, err := numeric.ParseBig(data.Price)
	if err != nil {
		return fmt.Errorf("engine: swap price: %w", err)
	}
	newTick := data.Tick
	pool.Liquidity = liquidity
	pool.Tick = &newTick
	pool.SqrtPrice = sqrtPrice
	pool.TotalValueLocked0 = pool.TotalValueLocked0.Add(amount0)
	pool.TotalValueLocked1 = pool.TotalValueLocked1.Add(amount1)

	token0.Volume = token0.Volume.Add(amount0Abs)
	token0.TotalValueLocked = token0.TotalValueLocked.Add(amount0)
	token0.VolumeUSD = token0.VolumeUSD.Add(trackedUSD)
	token0.UntrackedVolume = token0.UntrackedVolume.Add(untrackedUSD)
	token0.FeesUSD = token0.FeesUSD.Add(feesUSD)
	token0.TxCount++

	token1.Volume = token1.Volume.Add(amount1Abs)
	token1.TotalValueLocked = token1.TotalValueLocked.Add(amount1)
	token1.VolumeUSD = token1.VolumeUSD.Add(trackedUSD)
	token1.UntrackedVolume = token1.UntrackedVolume.Add(untrackedUSD)
	token1.FeesUSD = token1.FeesUSD.Add(feesUSD)
	token1.TxCount++

	if pool.ReversedOrder {
		// The raw sqrt price is quoted in the emitted token order, so
		// compute with swapped decimals and assign crosswise.
		p0, p1 := numeric.PricesFromSqrt(pool.SqrtPrice, token1.Decimals, token0.Decimals)
		pool.Token0Price = p1
		pool.Token1Price = p0
	} else {
		pool.Token0Price, pool.Token1Price = numeric.PricesFromSqrt(pool.SqrtPrice, token0.Decimals, token1.Decimals)
	}

	bundle.MaticPriceUSD = e.pricer.BasePriceUSD()

	token0.DerivedMatic = e.pricer.DerivedBase(token0, bundle)
	token1.DerivedMatic = e.pricer.DerivedBase(token1, bundle)

	pool.TotalValueLockedMatic = pool.TotalValueLocked0.Mul(token0.DerivedMatic).
		Add(pool.TotalValueLocked1.Mul(token1.DerivedMatic))
	pool.TotalValueLockedUSD = pool.TotalValueLockedMatic.Mul(bundle.MaticPriceUSD)

	factory.TotalValueMatic = factory.TotalValueMatic.Add(pool.TotalValueLockedMatic)
	factory.TotalValueUSD = factory.TotalValueMatic.Mul(bundle.MaticPriceUSD)

	token0.TotalValueLockedUSD = token0.TotalValueLocked.Mul(token0.DerivedMatic).Mul(bundle.MaticPriceUSD)
	token1.TotalValueLockedUSD = token1.TotalValueLocked.Mul(token1.DerivedMatic).Mul(bundle.MaticPriceUSD)

	tx := e.loadTransaction(ev)
	swap := &entity.Swap{
		ID:           fmt.Sprintf("%s#%d", tx.ID, pool.TxCount),
		Transaction:  tx.ID,
		Timestamp:    tx.Timestamp,
		Pool:         pool.ID,
		Token0:       pool.Token0,
		Token1:       pool.Token1,
		Sender:       data.Sender,
		Recipient:    data.Recipient,
		Origin:       ev.TxOrigin,
		Amount0:      amount0,
		Amount1:      amount1,
		AmountUSD:    trackedUSD,
		SqrtPriceX96: sqrtPrice,
		Tick:         newTick,
		LogIndex:     int64(ev.LogIndex),
	}
	e.store.Swaps.Put(swap.ID, swap)

	if fg0, fg1, err := e.reader.PoolFeeGrowthGlobal(ctx, pool.ID); err != nil {
		e.log.Warn("fee growth read failed, keeping previous values",
			zap.String("pool", pool.ID), zap.Error(err))
	} else {
		pool.FeeGrowthGlobal0 = fg0
		pool.FeeGrowthGlobal1 = fg1
	}

	ts := int64(ev.Timestamp)
	factoryDay := e.intervals.FactoryDay(factory, ts)
	poolDay := e.intervals.PoolDay(pool, ts)
	poolHour := e.intervals.PoolHour(pool, ts)
	token0Day := e.intervals.TokenDay(token0, bundle, ts)
	token1Day := e.intervals.TokenDay(token1, bundle, ts)
	token0Hour := e.intervals.TokenHour(token0, bundle, ts)
	token1Hour := e.intervals.TokenHour(token1, bundle, ts)

	// Fees accrue in the input token, the side with the negative
	// counter-amount.
	if amount0.IsNegative() {
		fee1 := amount1.Mul(feeRate)
		pool.FeesToken1 = pool.FeesToken1.Add(fee1)
		poolDay.Token1Fees = poolDay.Token1Fees.Add(fee1)
	}
	if amount1.IsNegative() {
		fee0 := amount0.Mul(feeRate)
		pool.FeesToken0 = pool.FeesToken0.Add(fee0)
		poolDay.Token0Fees = poolDay.Token0Fees.Add(fee0)
	}

	factoryDay.VolumeMatic = factoryDay.VolumeMatic.Add(trackedMatic)
	factoryDay.VolumeUSD = factoryDay.VolumeUSD.Add(trackedUSD)
	factoryDay.FeesUSD = factoryDay.FeesUSD.Add(feesUSD)

	poolDay.VolumeUSD = poolDay.VolumeUSD.Add(trackedUSD)
	poolDay.Volume0 = poolDay.Volume0.Add(amount0Abs)
	poolDay.Volume1 = poolDay.Volume1.Add(amount1Abs)
	poolDay.FeesUSD = poolDay.FeesUSD.Add(feesUSD)

	poolHour.VolumeUSD = poolHour.VolumeUSD.Add(trackedUSD)
	poolHour.Volume0 = poolHour.Volume0.Add(amount0Abs)
	poolHour.Volume1 = poolHour.Volume1.Add(amount1Abs)
	poolHour.FeesUSD = poolHour.FeesUSD.Add(feesUSD)

	// Token buckets accumulate the tracked amount in their untracked
	// column, unlike the pool and factory rows.
	token0Day.Volume = token0Day.Volume.Add(amount0Abs)
	token0Day.VolumeUSD = token0Day.VolumeUSD.Add(trackedUSD)
	token0Day.UntrackedVolume = token0Day.UntrackedVolume.Add(trackedUSD)
	token0Day.FeesUSD = token0Day.FeesUSD.Add(feesUSD)

	token0Hour.Volume = token0Hour.Volume.Add(amount0Abs)
	token0Hour.VolumeUSD = token0Hour.VolumeUSD.Add(trackedUSD)
	token0Hour.UntrackedVolume = token0Hour.UntrackedVolume.Add(trackedUSD)
	token0Hour.FeesUSD = token0Hour.FeesUSD.Add(feesUSD)

	token1Day.Volume = token1Day.Volume.Add(amount1Abs)
	token1Day.VolumeUSD = token1Day.VolumeUSD.Add(trackedUSD)
	token1Day.UntrackedVolume = token1Day.UntrackedVolume.Add(trackedUSD)
	token1Day.FeesUSD = token1Day.FeesUSD.Add(feesUSD)

	token1Hour.Volume = token1Hour.Volume.Add(amount1Abs)
	token1Hour.VolumeUSD = token1Hour.VolumeUSD.Add(trackedUSD)
	token1Hour.UntrackedVolume = token1Hour.UntrackedVolume.Add(trackedUSD)
	token1Hour.FeesUSD = token1Hour.FeesUSD.Add(feesUSD)

	e.resyncCrossedTicks(ctx, pool, oldTick, newTick, ts)
	return nil
}

// handleCollect settles fee withdrawals by correcting reserves only;
// no ledger record is written. Collect events for positions leaving
// the pool arrive alongside Burn events in the same transaction, so
// the burned principal is removed to leave only fees. The burn ids
// checked are the ones the paired burns received, which precede this
// event's own slot in the pool's tx sequence.
func (e *Engine) handleCollect(ev *model.Event) error {
	data, ok := ev.Decoded.(*model.CollectData)
	if !ok {
		return fmt.Errorf("engine: bad payload for %s", ev.EventName)
	}
	pool, err := e.pool(ev)
	if err != nil {
		return err
	}
	token0, err := e.token(pool.Token0)
	if err != nil {
		return err
	}
	token1, err := e.token(pool.Token1)
	if err != nil {
		return err
	}
	factory, bundle := e.state.Factory, e.state.Bundle
	tx := e.loadTransaction(ev)

	amount0, amount1, err := poolAmounts(pool, token0, token1, data.Amount0, data.Amount1)
	if err != nil {
		return fmt.Errorf("engine: collect %s: %w", ev.TxHash, err)
	}
	if burn := e.store.Burns.Get(fmt.Sprintf("%s#%d", tx.ID, pool.TxCount-1)); burn != nil {
		amount0 = amount0.Sub(burn.Amount0)
		amount1 = amount1.Sub(burn.Amount1)
	}
	if burn := e.store.Burns.Get(fmt.Sprintf("%s#%d", tx.ID, pool.TxCount)); burn != nil {
		amount0 = amount0.Sub(burn.Amount0)
		amount1 = amount1.Sub(burn.Amount1)
	}

	factory.TotalValueMatic = factory.TotalValueMatic.Sub(pool.TotalValueLockedMatic)
	factory.TxCount++

	token0.TxCount++
	token0.TotalValueLocked = token0.TotalValueLocked.Sub(amount0)
	token0.TotalValueLockedUSD = token0.TotalValueLocked.Mul(e.tokenUSD(token0))

	token1.TxCount++
	token1.TotalValueLocked = token1.TotalValueLocked.Sub(amount1)
	token1.TotalValueLockedUSD = token1.TotalValueLocked.Mul(e.tokenUSD(token1))

	pool.TxCount++
	pool.TotalValueLocked0 = pool.TotalValueLocked0.Sub(amount0)
	pool.TotalValueLocked1 = pool.TotalValueLocked1.Sub(amount1)
	pool.TotalValueLockedMatic = pool.TotalValueLocked0.Mul(token0.DerivedMatic).
		Add(pool.TotalValueLocked1.Mul(token1.DerivedMatic))
	pool.TotalValueLockedUSD = pool.TotalValueLockedMatic.Mul(bundle.MaticPriceUSD)

	factory.TotalValueMatic = factory.TotalValueMatic.Add(pool.TotalValueLockedMatic)
	factory.TotalValueUSD = factory.TotalValueMatic.Mul(bundle.MaticPriceUSD)
	return nil
}

// handleChangeFee applies a fee reconfiguration and records it in the
// fee history.
func (e *Engine) handleChangeFee(ev *model.Event) error {
	data, ok := ev.Decoded.(*model.FeeData)
	if !ok {
		return fmt.Errorf("engine: bad payload for %s", ev.EventName)
	}
	pool, err := e.pool(ev)
	if err != nil {
		return err
	}
	pool.Fee = int64(data.Fee)

	id := fmt.Sprintf("%d-%s", ev.Timestamp, pool.ID)
	record, _ := e.store.PoolFees.GetOrCreate(id, func() *entity.PoolFeeData {
		return &entity.PoolFeeData{ID: id, Pool: pool.ID, Timestamp: int64(ev.Timestamp)}
	})
	record.Fee = int64(data.Fee)

	e.intervals.FeeHour(pool, int64(data.Fee), int64(ev.Timestamp))
	return nil
}

func (e *Engine) handleCommunityFee(ev *model.Event) error {
	data, ok := ev.Decoded.(*model.CommunityFeeData)
	if !ok {
		return fmt.Errorf("engine: bad payload for %s", ev.EventName)
	}
	pool, err := e.pool(ev)
	if err != nil {
		return err
	}
	pool.CommunityFee0 = int64(data.CommunityFee0)
	pool.CommunityFee1 = int64(data.CommunityFee1)
	return nil
}
