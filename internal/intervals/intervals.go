// Package intervals maintains the hour and day rollup buckets. Each
// update loads or creates the bucket for the event's timestamp, folds
// in the entity's current state, and returns the bucket so the caller
// can add event-scoped deltas on top.
package intervals

import (
	"fmt"

	"algebraScope/internal/entity"
	"algebraScope/internal/store"
)

// Aggregator writes rollup buckets into the store.
type Aggregator struct {
	store *store.Store
}

// New returns an Aggregator over the given store.
func New(st *store.Store) *Aggregator {
	return &Aggregator{store: st}
}

func dayIndex(ts int64) int64  { return ts / entity.DaySeconds }
func hourIndex(ts int64) int64 { return ts / entity.HourSeconds }

// FactoryDay folds factory-wide state into the day bucket.
func (a *Aggregator) FactoryDay(f *entity.Factory, ts int64) *entity.FactoryDayData {
	idx := dayIndex(ts)
	id := fmt.Sprintf("%d", idx)
	day, _ := a.store.FactoryDayDatas.GetOrCreate(id, func() *entity.FactoryDayData {
		return &entity.FactoryDayData{ID: id, Date: idx * entity.DaySeconds}
	})
	day.TVLUSD = f.TotalValueUSD
	day.TxCount = f.TxCount
	return day
}

// PoolDay folds the pool's current state into its day bucket, widening
// the high/low range and closing on the current price.
func (a *Aggregator) PoolDay(pool *entity.Pool, ts int64) *entity.PoolDayData {
	idx := dayIndex(ts)
	id := fmt.Sprintf("%s-%d", pool.ID, idx)
	day, _ := a.store.PoolDayDatas.GetOrCreate(id, func() *entity.PoolDayData {
		return &entity.PoolDayData{
			ID:   id,
			Date: idx * entity.DaySeconds,
			Pool: pool.ID,
			Open: pool.Token0Price,
			High: pool.Token0Price,
			Low:  pool.Token0Price,
		}
	})

	if pool.Token0Price.GreaterThan(day.High) {
		day.High = pool.Token0Price
	}
	if pool.Token0Price.LessThan(day.Low) {
		day.Low = pool.Token0Price
	}
	day.Close = pool.Token0Price

	day.Liquidity = pool.Liquidity
	day.SqrtPrice = pool.SqrtPrice
	day.Token0Price = pool.Token0Price
	day.Token1Price = pool.Token1Price
	day.Tick = pool.Tick
	day.FeeGrowthGlobal0 = pool.FeeGrowthGlobal0
	day.FeeGrowthGlobal1 = pool.FeeGrowthGlobal1
	day.TVLUSD = pool.TotalValueLockedUSD
	day.TxCount++
	return day
}

// PoolHour is PoolDay over hour buckets.
func (a *Aggregator) PoolHour(pool *entity.Pool, ts int64) *entity.PoolHourData {
	idx := hourIndex(ts)
	id := fmt.Sprintf("%s-%d", pool.ID, idx)
	hour, _ := a.store.PoolHourDatas.GetOrCreate(id, func() *entity.PoolHourData {
		return &entity.PoolHourData{
			ID:          id,
			PeriodStart: idx * entity.HourSeconds,
			Pool:        pool.ID,
			Open:        pool.Token0Price,
			High:        pool.Token0Price,
			Low:         pool.Token0Price,
		}
	})

	if pool.Token0Price.GreaterThan(hour.High) {
		hour.High = pool.Token0Price
	}
	if pool.Token0Price.LessThan(hour.Low) {
		hour.Low = pool.Token0Price
	}
	hour.Close = pool.Token0Price

	hour.Liquidity = pool.Liquidity
	hour.SqrtPrice = pool.SqrtPrice
	hour.Token0Price = pool.Token0Price
	hour.Token1Price = pool.Token1Price
	hour.Tick = pool.Tick
	hour.FeeGrowthGlobal0 = pool.FeeGrowthGlobal0
	hour.FeeGrowthGlobal1 = pool.FeeGrowthGlobal1
	hour.TVLUSD = pool.TotalValueLockedUSD
	hour.TxCount++
	return hour
}

// TokenDay folds the token's state and USD price into its day bucket.
func (a *Aggregator) TokenDay(token *entity.Token, bundle *entity.Bundle, ts int64) *entity.TokenDayData {
	priceUSD := token.DerivedMatic.Mul(bundle.MaticPriceUSD)
	idx := dayIndex(ts)
	id := fmt.Sprintf("%s-%d", token.ID, idx)
	day, _ := a.store.TokenDayDatas.GetOrCreate(id, func() *entity.TokenDayData {
		return &entity.TokenDayData{
			ID:    id,
			Date:  idx * entity.DaySeconds,
			Token: token.ID,
			Open:  priceUSD,
			High:  priceUSD,
			Low:   priceUSD,
		}
	})

	if priceUSD.GreaterThan(day.High) {
		day.High = priceUSD
	}
	if priceUSD.LessThan(day.Low) {
		day.Low = priceUSD
	}
	day.Close = priceUSD
	day.PriceUSD = priceUSD
	day.TotalValueLocked = token.TotalValueLocked
	day.TotalValueLockedUSD = token.TotalValueLockedUSD
	return day
}

// TokenHour is TokenDay over hour buckets.
func (a *Aggregator) TokenHour(token *entity.Token, bundle *entity.Bundle, ts int64) *entity.TokenHourData {
	priceUSD := token.DerivedMatic.Mul(bundle.MaticPriceUSD)
	idx := hourIndex(ts)
	id := fmt.Sprintf("%s-%d", token.ID, idx)
	hour, _ := a.store.TokenHourDatas.GetOrCreate(id, func() *entity.TokenHourData {
		return &entity.TokenHourData{
			ID:          id,
			PeriodStart: idx * entity.HourSeconds,
			Token:       token.ID,
			Open:        priceUSD,
			High:        priceUSD,
			Low:         priceUSD,
		}
	})

	if priceUSD.GreaterThan(hour.High) {
		hour.High = priceUSD
	}
	if priceUSD.LessThan(hour.Low) {
		hour.Low = priceUSD
	}
	hour.Close = priceUSD
	hour.PriceUSD = priceUSD
	hour.TotalValueLocked = token.TotalValueLocked
	hour.TotalValueLockedUSD = token.TotalValueLockedUSD
	return hour
}

// TickDay folds the tick's liquidity state into its day bucket.
func (a *Aggregator) TickDay(tick *entity.Tick, ts int64) *entity.TickDayData {
	idx := dayIndex(ts)
	id := fmt.Sprintf("%s-%d", tick.ID, idx)
	day, _ := a.store.TickDayDatas.GetOrCreate(id, func() *entity.TickDayData {
		return &entity.TickDayData{
			ID:   id,
			Date: idx * entity.DaySeconds,
			Pool: tick.Pool,
			Tick: tick.ID,
		}
	})
	day.LiquidityGross = tick.LiquidityGross
	day.LiquidityNet = tick.LiquidityNet
	day.FeeGrowthOutside0 = tick.FeeGrowthOutside0
	day.FeeGrowthOutside1 = tick.FeeGrowthOutside1
	return day
}

// FeeHour records a fee reconfiguration in the pool's hour bucket,
// tracking the extremes seen within the hour.
func (a *Aggregator) FeeHour(pool *entity.Pool, newFee int64, ts int64) *entity.FeeHourData {
	idx := hourIndex(ts)
	id := fmt.Sprintf("%s-%d", pool.ID, idx)
	hour, _ := a.store.FeeHourDatas.GetOrCreate(id, func() *entity.FeeHourData {
		return &entity.FeeHourData{
			ID:          id,
			Pool:        pool.ID,
			PeriodStart: idx * entity.HourSeconds,
			StartFee:    newFee,
			MinFee:      newFee,
			MaxFee:      newFee,
		}
	})
	hour.Fee = newFee
	hour.EndFee = newFee
	hour.ChangesCount++
	if newFee < hour.MinFee {
		hour.MinFee = newFee
	}
	if newFee > hour.MaxFee {
		hour.MaxFee = newFee
	}
	return hour
}
