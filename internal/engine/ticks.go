package engine

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"algebraScope/internal/entity"
	"algebraScope/internal/model"
	"algebraScope/internal/numeric"
)

func tickID(pool string, tickIdx int32) string {
	return fmt.Sprintf("%s#%d", pool, tickIdx)
}

// getOrCreateTick loads a pool tick, materializing it with its fixed
// prices on first sight.
func (e *Engine) getOrCreateTick(pool *entity.Pool, tickIdx int32, ev *model.Event) *entity.Tick {
	id := tickID(pool.ID, tickIdx)
	tick, _ := e.store.Ticks.GetOrCreate(id, func() *entity.Tick {
		price0, price1 := numeric.TickPrices(tickIdx)
		return &entity.Tick{
			ID:                id,
			Pool:              pool.ID,
			TickIdx:           tickIdx,
			CreatedAt:         int64(ev.Timestamp),
			CreatedAtBlock:    int64(ev.BlockNumber),
			LiquidityGross:    big.NewInt(0),
			LiquidityNet:      big.NewInt(0),
			Price0:            price0,
			Price1:            price1,
			FeeGrowthOutside0: big.NewInt(0),
			FeeGrowthOutside1: big.NewInt(0),
		}
	})
	return tick
}

// syncTickFeeVars refreshes a tick's outside fee growth from the chain
// and rolls the tick into its day bucket. A failed read keeps the
// previous values.
func (e *Engine) syncTickFeeVars(ctx context.Context, tick *entity.Tick, ts int64) {
	fg0, fg1, err := e.reader.TickFeeGrowthOutside(ctx, tick.Pool, tick.TickIdx)
	if err != nil {
		e.log.Warn("tick fee growth read failed, keeping previous values",
			zap.String("tick", tick.ID), zap.Error(err))
	} else {
		tick.FeeGrowthOutside0 = fg0
		tick.FeeGrowthOutside1 = fg1
	}
	e.intervals.TickDay(tick, ts)
}

// syncTickIfTracked refreshes the tick at the given index when it is
// already part of the working set. Untracked indexes are expected.
func (e *Engine) syncTickIfTracked(ctx context.Context, pool string, tickIdx int32, ts int64) {
	if tick := e.store.Ticks.Get(tickID(pool, tickIdx)); tick != nil {
		e.syncTickFeeVars(ctx, tick, ts)
	}
}

// resyncCrossedTicks walks every spacing-aligned tick a swap crossed
// and refreshes its fee state. Crossings beyond MaxTickCrossings are
// skipped; those ticks catch up on later activity.
func (e *Engine) resyncCrossedTicks(ctx context.Context, pool *entity.Pool, oldTick, newTick int32, ts int64) {
	modulo := ((newTick % TickSpacing) + TickSpacing) % TickSpacing
	if modulo == 0 {
		e.syncTickIfTracked(ctx, pool.ID, newTick, ts)
	}

	delta := oldTick - newTick
	if delta < 0 {
		delta = -delta
	}
	if delta/TickSpacing > MaxTickCrossings {
		e.log.Debug("tick resync skipped, crossing cap exceeded",
			zap.String("pool", pool.ID),
			zap.Int32("old_tick", oldTick),
			zap.Int32("new_tick", newTick))
		return
	}

	if newTick > oldTick {
		for i := oldTick + (TickSpacing - modulo); i <= newTick; i += TickSpacing {
			e.syncTickIfTracked(ctx, pool.ID, i, ts)
		}
	} else if newTick < oldTick {
		for i := oldTick - modulo; i >= newTick; i -= TickSpacing {
			e.syncTickIfTracked(ctx, pool.ID, i, ts)
		}
	}
}
