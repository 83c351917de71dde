// Package positions maintains the NFT position ledger from position
// manager events. Positions are keyed by NFT token id and survive
// transfers; fee income is inferred as collected minus withdrawn.
package positions

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"algebraScope/internal/entity"
	"algebraScope/internal/model"
	"algebraScope/internal/numeric"
	"algebraScope/internal/store"
)

// ErrPositionReverted marks a positions() call that reverted because
// the NFT was minted and burned within the same block. Events for such
// positions are skipped.
var ErrPositionReverted = errors.New("position lookup reverted")

// PositionState is the on-chain view of one NFT position.
type PositionState struct {
	Token0           string
	Token1           string
	TickLower        int32
	TickUpper        int32
	FeeGrowthInside0 *big.Int
	FeeGrowthInside1 *big.Int
}

// PositionReader serves position manager and factory contract state.
type PositionReader interface {
	PositionState(ctx context.Context, tokenID string) (PositionState, error)
	PoolByTokenPair(ctx context.Context, token0, token1 string) (string, error)
}

// Ledger applies position manager events to the store.
type Ledger struct {
	store  *store.Store
	reader PositionReader
	log    *zap.Logger
}

// New builds a Ledger over the given store.
func New(st *store.Store, reader PositionReader, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{store: st, reader: reader, log: log}
}

// Apply dispatches one position manager event.
func (l *Ledger) Apply(ctx context.Context, ev *model.Event) error {
	switch ev.EventName {
	case model.EventIncreaseLiquidity:
		return l.handleIncrease(ctx, ev)
	case model.EventDecreaseLiquidity:
		return l.handleDecrease(ctx, ev)
	case model.EventNFTCollect:
		return l.handleCollect(ctx, ev)
	case model.EventNFTTransfer:
		return l.handleTransfer(ctx, ev)
	default:
		return fmt.Errorf("positions: unhandled event %q", ev.EventName)
	}
}

// getPosition loads a position, materializing it from chain state on
// first sight. Returns nil without error when the on-chain lookup
// reverted; the owner is filled in by the Transfer handler.
func (l *Ledger) getPosition(ctx context.Context, ev *model.Event, tokenID string) (*entity.Position, error) {
	if existing := l.store.Positions.Get(tokenID); existing != nil {
		return existing, nil
	}

	state, err := l.reader.PositionState(ctx, tokenID)
	if errors.Is(err, ErrPositionReverted) {
		l.log.Debug("skipping position deleted in its mint block", zap.String("token_id", tokenID))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("positions: state of %s: %w", tokenID, err)
	}

	poolAddr, err := l.reader.PoolByTokenPair(ctx, state.Token0, state.Token1)
	if err != nil {
		return nil, fmt.Errorf("positions: pool for %s: %w", tokenID, err)
	}

	token0, token1 := state.Token0, state.Token1
	if pool := l.store.Pools.Get(poolAddr); pool != nil && pool.ReversedOrder {
		token0, token1 = token1, token0
	}

	position := &entity.Position{
		ID:                       tokenID,
		Owner:                    entity.ZeroAddress,
		Pool:                     poolAddr,
		Token0:                   token0,
		Token1:                   token1,
		TickLower:                fmt.Sprintf("%s#%d", poolAddr, state.TickLower),
		TickUpper:                fmt.Sprintf("%s#%d", poolAddr, state.TickUpper),
		Transaction:              l.loadTransaction(ev).ID,
		Liquidity:                big.NewInt(0),
		FeeGrowthInside0LastX128: state.FeeGrowthInside0,
		FeeGrowthInside1LastX128: state.FeeGrowthInside1,
	}
	l.store.Positions.Put(tokenID, position)
	return position, nil
}

func (l *Ledger) loadTransaction(ev *model.Event) *entity.Transaction {
	tx, _ := l.store.Transactions.GetOrCreate(ev.TxHash, func() *entity.Transaction {
		gasLimit, _ := numeric.ParseBig(ev.GasLimit)
		gasPrice, _ := numeric.ParseBig(ev.GasPrice)
		return &entity.Transaction{
			ID:          ev.TxHash,
			BlockNumber: int64(ev.BlockNumber),
			Timestamp:   int64(ev.Timestamp),
			GasLimit:    gasLimit,
			GasPrice:    gasPrice,
		}
	})
	return tx
}

// amounts converts raw event amounts into canonical token order for
// the position's pool.
func (l *Ledger) amounts(position *entity.Position, raw0, raw1 string) (decimal.Decimal, decimal.Decimal, error) {
	token0 := l.store.Tokens.Get(position.Token0)
	token1 := l.store.Tokens.Get(position.Token1)
	if token0 == nil || token1 == nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("positions: unknown tokens %s/%s", position.Token0, position.Token1)
	}

	a0, err := numeric.ParseBig(raw0)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("amount0: %w", err)
	}
	a1, err := numeric.ParseBig(raw1)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("amount1: %w", err)
	}
	if pool := l.store.Pools.Get(position.Pool); pool != nil && pool.ReversedOrder {
		a0, a1 = a1, a0
	}
	return numeric.FromRaw(a0, token0.Decimals), numeric.FromRaw(a1, token1.Decimals), nil
}

// refreshFeeVars updates the position's last fee growth from chain
// state. Reverted lookups leave the stored values in place.
func (l *Ledger) refreshFeeVars(ctx context.Context, position *entity.Position) {
	state, err := l.reader.PositionState(ctx, position.ID)
	if err != nil {
		if !errors.Is(err, ErrPositionReverted) {
			l.log.Warn("position fee vars read failed", zap.String("token_id", position.ID), zap.Error(err))
		}
		return
	}
	position.FeeGrowthInside0LastX128 = state.FeeGrowthInside0
	position.FeeGrowthInside1LastX128 = state.FeeGrowthInside1
}

// snapshot records the position's state after a mutation. For pools
// with reversed on-chain order, sides are swapped back to the emitted
// order so snapshots line up with raw chain data.
func (l *Ledger) snapshot(position *entity.Position, ev *model.Event) {
	snap := &entity.PositionSnapshot{
		ID:          fmt.Sprintf("%s#%d", position.ID, ev.BlockNumber),
		Owner:       position.Owner,
		Pool:        position.Pool,
		Position:    position.ID,
		BlockNumber: int64(ev.BlockNumber),
		Timestamp:   int64(ev.Timestamp),
		Transaction: l.loadTransaction(ev).ID,
		Liquidity:   position.Liquidity,
	}
	pool := l.store.Pools.Get(position.Pool)
	if pool != nil && pool.ReversedOrder {
		snap.DepositedToken0 = position.DepositedToken1
		snap.DepositedToken1 = position.DepositedToken0
		snap.WithdrawnToken0 = position.WithdrawnToken1
		snap.WithdrawnToken1 = position.WithdrawnToken0
		snap.CollectedFeesToken0 = position.CollectedFeesToken1
		snap.CollectedFeesToken1 = position.CollectedFeesToken0
		snap.FeeGrowthInside0LastX128 = position.FeeGrowthInside1LastX128
		snap.FeeGrowthInside1LastX128 = position.FeeGrowthInside0LastX128
	} else {
		snap.DepositedToken0 = position.DepositedToken0
		snap.DepositedToken1 = position.DepositedToken1
		snap.WithdrawnToken0 = position.WithdrawnToken0
		snap.WithdrawnToken1 = position.WithdrawnToken1
		snap.CollectedFeesToken0 = position.CollectedFeesToken0
		snap.CollectedFeesToken1 = position.CollectedFeesToken1
		snap.FeeGrowthInside0LastX128 = position.FeeGrowthInside0LastX128
		snap.FeeGrowthInside1LastX128 = position.FeeGrowthInside1LastX128
	}
	l.store.PositionSnapshots.Put(snap.ID, snap)
}

func (l *Ledger) handleIncrease(ctx context.Context, ev *model.Event) error {
	data, ok := ev.Decoded.(*model.IncreaseLiquidityData)
	if !ok {
		return fmt.Errorf("positions: bad payload for %s", ev.EventName)
	}
	position, err := l.getPosition(ctx, ev, data.TokenID)
	if err != nil || position == nil {
		return err
	}

	amount0, amount1, err := l.amounts(position, data.Amount0, data.Amount1)
	if err != nil {
		return fmt.Errorf("positions: increase %s: %w", data.TokenID, err)
	}
	liquidity, err := numeric.ParseBig(data.Liquidity)
	if err != nil {
		return fmt.Errorf("positions: increase liquidity: %w", err)
	}

	position.Liquidity = new(big.Int).Add(position.Liquidity, liquidity)
	position.DepositedToken0 = position.DepositedToken0.Add(amount0)
	position.DepositedToken1 = position.DepositedToken1.Add(amount1)

	l.snapshot(position, ev)
	return nil
}

func (l *Ledger) handleDecrease(ctx context.Context, ev *model.Event) error {
	data, ok := ev.Decoded.(*model.DecreaseLiquidityData)
	if !ok {
		return fmt.Errorf("positions: bad payload for %s", ev.EventName)
	}
	position, err := l.getPosition(ctx, ev, data.TokenID)
	if err != nil || position == nil {
		return err
	}

	amount0, amount1, err := l.amounts(position, data.Amount0, data.Amount1)
	if err != nil {
		return fmt.Errorf("positions: decrease %s: %w", data.TokenID, err)
	}
	liquidity, err := numeric.ParseBig(data.Liquidity)
	if err != nil {
		return fmt.Errorf("positions: decrease liquidity: %w", err)
	}

	position.Liquidity = new(big.Int).Sub(position.Liquidity, liquidity)
	position.WithdrawnToken0 = position.WithdrawnToken0.Add(amount0)
	position.WithdrawnToken1 = position.WithdrawnToken1.Add(amount1)

	l.refreshFeeVars(ctx, position)
	l.snapshot(position, ev)
	return nil
}

func (l *Ledger) handleCollect(ctx context.Context, ev *model.Event) error {
	data, ok := ev.Decoded.(*model.NFTCollectData)
	if !ok {
		return fmt.Errorf("positions: bad payload for %s", ev.EventName)
	}
	position, err := l.getPosition(ctx, ev, data.TokenID)
	if err != nil || position == nil {
		return err
	}

	amount0, amount1, err := l.amounts(position, data.Amount0, data.Amount1)
	if err != nil {
		return fmt.Errorf("positions: collect %s: %w", data.TokenID, err)
	}

	position.CollectedToken0 = position.CollectedToken0.Add(amount0)
	position.CollectedToken1 = position.CollectedToken1.Add(amount1)

	// Whatever a collect pays out beyond withdrawn principal is fees.
	position.CollectedFeesToken0 = position.CollectedToken0.Sub(position.WithdrawnToken0)
	position.CollectedFeesToken1 = position.CollectedToken1.Sub(position.WithdrawnToken1)

	l.refreshFeeVars(ctx, position)
	l.snapshot(position, ev)
	return nil
}

func (l *Ledger) handleTransfer(ctx context.Context, ev *model.Event) error {
	data, ok := ev.Decoded.(*model.NFTTransferData)
	if !ok {
		return fmt.Errorf("positions: bad payload for %s", ev.EventName)
	}
	position, err := l.getPosition(ctx, ev, data.TokenID)
	if err != nil || position == nil {
		return err
	}

	position.Owner = data.To
	l.snapshot(position, ev)
	return nil
}
