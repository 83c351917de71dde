package engine

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"algebraScope/internal/entity"
	"algebraScope/internal/model"
)

// handlePoolCreated registers a new pool and its tokens. Token
// metadata is resolved before anything is written: if either lookup
// fails the event creates nothing and is skipped with a log line
// rather than failing the run, since the same log will never carry
// different metadata on a retry.
func (e *Engine) handlePoolCreated(ctx context.Context, ev *model.Event) error {
	data, ok := ev.Decoded.(*model.PoolCreatedData)
	if !ok {
		return fmt.Errorf("engine: bad payload for %s", ev.EventName)
	}

	token0Addr, token1Addr := data.Token0, data.Token1
	reversed := e.reversed[data.Pool]
	if reversed {
		token0Addr, token1Addr = token1Addr, token0Addr
	}

	token0, newToken0, err := e.resolveToken(ctx, token0Addr)
	if err != nil {
		e.log.Warn("pool creation skipped, token metadata unavailable",
			zap.String("pool", data.Pool),
			zap.String("token", token0Addr),
			zap.Error(err))
		return nil
	}
	token1, newToken1, err := e.resolveToken(ctx, token1Addr)
	if err != nil {
		e.log.Warn("pool creation skipped, token metadata unavailable",
			zap.String("pool", data.Pool),
			zap.String("token", token1Addr),
			zap.Error(err))
		return nil
	}

	if existing := e.store.Pools.Get(data.Pool); existing != nil {
		e.log.Warn("duplicate pool creation ignored", zap.String("pool", data.Pool))
		return nil
	}

	e.state.Factory.PoolCount++

	pool := &entity.Pool{
		ID:               data.Pool,
		CreatedAt:        int64(ev.Timestamp),
		CreatedAtBlock:   int64(ev.BlockNumber),
		Token0:           token0.ID,
		Token1:           token1.ID,
		ReversedOrder:    reversed,
		Fee:              DefaultPoolFee,
		Liquidity:        big.NewInt(0),
		SqrtPrice:        big.NewInt(0),
		FeeGrowthGlobal0: big.NewInt(0),
		FeeGrowthGlobal1: big.NewInt(0),
	}

	if e.pricer.IsWhitelisted(token0.ID) {
		token1.WhitelistPools = append(token1.WhitelistPools, pool.ID)
	}
	if e.pricer.IsWhitelisted(token1.ID) {
		token0.WhitelistPools = append(token0.WhitelistPools, pool.ID)
	}
	token0.PoolCount++
	token1.PoolCount++

	if newToken0 {
		e.store.Tokens.Put(token0.ID, token0)
	}
	if newToken1 {
		e.store.Tokens.Put(token1.ID, token1)
	}
	e.store.Pools.Put(pool.ID, pool)

	e.log.Info("pool created",
		zap.String("pool", pool.ID),
		zap.String("token0", token0.ID),
		zap.String("token1", token1.ID),
		zap.Bool("reversed", reversed))
	return nil
}

// resolveToken loads a token, fetching on-chain metadata on first
// sight. A freshly built token is returned unstored; the caller
// persists it only once the whole pair resolved, so a failure on the
// other side leaves no partial entity behind.
func (e *Engine) resolveToken(ctx context.Context, addr string) (*entity.Token, bool, error) {
	if existing := e.store.Tokens.Get(addr); existing != nil {
		return existing, false, nil
	}
	meta, err := e.reader.TokenMetadata(ctx, addr)
	if err != nil {
		return nil, false, fmt.Errorf("token metadata %s: %w", addr, err)
	}
	tok := &entity.Token{
		ID:          addr,
		Symbol:      meta.Symbol,
		Name:        meta.Name,
		Decimals:    meta.Decimals,
		TotalSupply: meta.TotalSupply,
	}
	return tok, true, nil
}
