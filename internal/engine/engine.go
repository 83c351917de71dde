// Package engine folds decoded factory and pool events into the entity
// store. Handlers mirror on-chain accounting: TVL aggregates are
// maintained subtract-old-then-add-new so factory totals stay the sum
// of pool totals, and prices are refreshed after every state change.
package engine

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"algebraScope/internal/entity"
	"algebraScope/internal/intervals"
	"algebraScope/internal/model"
	"algebraScope/internal/numeric"
	"algebraScope/internal/pricing"
	"algebraScope/internal/store"
)

const (
	// TickSpacing is the pool's tick granularity.
	TickSpacing = 60
	// MaxTickCrossings caps the per-swap tick resync loop. Swaps that
	// move further, seen in practice only at pool initialization, skip
	// the resync; later activity repairs the affected ticks.
	MaxTickCrossings = 100
	// DefaultPoolFee is the fee a pool starts with before its first
	// Fee event, in hundredths of a bip.
	DefaultPoolFee = 100
)

// TokenMetadata is the on-chain ERC-20 descriptor.
type TokenMetadata struct {
	Symbol      string
	Name        string
	Decimals    int32
	TotalSupply *big.Int
}

// ContractReader serves the contract state handlers cannot derive from
// events alone.
type ContractReader interface {
	TokenMetadata(ctx context.Context, token string) (TokenMetadata, error)
	TickFeeGrowthOutside(ctx context.Context, pool string, tickIdx int32) (*big.Int, *big.Int, error)
	PoolFeeGrowthGlobal(ctx context.Context, pool string) (*big.Int, *big.Int, error)
}

// State holds the two singletons every handler touches.
type State struct {
	Factory *entity.Factory
	Bundle  *entity.Bundle
}

// Config tunes pool-creation behavior.
type Config struct {
	// ReversedPools lists pool addresses whose emitted token order is
	// the opposite of the canonical reporting order.
	ReversedPools []string
}

// Engine applies factory and pool events to the store.
type Engine struct {
	store     *store.Store
	state     *State
	pricer    *pricing.Pricer
	intervals *intervals.Aggregator
	reader    ContractReader
	log       *zap.Logger
	reversed  map[string]bool
}

// New builds an Engine, creating the factory and bundle singletons if
// the store does not hold them yet.
func New(st *store.Store, pricer *pricing.Pricer, agg *intervals.Aggregator, reader ContractReader, cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	factory, _ := st.Factories.GetOrCreate(entity.FactoryID, func() *entity.Factory {
		return &entity.Factory{ID: entity.FactoryID, Owner: entity.ZeroAddress}
	})
	bundle, _ := st.Bundles.GetOrCreate(entity.BundleID, func() *entity.Bundle {
		return &entity.Bundle{ID: entity.BundleID}
	})

	reversed := make(map[string]bool, len(cfg.ReversedPools))
	for _, addr := range cfg.ReversedPools {
		reversed[strings.ToLower(addr)] = true
	}
	return &Engine{
		store:     st,
		state:     &State{Factory: factory, Bundle: bundle},
		pricer:    pricer,
		intervals: agg,
		reader:    reader,
		log:       log,
		reversed:  reversed,
	}
}

// State exposes the singletons, mainly for tests and persistence.
func (e *Engine) State() *State { return e.state }

// Apply dispatches one decoded event to its handler.
func (e *Engine) Apply(ctx context.Context, ev *model.Event) error {
	switch ev.EventName {
	case model.EventPoolCreated:
		return e.handlePoolCreated(ctx, ev)
	case model.EventInitialize:
		return e.handleInitialize(ev)
	case model.EventMint:
		return e.handleMint(ctx, ev)
	case model.EventBurn:
		return e.handleBurn(ctx, ev)
	case model.EventSwap:
		return e.handleSwap(ctx, ev)
	case model.EventCollect:
		return e.handleCollect(ev)
	case model.EventFee:
		return e.handleChangeFee(ev)
	case model.EventCommunityFee:
		return e.handleCommunityFee(ev)
	default:
		return fmt.Errorf("engine: unhandled event %q", ev.EventName)
	}
}

// loadTransaction gets or creates the Transaction entity for an event.
func (e *Engine) loadTransaction(ev *model.Event) *entity.Transaction {
	tx, _ := e.store.Transactions.GetOrCreate(ev.TxHash, func() *entity.Transaction {
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

// pool returns the pool an event targets, or an error for unknown
// addresses.
func (e *Engine) pool(ev *model.Event) (*entity.Pool, error) {
	pool := e.store.Pools.Get(ev.Address)
	if pool == nil {
		return nil, fmt.Errorf("engine: unknown pool %s for %s event", ev.Address, ev.EventName)
	}
	return pool, nil
}

func (e *Engine) token(id string) (*entity.Token, error) {
	tok := e.store.Tokens.Get(id)
	if tok == nil {
		return nil, fmt.Errorf("engine: unknown token %s", id)
	}
	return tok, nil
}

// tokenUSD is the token's current USD rate.
func (e *Engine) tokenUSD(tok *entity.Token) decimal.Decimal {
	return tok.DerivedMatic.Mul(e.state.Bundle.MaticPriceUSD)
}
