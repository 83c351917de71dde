package indexer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"algebraScope/internal/model"
	"algebraScope/internal/store"
)

// Processor applies decoded events to some state.
type Processor interface {
	Apply(ctx context.Context, event *model.Event) error
}

// Router dispatches events by emitting contract: the factory and pool
// contracts go to the accounting engine, the position manager to the
// position ledger. Pool events from contracts the factory never
// announced are dropped.
type Router struct {
	factory   string
	manager   string
	store     *store.Store
	engine    Processor
	positions Processor
	log       *zap.Logger
}

// NewRouter builds a Router for the given contract addresses.
func NewRouter(factory, manager string, st *store.Store, engine, positions Processor, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		factory:   strings.ToLower(factory),
		manager:   strings.ToLower(manager),
		store:     st,
		engine:    engine,
		positions: positions,
		log:       log,
	}
}

// Apply routes one event to its processor.
func (r *Router) Apply(ctx context.Context, event *model.Event) error {
	switch event.Address {
	case r.factory:
		if event.EventName != model.EventPoolCreated {
			r.log.Debug("unexpected factory event", zap.String("event", event.EventName))
			return nil
		}
		return r.engine.Apply(ctx, event)
	case r.manager:
		return r.positions.Apply(ctx, event)
	default:
		if r.store.Pools.Get(event.Address) == nil {
			r.log.Debug("event from untracked contract",
				zap.String("address", event.Address),
				zap.String("event", event.EventName))
			return nil
		}
		return r.engine.Apply(ctx, event)
	}
}
