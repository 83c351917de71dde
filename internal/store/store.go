// Package store holds the indexer's working set of entities in memory.
// Collections are safe for concurrent readers; the engine is the single
// writer.
package store

import (
	"sync"

	"algebraScope/internal/entity"
)

// Collection is an id-keyed table of one entity type.
type Collection[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

// NewCollection returns an empty collection.
func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{items: make(map[string]*T)}
}

// Get returns the entity with the given id, or nil.
func (c *Collection[T]) Get(id string) *T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items[id]
}

// Put stores the entity under the given id.
func (c *Collection[T]) Put(id string, item *T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = item
}

// GetOrCreate returns the entity with the given id, constructing it
// with init on first access. The second result reports whether the
// entity was created by this call.
func (c *Collection[T]) GetOrCreate(id string, init func() *T) (*T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if item, ok := c.items[id]; ok {
		return item, false
	}
	item := init()
	c.items[id] = item
	return item, true
}

// Delete removes the entity with the given id.
func (c *Collection[T]) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
}

// Range calls fn for each entity until fn returns false.
func (c *Collection[T]) Range(fn func(id string, item *T) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for id, item := range c.items {
		if !fn(id, item) {
			return
		}
	}
}

// Len reports the number of stored entities.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Store aggregates every entity collection the indexer maintains.
type Store struct {
	Factories    *Collection[entity.Factory]
	Bundles      *Collection[entity.Bundle]
	Tokens       *Collection[entity.Token]
	Pools        *Collection[entity.Pool]
	Ticks        *Collection[entity.Tick]
	Transactions *Collection[entity.Transaction]
	Mints        *Collection[entity.Mint]
	Burns        *Collection[entity.Burn]
	Swaps        *Collection[entity.Swap]
	PoolFees     *Collection[entity.PoolFeeData]

	Positions         *Collection[entity.Position]
	PositionSnapshots *Collection[entity.PositionSnapshot]

	FactoryDayDatas *Collection[entity.FactoryDayData]
	PoolDayDatas    *Collection[entity.PoolDayData]
	PoolHourDatas   *Collection[entity.PoolHourData]
	TokenDayDatas   *Collection[entity.TokenDayData]
	TokenHourDatas  *Collection[entity.TokenHourData]
	TickDayDatas    *Collection[entity.TickDayData]
	FeeHourDatas    *Collection[entity.FeeHourData]
}

// New returns a Store with all collections initialized.
func New() *Store {
	return &Store{
		Factories:    NewCollection[entity.Factory](),
		Bundles:      NewCollection[entity.Bundle](),
		Tokens:       NewCollection[entity.Token](),
		Pools:        NewCollection[entity.Pool](),
		Ticks:        NewCollection[entity.Tick](),
		Transactions: NewCollection[entity.Transaction](),
		Mints:        NewCollection[entity.Mint](),
		Burns:        NewCollection[entity.Burn](),
		Swaps:        NewCollection[entity.Swap](),
		PoolFees:     NewCollection[entity.PoolFeeData](),

		Positions:         NewCollection[entity.Position](),
		PositionSnapshots: NewCollection[entity.PositionSnapshot](),

		FactoryDayDatas: NewCollection[entity.FactoryDayData](),
		PoolDayDatas:    NewCollection[entity.PoolDayData](),
		PoolHourDatas:   NewCollection[entity.PoolHourData](),
		TokenDayDatas:   NewCollection[entity.TokenDayData](),
		TokenHourDatas:  NewCollection[entity.TokenHourData](),
		TickDayDatas:    NewCollection[entity.TickDayData](),
		FeeHourDatas:    NewCollection[entity.FeeHourData](),
	}
}
