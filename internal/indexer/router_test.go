package indexer

import (
	"context"
	"testing"

	"algebraScope/internal/entity"
	"algebraScope/internal/model"
	"algebraScope/internal/store"
)

type recordingProcessor struct {
	applied []string
}

func (p *recordingProcessor) Apply(_ context.Context, event *model.Event) error {
	p.applied = append(p.applied, event.Address+":"+event.EventName)
	return nil
}

func TestRouterDispatch(t *testing.T) {
	factory := "0x1111111111111111111111111111111111111111"
	manager := "0x2222222222222222222222222222222222222222"
	pool := "0x3333333333333333333333333333333333333333"
	unknown := "0x4444444444444444444444444444444444444444"

	st := store.New()
	st.Pools.Put(pool, &entity.Pool{ID: pool})

	engine := &recordingProcessor{}
	positions := &recordingProcessor{}
	router := NewRouter(factory, manager, st, engine, positions, nil)

	ctx := context.Background()

	if err := router.Apply(ctx, &model.Event{Address: factory, EventName: model.EventPoolCreated}); err != nil {
		t.Fatalf("factory event: %v", err)
	}
	if err := router.Apply(ctx, &model.Event{Address: pool, EventName: model.EventSwap}); err != nil {
		t.Fatalf("pool event: %v", err)
	}
	if err := router.Apply(ctx, &model.Event{Address: manager, EventName: model.EventNFTTransfer}); err != nil {
		t.Fatalf("manager event: %v", err)
	}
	if err := router.Apply(ctx, &model.Event{Address: unknown, EventName: model.EventSwap}); err != nil {
		t.Fatalf("untracked event: %v", err)
	}

	if len(engine.applied) != 2 {
		t.Fatalf("engine applied %d events, want 2: %v", len(engine.applied), engine.applied)
	}
	if engine.applied[0] != factory+":"+model.EventPoolCreated {
		t.Fatalf("first engine event mismatch: %s", engine.applied[0])
	}
	if engine.applied[1] != pool+":"+model.EventSwap {
		t.Fatalf("second engine event mismatch: %s", engine.applied[1])
	}
	if len(positions.applied) != 1 {
		t.Fatalf("positions applied %d events, want 1", len(positions.applied))
	}
}

func TestRouterIgnoresUnexpectedFactoryEvent(t *testing.T) {
	factory := "0x1111111111111111111111111111111111111111"
	manager := "0x2222222222222222222222222222222222222222"

	st := store.New()
	engine := &recordingProcessor{}
	positions := &recordingProcessor{}
	router := NewRouter(factory, manager, st, engine, positions, nil)

	if err := router.Apply(context.Background(), &model.Event{Address: factory, EventName: model.EventSwap}); err != nil {
		t.Fatalf("unexpected factory event: %v", err)
	}
	if len(engine.applied) != 0 {
		t.Fatalf("engine should not receive swap from factory")
	}
}
