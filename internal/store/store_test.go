package store

import (
	"testing"

	"algebraScope/internal/entity"
)

func TestGetOrCreateRunsInitOnce(t *testing.T) {
	c := NewCollection[entity.Token]()

	calls := 0
	init := func() *entity.Token {
		calls++
		return &entity.Token{ID: "0xabc", Symbol: "WMATIC"}
	}

	first, created := c.GetOrCreate("0xabc", init)
	if !created {
		t.Fatalf("first access: want created=true")
	}
	second, created := c.GetOrCreate("0xabc", init)
	if created {
		t.Fatalf("second access: want created=false")
	}
	if first != second {
		t.Fatalf("want same pointer across accesses")
	}
	if calls != 1 {
		t.Fatalf("init calls: got %d, want 1", calls)
	}
}

func TestCollectionRangeAndLen(t *testing.T) {
	c := NewCollection[entity.Pool]()
	c.Put("a", &entity.Pool{ID: "a"})
	c.Put("b", &entity.Pool{ID: "b"})

	if c.Len() != 2 {
		t.Fatalf("len: got %d, want 2", c.Len())
	}

	seen := map[string]bool{}
	c.Range(func(id string, p *entity.Pool) bool {
		seen[id] = true
		return true
	})
	if !seen["a"] || !seen["b"] {
		t.Fatalf("range missed entries: %v", seen)
	}

	c.Delete("a")
	if c.Get("a") != nil {
		t.Fatalf("delete: entity still present")
	}
}
