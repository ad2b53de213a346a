package store

import (
	"context"
	"encoding/json"
	"testing"
)

func TestMemoryStore_PutGetRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Put(ctx, &Document{
		ID:   "f1",
		Kind: KindFood,
		Data: json.RawMessage(`{"name":"rice"}`),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if created.Rev == "" {
		t.Fatal("created document must carry a revision")
	}

	got, err := s.Get(ctx, KindFood, "f1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Rev != created.Rev || string(got.Data) != `{"name":"rice"}` {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), KindFood, "nope"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_OptimisticConcurrency(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Put(ctx, &Document{ID: "f1", Kind: KindFood, Data: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	// 重複建立（空 Rev）應衝突
	if _, err := s.Put(ctx, &Document{ID: "f1", Kind: KindFood, Data: json.RawMessage(`{}`)}); err != ErrRevisionMismatch {
		t.Fatalf("create over existing: err = %v, want ErrRevisionMismatch", err)
	}

	// 正確 Rev 更新成功並推進版本
	updated, err := s.Put(ctx, &Document{ID: "f1", Kind: KindFood, Rev: created.Rev, Data: json.RawMessage(`{"v":2}`)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Rev == created.Rev {
		t.Fatal("revision must advance on update")
	}

	// 舊 Rev 再寫應衝突
	if _, err := s.Put(ctx, &Document{ID: "f1", Kind: KindFood, Rev: created.Rev, Data: json.RawMessage(`{}`)}); err != ErrRevisionMismatch {
		t.Fatalf("stale update: err = %v, want ErrRevisionMismatch", err)
	}
}

func TestMemoryStore_Remove(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, _ := s.Put(ctx, &Document{ID: "f1", Kind: KindFood, Data: json.RawMessage(`{}`)})

	if err := s.Remove(ctx, KindFood, "f1", "bogus"); err != ErrRevisionMismatch {
		t.Fatalf("stale remove: err = %v, want ErrRevisionMismatch", err)
	}
	if err := s.Remove(ctx, KindFood, "f1", ""); err != ErrRevisionRequired {
		t.Fatalf("empty rev remove: err = %v, want ErrRevisionRequired", err)
	}
	if err := s.Remove(ctx, KindFood, "f1", created.Rev); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Get(ctx, KindFood, "f1"); err != ErrNotFound {
		t.Fatalf("after remove: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_ListIsolatesKinds(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, &Document{ID: "f1", Kind: KindFood, Data: json.RawMessage(`{}`)})
	s.Put(ctx, &Document{ID: "f2", Kind: KindFood, Data: json.RawMessage(`{}`)})
	s.Put(ctx, &Document{ID: "r1", Kind: KindRecipe, Data: json.RawMessage(`{}`)})

	foods, err := s.List(ctx, KindFood)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(foods) != 2 {
		t.Fatalf("foods = %d, want 2", len(foods))
	}
	recipes, _ := s.List(ctx, KindRecipe)
	if len(recipes) != 1 {
		t.Fatalf("recipes = %d, want 1", len(recipes))
	}
}
