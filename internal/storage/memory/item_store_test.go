package memory

import (
	"context"
	"errors"
	"testing"

	"game-market-tracker/internal/storage"
)

func TestItemStore_InsertIfAbsent(t *testing.T) {
	store := NewItemStore()
	ctx := context.Background()

	created, err := store.InsertIfAbsent(ctx, []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 2 {
		t.Errorf("expected 2 created, got %d", created)
	}

	// Re-inserting the same names plus one new one creates only the new one.
	created, err = store.InsertIfAbsent(ctx, []string{"alpha", "beta", "gamma"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 1 {
		t.Errorf("expected 1 created, got %d", created)
	}

	ids, err := store.IDsByName(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 items, got %d", len(ids))
	}
	// IDs assigned in insertion order, starting at 1.
	if ids["alpha"] != 1 || ids["beta"] != 2 || ids["gamma"] != 3 {
		t.Errorf("unexpected id assignment %v", ids)
	}
}

func TestItemStore_InsertIfAbsent_RejectsEmptyName(t *testing.T) {
	store := NewItemStore()

	_, err := store.InsertIfAbsent(context.Background(), []string{"alpha", ""})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestItemStore_GetByID(t *testing.T) {
	store := NewItemStore()
	ctx := context.Background()

	if _, err := store.InsertIfAbsent(ctx, []string{"alpha"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item, err := store.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Name != "alpha" {
		t.Errorf("expected name alpha, got %q", item.Name)
	}

	_, err = store.GetByID(ctx, 99)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestItemStore_GetAll_SortedByID(t *testing.T) {
	store := NewItemStore()
	ctx := context.Background()

	if _, err := store.InsertIfAbsent(ctx, []string{"zeta", "alpha", "mid"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, item := range items {
		if item.ID != int64(i+1) {
			t.Errorf("position %d: expected id %d, got %d", i, i+1, item.ID)
		}
	}
}
