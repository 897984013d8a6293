package db

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryDocumentStore()

	_, err := store.Get(context.Background(), "absent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryDocumentStore()
	ctx := context.Background()

	if err := store.Put(ctx, KeyDescentRate, []byte(`350`)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	data, err := store.Get(ctx, KeyDescentRate)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(data) != "350" {
		t.Errorf("got %q, want %q", data, "350")
	}
}

func TestMemoryStore_PutReplaces(t *testing.T) {
	store := NewMemoryDocumentStore()
	ctx := context.Background()

	store.Put(ctx, "k", []byte(`1`))
	store.Put(ctx, "k", []byte(`2`))

	data, _ := store.Get(ctx, "k")
	if string(data) != "2" {
		t.Errorf("got %q, want replacement value", data)
	}
	if store.Len() != 1 {
		t.Errorf("expected a single document, got %d", store.Len())
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryDocumentStore()
	ctx := context.Background()

	store.Put(ctx, "k", []byte(`1`))
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting an absent key is not an error.
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("delete of absent key: %v", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryDocumentStore()
	ctx := context.Background()

	store.Put(ctx, "k", []byte(`abc`))
	data, _ := store.Get(ctx, "k")
	data[0] = 'x'

	fresh, _ := store.Get(ctx, "k")
	if string(fresh) != "abc" {
		t.Errorf("stored document mutated through returned slice: %q", fresh)
	}
}
