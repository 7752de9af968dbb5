package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"token-forge/internal/domain"
	"token-forge/internal/storage"
)

func record(id, mint string) *domain.CreatedCoinRecord {
	return &domain.CreatedCoinRecord{
		ID:            id,
		Name:          "Solana Doge",
		Symbol:        "SDOGE",
		Supply:        1_000_000_000,
		Decimals:      9,
		MintAddress:   mint,
		TransactionID: "sig-" + id,
		Socials:       domain.SocialLinks{{Platform: domain.PlatformTwitter, URL: "https://x.com/sdoge"}},
		CreatedAt:     1704067200000,
	}
}

func TestCoinRecordStore_PrependOrder(t *testing.T) {
	store := NewCoinRecordStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Prepend(ctx, record(id, "mint-"+id)); err != nil {
			t.Fatalf("Prepend(%s) failed: %v", id, err)
		}
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, want := range []string{"c", "b", "a"} {
		if got[i].ID != want {
			t.Errorf("record %d: got %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestCoinRecordStore_DuplicateKey(t *testing.T) {
	store := NewCoinRecordStore()
	ctx := context.Background()

	if err := store.Prepend(ctx, record("a", "mint-a")); err != nil {
		t.Fatalf("first Prepend failed: %v", err)
	}
	err := store.Prepend(ctx, record("a", "mint-a"))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestCoinRecordStore_InvalidInput(t *testing.T) {
	store := NewCoinRecordStore()

	if err := store.Prepend(context.Background(), nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("nil record: expected ErrInvalidInput, got %v", err)
	}
	if err := store.Prepend(context.Background(), record("", "mint")); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("empty id: expected ErrInvalidInput, got %v", err)
	}
}

func TestCoinRecordStore_GetByMint(t *testing.T) {
	store := NewCoinRecordStore()
	ctx := context.Background()
	_ = store.Prepend(ctx, record("a", "mint-a"))

	got, err := store.GetByMint(ctx, "mint-a")
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if got.ID != "a" {
		t.Errorf("got %s, want a", got.ID)
	}

	if _, err := store.GetByMint(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCoinRecordStore_CopyOnReadWrite(t *testing.T) {
	store := NewCoinRecordStore()
	ctx := context.Background()

	rec := record("a", "mint-a")
	_ = store.Prepend(ctx, rec)
	rec.Name = "mutated"
	rec.Socials[0].URL = "https://evil.example"

	got, _ := store.GetByMint(ctx, "mint-a")
	if got.Name != "Solana Doge" || got.Socials[0].URL != "https://x.com/sdoge" {
		t.Errorf("store shares memory with caller: %+v", got)
	}
}

func TestCoinRecordStore_Concurrent(t *testing.T) {
	store := NewCoinRecordStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('A' + i))
			_ = store.Prepend(ctx, record(id, "mint-"+id))
			_, _ = store.List(ctx)
		}(i)
	}
	wg.Wait()

	got, _ := store.List(ctx)
	if len(got) != 50 {
		t.Errorf("expected 50 records, got %d", len(got))
	}
}
