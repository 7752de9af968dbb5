// Package memory provides in-memory storage backends for tests and ephemeral runs.
package memory

import (
	"context"
	"sync"

	"token-forge/internal/domain"
	"token-forge/internal/storage"
)

// CoinRecordStore is an in-memory implementation of storage.CoinRecordStore.
type CoinRecordStore struct {
	mu   sync.RWMutex
	data []*domain.CreatedCoinRecord // most recent first
	ids  map[string]struct{}
}

// NewCoinRecordStore creates a new in-memory record store.
func NewCoinRecordStore() *CoinRecordStore {
	return &CoinRecordStore{
		ids: make(map[string]struct{}),
	}
}

// Compile-time interface check.
var _ storage.CoinRecordStore = (*CoinRecordStore)(nil)

// Prepend adds rec at the front. Returns ErrDuplicateKey if rec.ID exists.
func (s *CoinRecordStore) Prepend(_ context.Context, rec *domain.CreatedCoinRecord) error {
	if err := storage.ValidateRecord(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[rec.ID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	s.data = append([]*domain.CreatedCoinRecord{rec.Clone()}, s.data...)
	s.ids[rec.ID] = struct{}{}
	return nil
}

// List returns copies of all records, most recent first.
func (s *CoinRecordStore) List(_ context.Context) ([]*domain.CreatedCoinRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CreatedCoinRecord, 0, len(s.data))
	for _, rec := range s.data {
		result = append(result, rec.Clone())
	}
	return result, nil
}

// GetByMint returns the most recent record for mint. Returns ErrNotFound if not exists.
func (s *CoinRecordStore) GetByMint(_ context.Context, mint string) (*domain.CreatedCoinRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.data {
		if rec.MintAddress == mint {
			return rec.Clone(), nil
		}
	}
	return nil, storage.ErrNotFound
}
