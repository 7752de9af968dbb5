package slot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"token-forge/internal/domain"
	"token-forge/internal/storage"
)

// Store implements storage.CoinRecordStore on top of a Slot.
// Read-modify-write is serialized within the process only; two processes
// sharing a slot race and the last write wins.
type Store struct {
	mu     sync.Mutex
	slot   Slot
	logger *zap.Logger
}

// NewStore creates a Store. A nil logger discards logs.
func NewStore(s Slot, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{slot: s, logger: logger}
}

// Compile-time interface check.
var _ storage.CoinRecordStore = (*Store)(nil)

// load reads the list. Content that does not parse is treated as an empty list.
func (s *Store) load(ctx context.Context) ([]*domain.CreatedCoinRecord, error) {
	data, err := s.slot.Read(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []*domain.CreatedCoinRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("created coins slot is corrupt, treating as empty", zap.Error(err))
		return nil, nil
	}
	return records, nil
}

// Prepend puts rec at the front of the list and writes it back.
func (s *Store) Prepend(ctx context.Context, rec *domain.CreatedCoinRecord) error {
	if err := storage.ValidateRecord(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r != nil && r.ID == rec.ID {
			return storage.ErrDuplicateKey
		}
	}

	records = append([]*domain.CreatedCoinRecord{rec}, records...)
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal created coins: %w", err)
	}
	return s.slot.Write(ctx, data)
}

// List returns the records, most recent first.
func (s *Store) List(ctx context.Context) ([]*domain.CreatedCoinRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.CreatedCoinRecord, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// GetByMint returns the most recent record for mint.
func (s *Store) GetByMint(ctx context.Context, mint string) (*domain.CreatedCoinRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.MintAddress == mint {
			return r, nil
		}
	}
	return nil, storage.ErrNotFound
}
