package storage

import (
	"context"

	"token-forge/internal/domain"
)

// CoinRecordStore provides access to the created-coins list.
type CoinRecordStore interface {
	// Prepend adds rec as the most recent record. Returns ErrDuplicateKey if rec.ID exists.
	Prepend(ctx context.Context, rec *domain.CreatedCoinRecord) error

	// List returns all records, most recent first.
	List(ctx context.Context) ([]*domain.CreatedCoinRecord, error)

	// GetByMint retrieves the record for a mint address. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint string) (*domain.CreatedCoinRecord, error)
}

// ValidateRecord checks the fields every backend relies on.
func ValidateRecord(rec *domain.CreatedCoinRecord) error {
	if rec == nil || rec.ID == "" || rec.MintAddress == "" {
		return ErrInvalidInput
	}
	return nil
}
