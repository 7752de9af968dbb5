package storage

import (
	"context"

	"go.uber.org/zap"

	"token-forge/internal/domain"
)

// Multi writes to a primary store and mirrors each record to secondary stores.
// Reads are served by the primary. Mirror failures are logged and never fail a write.
type Multi struct {
	primary CoinRecordStore
	mirrors []CoinRecordStore
	logger  *zap.Logger
}

// NewMulti creates a Multi. A nil logger discards logs.
func NewMulti(primary CoinRecordStore, logger *zap.Logger, mirrors ...CoinRecordStore) *Multi {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multi{primary: primary, mirrors: mirrors, logger: logger}
}

var _ CoinRecordStore = (*Multi)(nil)

// Prepend writes rec to the primary, then to every mirror.
func (m *Multi) Prepend(ctx context.Context, rec *domain.CreatedCoinRecord) error {
	if err := m.primary.Prepend(ctx, rec); err != nil {
		return err
	}
	for i, mirror := range m.mirrors {
		if err := mirror.Prepend(ctx, rec); err != nil {
			m.logger.Warn("mirror write failed",
				zap.Int("mirror", i),
				zap.String("record_id", rec.ID),
				zap.Error(err))
		}
	}
	return nil
}

// List reads from the primary.
func (m *Multi) List(ctx context.Context) ([]*domain.CreatedCoinRecord, error) {
	return m.primary.List(ctx)
}

// GetByMint reads from the primary.
func (m *Multi) GetByMint(ctx context.Context, mint string) (*domain.CreatedCoinRecord, error) {
	return m.primary.GetByMint(ctx, mint)
}
