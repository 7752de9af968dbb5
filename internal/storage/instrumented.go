package storage

import (
	"context"
	"errors"
	"time"

	"token-forge/internal/domain"
)

// QueryObserver receives the duration and result of every store call.
type QueryObserver func(database, operation string, d time.Duration, err error)

// Instrumented reports each call on an inner store to an observer.
type Instrumented struct {
	inner    CoinRecordStore
	database string
	observe  QueryObserver
}

// NewInstrumented wraps inner. database labels the backend (postgres, clickhouse, sqlite...).
func NewInstrumented(inner CoinRecordStore, database string, observe QueryObserver) *Instrumented {
	return &Instrumented{inner: inner, database: database, observe: observe}
}

var _ CoinRecordStore = (*Instrumented)(nil)

func (s *Instrumented) Prepend(ctx context.Context, rec *domain.CreatedCoinRecord) error {
	start := time.Now()
	err := s.inner.Prepend(ctx, rec)
	s.report("prepend", start, err)
	return err
}

func (s *Instrumented) List(ctx context.Context) ([]*domain.CreatedCoinRecord, error) {
	start := time.Now()
	recs, err := s.inner.List(ctx)
	s.report("list", start, err)
	return recs, err
}

func (s *Instrumented) GetByMint(ctx context.Context, mint string) (*domain.CreatedCoinRecord, error) {
	start := time.Now()
	rec, err := s.inner.GetByMint(ctx, mint)
	// A missing mint is an answer, not a failed query.
	if errors.Is(err, ErrNotFound) {
		s.report("get_by_mint", start, nil)
	} else {
		s.report("get_by_mint", start, err)
	}
	return rec, err
}

func (s *Instrumented) report(op string, start time.Time, err error) {
	if s.observe != nil {
		s.observe(s.database, op, time.Since(start), err)
	}
}
