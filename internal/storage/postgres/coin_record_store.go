package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"token-forge/internal/domain"
	"token-forge/internal/storage"
)

// CoinRecordStore implements storage.CoinRecordStore using PostgreSQL.
type CoinRecordStore struct {
	pool *Pool
}

// NewCoinRecordStore creates a new CoinRecordStore.
func NewCoinRecordStore(pool *Pool) *CoinRecordStore {
	return &CoinRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CoinRecordStore = (*CoinRecordStore)(nil)

const selectColumns = `
	id, name, symbol, supply::text, decimals, mint_address, transaction_id,
	socials, created_at, has_metadata, metadata_uri
`

// Prepend inserts rec. Returns ErrDuplicateKey if id exists.
// Ordering is by created_at, so "prepend" holds for records created in sequence.
func (s *CoinRecordStore) Prepend(ctx context.Context, rec *domain.CreatedCoinRecord) error {
	if err := storage.ValidateRecord(rec); err != nil {
		return err
	}

	socials, err := json.Marshal(socialsOrEmpty(rec.Socials))
	if err != nil {
		return fmt.Errorf("marshal socials: %w", err)
	}

	query := `
		INSERT INTO created_coins (
			id, name, symbol, supply, decimals, mint_address, transaction_id,
			socials, created_at, has_metadata, metadata_uri
		) VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8::jsonb, $9, $10, $11)
	`

	_, err = s.pool.Exec(ctx, query,
		rec.ID,
		rec.Name,
		rec.Symbol,
		strconv.FormatUint(rec.Supply, 10),
		int16(rec.Decimals),
		rec.MintAddress,
		rec.TransactionID,
		string(socials),
		rec.CreatedAt,
		rec.HasMetadata,
		rec.MetadataURI,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert created coin: %w", err)
	}
	return nil
}

// List returns all records, most recent first.
func (s *CoinRecordStore) List(ctx context.Context) ([]*domain.CreatedCoinRecord, error) {
	query := `SELECT ` + selectColumns + `
		FROM created_coins
		ORDER BY created_at DESC, inserted_at DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list created coins: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByMint retrieves the most recent record for mint. Returns ErrNotFound if not exists.
func (s *CoinRecordStore) GetByMint(ctx context.Context, mint string) (*domain.CreatedCoinRecord, error) {
	query := `SELECT ` + selectColumns + `
		FROM created_coins
		WHERE mint_address = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	rec, err := scanRecord(s.pool.QueryRow(ctx, query, mint))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get created coin by mint: %w", err)
	}
	return rec, nil
}

func socialsOrEmpty(s domain.SocialLinks) domain.SocialLinks {
	if s == nil {
		return domain.SocialLinks{}
	}
	return s
}

// scanRecord scans a single row into a CreatedCoinRecord.
func scanRecord(row pgx.Row) (*domain.CreatedCoinRecord, error) {
	var (
		r        domain.CreatedCoinRecord
		supply   string
		decimals int16
		socials  []byte
	)

	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Symbol,
		&supply,
		&decimals,
		&r.MintAddress,
		&r.TransactionID,
		&socials,
		&r.CreatedAt,
		&r.HasMetadata,
		&r.MetadataURI,
	)
	if err != nil {
		return nil, err
	}

	r.Supply, err = strconv.ParseUint(supply, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse supply %q: %w", supply, err)
	}
	r.Decimals = uint8(decimals)
	if len(socials) > 0 {
		if err := json.Unmarshal(socials, &r.Socials); err != nil {
			return nil, fmt.Errorf("decode socials: %w", err)
		}
	}
	return &r, nil
}

// scanRecords scans multiple rows into a slice of CreatedCoinRecord.
func scanRecords(rows pgx.Rows) ([]*domain.CreatedCoinRecord, error) {
	var records []*domain.CreatedCoinRecord

	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan created coin row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate created coin rows: %w", err)
	}

	return records, nil
}
