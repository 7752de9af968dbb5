package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"

	"token-forge/internal/domain"
	"token-forge/internal/storage"
)

// CoinRecordStore implements storage.CoinRecordStore using ClickHouse.
// MergeTree does not enforce keys, so Prepend checks for an existing id first.
type CoinRecordStore struct {
	conn *Conn
}

// NewCoinRecordStore creates a new CoinRecordStore.
func NewCoinRecordStore(conn *Conn) *CoinRecordStore {
	return &CoinRecordStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CoinRecordStore = (*CoinRecordStore)(nil)

// Prepend inserts rec. Returns ErrDuplicateKey if id exists.
func (s *CoinRecordStore) Prepend(ctx context.Context, rec *domain.CreatedCoinRecord) error {
	if err := storage.ValidateRecord(rec); err != nil {
		return err
	}

	exists, err := s.exists(ctx, rec.ID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	socials := domain.SocialLinks{}
	if rec.Socials != nil {
		socials = rec.Socials
	}
	socialsJSON, err := json.Marshal(socials)
	if err != nil {
		return fmt.Errorf("marshal socials: %w", err)
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO created_coins (
			id, name, symbol, supply, decimals, mint_address, transaction_id,
			socials, created_at, has_metadata, metadata_uri
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		rec.ID, rec.Name, rec.Symbol, rec.Supply, rec.Decimals, rec.MintAddress,
		rec.TransactionID, string(socialsJSON), rec.CreatedAt, rec.HasMetadata, rec.MetadataURI,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// List returns all records, most recent first.
func (s *CoinRecordStore) List(ctx context.Context) ([]*domain.CreatedCoinRecord, error) {
	query := `
		SELECT id, name, symbol, supply, decimals, mint_address, transaction_id,
		       socials, created_at, has_metadata, metadata_uri
		FROM created_coins FINAL
		ORDER BY created_at DESC, id ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query created coins: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByMint retrieves the most recent record for mint. Returns ErrNotFound if not exists.
func (s *CoinRecordStore) GetByMint(ctx context.Context, mint string) (*domain.CreatedCoinRecord, error) {
	query := `
		SELECT id, name, symbol, supply, decimals, mint_address, transaction_id,
		       socials, created_at, has_metadata, metadata_uri
		FROM created_coins FINAL
		WHERE mint_address = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query by mint: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	return records[0], nil
}

// exists checks if a record with the given id exists.
func (s *CoinRecordStore) exists(ctx context.Context, id string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM created_coins WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanRecords scans multiple rows.
func scanRecords(rows chRows) ([]*domain.CreatedCoinRecord, error) {
	var records []*domain.CreatedCoinRecord

	for rows.Next() {
		var r domain.CreatedCoinRecord
		var socials string

		err := rows.Scan(
			&r.ID, &r.Name, &r.Symbol, &r.Supply, &r.Decimals, &r.MintAddress,
			&r.TransactionID, &socials, &r.CreatedAt, &r.HasMetadata, &r.MetadataURI,
		)
		if err != nil {
			return nil, fmt.Errorf("scan created coin row: %w", err)
		}
		if socials != "" {
			if err := json.Unmarshal([]byte(socials), &r.Socials); err != nil {
				return nil, fmt.Errorf("decode socials: %w", err)
			}
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate created coin rows: %w", err)
	}

	return records, nil
}
