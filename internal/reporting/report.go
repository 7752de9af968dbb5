// Package reporting renders the created-coins list for terminals and spreadsheets.
package reporting

import (
	"strings"
	"time"

	"token-forge/internal/domain"
	"token-forge/internal/solana"
)

// Report is the created-coins view.
type Report struct {
	GeneratedAt time.Time
	Cluster     solana.Cluster
	Rows        []CoinRow

	// Summary
	Total        int
	WithMetadata int
}

// CoinRow is one created coin with its explorer links.
type CoinRow struct {
	CreatedAt     time.Time
	Name          string
	Symbol        string
	Supply        uint64
	Decimals      uint8
	MintAddress   string
	TransactionID string
	HasMetadata   bool
	MetadataURI   string
	Socials       string // platform=url pairs joined by spaces
	MintURL       string
	TxURL         string
}

// Build creates a Report from records in the order given (most recent first).
func Build(records []*domain.CreatedCoinRecord, cluster solana.Cluster, now time.Time) *Report {
	r := &Report{
		GeneratedAt: now.UTC(),
		Cluster:     cluster,
		Rows:        make([]CoinRow, 0, len(records)),
		Total:       len(records),
	}

	for _, rec := range records {
		socials := make([]string, 0, len(rec.Socials))
		for _, l := range rec.Socials {
			socials = append(socials, string(l.Platform)+"="+l.URL)
		}
		if rec.HasMetadata {
			r.WithMetadata++
		}

		r.Rows = append(r.Rows, CoinRow{
			CreatedAt:     time.UnixMilli(rec.CreatedAt).UTC(),
			Name:          rec.Name,
			Symbol:        rec.Symbol,
			Supply:        rec.Supply,
			Decimals:      rec.Decimals,
			MintAddress:   rec.MintAddress,
			TransactionID: rec.TransactionID,
			HasMetadata:   rec.HasMetadata,
			MetadataURI:   rec.MetadataURI,
			Socials:       strings.Join(socials, " "),
			MintURL:       cluster.ExplorerAddressURL(rec.MintAddress),
			TxURL:         cluster.ExplorerTxURL(rec.TransactionID),
		})
	}

	return r
}
