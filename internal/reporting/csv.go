package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"
	"time"
)

// RenderCSV renders the report rows as CSV string.
func RenderCSV(r *Report) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// Header
	header := []string{
		"created_at", "name", "symbol", "supply", "decimals", "mint_address",
		"transaction_id", "has_metadata", "metadata_uri", "socials", "explorer_url",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	// Rows
	for _, row := range r.Rows {
		err := w.Write([]string{
			row.CreatedAt.Format(time.RFC3339),
			row.Name,
			row.Symbol,
			strconv.FormatUint(row.Supply, 10),
			strconv.Itoa(int(row.Decimals)),
			row.MintAddress,
			row.TransactionID,
			strconv.FormatBool(row.HasMetadata),
			row.MetadataURI,
			row.Socials,
			row.MintURL,
		})
		if err != nil {
			return "", err
		}
	}

	w.Flush()
	return sb.String(), w.Error()
}
