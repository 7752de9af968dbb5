package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Created Coins\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Cluster: %s | Coins: %d | With metadata: %d\n\n", r.Cluster, r.Total, r.WithMetadata))

	if len(r.Rows) == 0 {
		sb.WriteString("No coins created yet.\n")
		return sb.String()
	}

	sb.WriteString("| Created | Name | Symbol | Supply | Decimals | Mint | Transaction | Metadata |\n")
	sb.WriteString("|---------|------|--------|--------|----------|------|-------------|----------|\n")
	for _, row := range r.Rows {
		metadata := "no"
		if row.HasMetadata {
			metadata = "yes"
			if row.MetadataURI != "" {
				metadata = fmt.Sprintf("[yes](%s)", row.MetadataURI)
			}
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %d | [%s](%s) | [%s](%s) | %s |\n",
			row.CreatedAt.Format("2006-01-02 15:04"),
			escapeCell(row.Name), escapeCell(row.Symbol),
			row.Supply, row.Decimals,
			short(row.MintAddress), row.MintURL,
			short(row.TransactionID), row.TxURL,
			metadata))
	}
	sb.WriteString("\n")

	// Socials are listed separately to keep the table narrow
	var withSocials []CoinRow
	for _, row := range r.Rows {
		if row.Socials != "" {
			withSocials = append(withSocials, row)
		}
	}
	if len(withSocials) > 0 {
		sb.WriteString("## Social Links\n\n")
		for _, row := range withSocials {
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", escapeCell(row.Symbol), row.Socials))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// short abbreviates a base58 string as ABCD...WXYZ.
func short(s string) string {
	if len(s) <= 12 {
		return s
	}
	return s[:4] + "..." + s[len(s)-4:]
}
