package reporting

import (
	"strings"
	"testing"
	"time"

	"token-forge/internal/domain"
	"token-forge/internal/solana"
)

func sampleRecords() []*domain.CreatedCoinRecord {
	return []*domain.CreatedCoinRecord{
		{
			Name:          "Solana Doge",
			Symbol:        "SDOGE",
			Supply:        1_000_000_000,
			Decimals:      9,
			MintAddress:   "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
			TransactionID: "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnb",
			CreatedAt:     1704067200000,
			HasMetadata:   true,
			MetadataURI:   "https://gateway.pinata.cloud/ipfs/bafy",
			Socials:       domain.SocialLinks{{Platform: domain.PlatformTwitter, URL: "https://x.com/sdoge"}},
		},
		{
			Name:          "Pipe, Coin",
			Symbol:        "P|C",
			Supply:        5,
			MintAddress:   "So11111111111111111111111111111111111111112",
			TransactionID: "sig2",
			CreatedAt:     1704000000000,
		},
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	r := Build(sampleRecords(), solana.Devnet, now)

	if r.Total != 2 || r.WithMetadata != 1 {
		t.Errorf("summary = %d/%d, want 2/1", r.Total, r.WithMetadata)
	}
	want := "https://explorer.solana.com/address/7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU?cluster=devnet"
	if r.Rows[0].MintURL != want {
		t.Errorf("MintURL = %s, want %s", r.Rows[0].MintURL, want)
	}
	if r.Rows[0].Socials != "twitter=https://x.com/sdoge" {
		t.Errorf("Socials = %q", r.Rows[0].Socials)
	}
	if !r.Rows[0].CreatedAt.Equal(time.UnixMilli(1704067200000)) {
		t.Errorf("CreatedAt = %v", r.Rows[0].CreatedAt)
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(Build(sampleRecords(), solana.Devnet, time.Now()))

	for _, want := range []string{
		"# Created Coins",
		"Cluster: devnet | Coins: 2 | With metadata: 1",
		"[7xKX...gAsU](https://explorer.solana.com/address/7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU?cluster=devnet)",
		"[yes](https://gateway.pinata.cloud/ipfs/bafy)",
		`P\|C`,
		"## Social Links",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(Build(nil, solana.Mainnet, time.Now()))
	if !strings.Contains(md, "No coins created yet.") {
		t.Errorf("unexpected markdown:\n%s", md)
	}
}

func TestRenderCSV(t *testing.T) {
	out, err := RenderCSV(Build(sampleRecords(), solana.Devnet, time.Now()))
	if err != nil {
		t.Fatalf("RenderCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "created_at,name,symbol,supply") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[2], `"Pipe, Coin"`) {
		t.Errorf("comma in name not quoted: %s", lines[2])
	}
}
