package fees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-forge/internal/domain"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name   string
		params domain.CoinCreationParams
		want   string
	}{
		{"base only", domain.CoinCreationParams{}, "0.1"},
		{"revoke mint", domain.CoinCreationParams{RevokeMint: true}, "0.2"},
		{"all revokes", domain.CoinCreationParams{RevokeMint: true, RevokeUpdate: true, RevokeFreeze: true}, "0.4"},
		{"socials", domain.CoinCreationParams{
			Socials: domain.SocialLinks{{Platform: domain.PlatformWebsite, URL: "https://a.example"}},
		}, "0.2"},
		{"creator info only", domain.CoinCreationParams{AuthorName: "satoshi"}, "0.2"},
		{"socials and creator share one surcharge", domain.CoinCreationParams{
			AuthorEmail: "a@b.c",
			Socials:     domain.SocialLinks{{Platform: domain.PlatformWebsite, URL: "https://a.example"}},
		}, "0.2"},
		{"everything", domain.CoinCreationParams{
			RevokeMint: true, RevokeUpdate: true, RevokeFreeze: true, AuthorName: "x",
		}, "0.5"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Calculate(DefaultSchedule, &tc.params)
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestCalculate_RoundsToCents(t *testing.T) {
	s := DefaultSchedule
	s.Base = decimal.RequireFromString("0.123")
	got := Calculate(s, &domain.CoinCreationParams{})
	assert.Equal(t, "0.12", got.String())
}

func TestToLamports(t *testing.T) {
	assert.Equal(t, uint64(200_000_000), ToLamports(decimal.RequireFromString("0.2")))
	assert.Equal(t, uint64(400_000_000), ToLamports(decimal.RequireFromString("0.4")))
	assert.Equal(t, uint64(0), ToLamports(decimal.RequireFromString("-1")))
	assert.Equal(t, "0.1", FromLamports(100_000_000).String())
}

func TestParseSchedule(t *testing.T) {
	s, err := ParseSchedule(DefaultSchedule, "0.05", "", "", "", "0")
	require.NoError(t, err)
	assert.Equal(t, "0.05", s.Base.String())
	assert.Equal(t, "0.1", s.RevokeMint.String())
	assert.True(t, s.SocialsUpdate.IsZero())

	_, err = ParseSchedule(DefaultSchedule, "abc", "", "", "", "")
	assert.Error(t, err)
}
