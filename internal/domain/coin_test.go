package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-forge/internal/apperr"
)

func validParams() *CoinCreationParams {
	return &CoinCreationParams{
		Name:     "Solana Doge",
		Symbol:   "SDOGE",
		Supply:   1_000_000_000,
		Decimals: 9,
	}
}

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sdoge", "SDOGE"},
		{"  abc ", "ABC"},
		{"verylongsymbol", "VERYLONGSY"},
		{"ñandú", "ÑANDÚ"},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeSymbol(tc.in), tc.in)
	}
}

func TestCoinCreationParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *CoinCreationParams)
		ok     bool
	}{
		{"valid", func(p *CoinCreationParams) {}, true},
		{"missing name", func(p *CoinCreationParams) { p.Name = "  " }, false},
		{"missing symbol", func(p *CoinCreationParams) { p.Symbol = "" }, false},
		{"zero supply", func(p *CoinCreationParams) { p.Supply = 0 }, false},
		{"decimals too high", func(p *CoinCreationParams) { p.Decimals = 10 }, false},
		{"decimals zero", func(p *CoinCreationParams) { p.Decimals = 0 }, true},
		{"overflowing supply", func(p *CoinCreationParams) { p.Supply = 1 << 62 }, false},
		{"bad social", func(p *CoinCreationParams) {
			p.Socials = SocialLinks{{Platform: PlatformTwitter, URL: "twitter.com/x"}}
		}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams()
			tc.mutate(p)
			err := p.Validate()
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestBaseUnits_Exact(t *testing.T) {
	p := validParams()

	want, _ := new(big.Int).SetString("1000000000000000000", 10)
	assert.Equal(t, 0, want.Cmp(p.BaseUnits()))

	units, err := p.BaseUnitsUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000_000_000_000), units)
}

func TestBaseUnitsUint64_Overflow(t *testing.T) {
	p := validParams()
	p.Supply = 100_000_000_000

	_, err := p.BaseUnitsUint64()
	assert.Error(t, err)
}

func TestHasCreatorInfo(t *testing.T) {
	p := validParams()
	assert.False(t, p.HasCreatorInfo())

	p.AuthorEmail = "dev@example.com"
	assert.True(t, p.HasCreatorInfo())
}

func TestClone_IsIndependent(t *testing.T) {
	p := validParams()
	p.Image = &ImageFile{Name: "logo.png", ContentType: "image/png", Data: []byte{1, 2, 3}}
	require.NoError(t, p.Socials.Add(SocialLink{Platform: PlatformWebsite, URL: "https://doge.example"}))

	c := p.Clone()
	p.Name = "changed"
	p.Image.Data[0] = 9
	p.Socials[0].URL = "https://other.example"

	assert.Equal(t, "Solana Doge", c.Name)
	assert.Equal(t, byte(1), c.Image.Data[0])
	assert.Equal(t, "https://doge.example", c.Socials[0].URL)
}
