package domain

import (
	"fmt"
	"math/big"
	"strings"

	"token-forge/internal/apperr"
)

// Limits on user supplied token parameters.
const (
	MaxDecimals     = 9
	MaxSymbolLength = 10
	// MaxNameLength matches the metadata program's name field.
	MaxNameLength = 32
)

// ImageFile is an optional token image supplied with the parameters.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// CoinCreationParams holds everything the user chose for one token.
// A run works on its own copy; see Clone.
type CoinCreationParams struct {
	Name        string
	Symbol      string
	Description string
	Supply      uint64
	Decimals    uint8
	Image       *ImageFile

	RevokeMint   bool
	RevokeUpdate bool
	RevokeFreeze bool

	Socials     SocialLinks
	AuthorName  string
	AuthorEmail string

	IncludeMetadata bool
}

// NormalizeSymbol upper-cases s and truncates it to MaxSymbolLength characters.
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	r := []rune(s)
	if len(r) > MaxSymbolLength {
		r = r[:MaxSymbolLength]
	}
	return string(r)
}

// Normalize trims the name and normalizes the symbol in place.
func (p *CoinCreationParams) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Symbol = NormalizeSymbol(p.Symbol)
	p.Description = strings.TrimSpace(p.Description)
	p.AuthorName = strings.TrimSpace(p.AuthorName)
	p.AuthorEmail = strings.TrimSpace(p.AuthorEmail)
}

// Validate checks required fields and ranges.
func (p *CoinCreationParams) Validate() error {
	const op = "validate"

	if strings.TrimSpace(p.Name) == "" {
		return apperr.New(apperr.KindValidation, op, "token name is required")
	}
	if len([]rune(p.Name)) > MaxNameLength {
		return apperr.Newf(apperr.KindValidation, op, "token name must be at most %d characters", MaxNameLength)
	}
	if strings.TrimSpace(p.Symbol) == "" {
		return apperr.New(apperr.KindValidation, op, "token symbol is required")
	}
	if p.Supply == 0 {
		return apperr.New(apperr.KindValidation, op, "supply must be a positive integer")
	}
	if p.Decimals > MaxDecimals {
		return apperr.Newf(apperr.KindValidation, op, "decimals must be between 0 and %d", MaxDecimals)
	}
	for _, l := range p.Socials {
		if err := l.Validate(); err != nil {
			return apperr.Wrap(apperr.KindValidation, op, err)
		}
	}
	if _, err := p.BaseUnitsUint64(); err != nil {
		return apperr.Wrap(apperr.KindValidation, op, err)
	}
	return nil
}

// HasCreatorInfo reports whether author name or email was provided.
func (p *CoinCreationParams) HasCreatorInfo() bool {
	return strings.TrimSpace(p.AuthorName) != "" || strings.TrimSpace(p.AuthorEmail) != ""
}

// BaseUnits returns supply * 10^decimals computed exactly.
func (p *CoinCreationParams) BaseUnits() *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(p.Decimals)), nil)
	return new(big.Int).Mul(new(big.Int).SetUint64(p.Supply), scale)
}

// BaseUnitsUint64 returns BaseUnits as the u64 amount the token program accepts.
func (p *CoinCreationParams) BaseUnitsUint64() (uint64, error) {
	units := p.BaseUnits()
	if !units.IsUint64() {
		return 0, fmt.Errorf("supply %d with %d decimals exceeds the maximum token amount", p.Supply, p.Decimals)
	}
	return units.Uint64(), nil
}

// Clone returns a deep copy so a running workflow is isolated from later edits.
func (p *CoinCreationParams) Clone() *CoinCreationParams {
	c := *p
	if p.Image != nil {
		img := *p.Image
		img.Data = append([]byte(nil), p.Image.Data...)
		c.Image = &img
	}
	c.Socials = append(SocialLinks(nil), p.Socials...)
	return &c
}
