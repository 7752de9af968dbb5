// Package fees computes the service fee charged for a token creation.
// Display and the payment instruction both go through Calculate and ToLamports.
package fees

import (
	"github.com/shopspring/decimal"

	"token-forge/internal/domain"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// Schedule holds the fee components in SOL.
type Schedule struct {
	Base          decimal.Decimal
	RevokeMint    decimal.Decimal
	RevokeUpdate  decimal.Decimal
	RevokeFreeze  decimal.Decimal
	SocialsUpdate decimal.Decimal
}

// DefaultSchedule charges 0.1 SOL for the base creation and each option.
var DefaultSchedule = Schedule{
	Base:          decimal.RequireFromString("0.1"),
	RevokeMint:    decimal.RequireFromString("0.1"),
	RevokeUpdate:  decimal.RequireFromString("0.1"),
	RevokeFreeze:  decimal.RequireFromString("0.1"),
	SocialsUpdate: decimal.RequireFromString("0.1"),
}

// Line is one row of a fee breakdown.
type Line struct {
	Label  string
	Amount decimal.Decimal
}

// Breakdown lists the components that apply to params, base first.
func Breakdown(s Schedule, p *domain.CoinCreationParams) []Line {
	lines := []Line{{Label: "Base creation", Amount: s.Base}}
	if p.RevokeMint {
		lines = append(lines, Line{Label: "Revoke mint authority", Amount: s.RevokeMint})
	}
	if p.RevokeUpdate {
		lines = append(lines, Line{Label: "Revoke update authority", Amount: s.RevokeUpdate})
	}
	if p.RevokeFreeze {
		lines = append(lines, Line{Label: "Revoke freeze authority", Amount: s.RevokeFreeze})
	}
	// One surcharge covers socials and creator info together.
	if len(p.Socials) > 0 || p.HasCreatorInfo() {
		lines = append(lines, Line{Label: "Socials & creator info", Amount: s.SocialsUpdate})
	}
	return lines
}

// Calculate returns the total fee in SOL rounded to 2 decimal places.
func Calculate(s Schedule, p *domain.CoinCreationParams) decimal.Decimal {
	return Sum(Breakdown(s, p))
}

// Sum totals a breakdown, rounded to 2 decimal places.
func Sum(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total.Round(2)
}

// ToLamports converts a SOL amount to lamports. Negative amounts yield 0.
func ToLamports(sol decimal.Decimal) uint64 {
	if sol.IsNegative() {
		return 0
	}
	return uint64(sol.Shift(9).Round(0).IntPart())
}

// FromLamports converts lamports to SOL.
func FromLamports(lamports uint64) decimal.Decimal {
	return decimal.NewFromInt(int64(lamports)).Shift(-9)
}

// ParseSchedule overrides the components of base that are non-empty strings.
func ParseSchedule(base Schedule, baseFee, revokeMint, revokeUpdate, revokeFreeze, socials string) (Schedule, error) {
	out := base
	for _, f := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{baseFee, &out.Base},
		{revokeMint, &out.RevokeMint},
		{revokeUpdate, &out.RevokeUpdate},
		{revokeFreeze, &out.RevokeFreeze},
		{socials, &out.SocialsUpdate},
	} {
		if f.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return Schedule{}, err
		}
		*f.dst = d
	}
	return out, nil
}
