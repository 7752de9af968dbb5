package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"token-forge/internal/domain"
)

// socialsFlag collects repeated --social platform=url values.
type socialsFlag struct {
	links domain.SocialLinks
}

func (s *socialsFlag) String() string {
	parts := make([]string, 0, len(s.links))
	for _, l := range s.links {
		parts = append(parts, string(l.Platform)+"="+l.URL)
	}
	return strings.Join(parts, ",")
}

func (s *socialsFlag) Set(v string) error {
	name, url, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("expected platform=url, got %q", v)
	}
	platform, err := domain.ParseSocialPlatform(name)
	if err != nil {
		return err
	}
	return s.links.Add(domain.SocialLink{Platform: platform, URL: url})
}

type paramsFlags struct {
	name, symbol, description string
	supply                    uint64
	decimals                  uint
	image                     string
	revokeMint                bool
	revokeUpdate              bool
	revokeFreeze              bool
	socials                   socialsFlag
	author, email             string
	metadata                  bool
}

func addParamsFlags(fs *flag.FlagSet) *paramsFlags {
	pf := &paramsFlags{}
	fs.StringVar(&pf.name, "name", "", "Token name")
	fs.StringVar(&pf.symbol, "symbol", "", "Token symbol (upper-cased, at most 10 characters)")
	fs.StringVar(&pf.description, "description", "", "Token description")
	fs.Uint64Var(&pf.supply, "supply", 1_000_000_000, "Initial supply in whole tokens")
	fs.UintVar(&pf.decimals, "decimals", 9, "Decimal places (0-9)")
	fs.StringVar(&pf.image, "image", "", "Path to the token image")
	fs.BoolVar(&pf.revokeMint, "revoke-mint", false, "Revoke the mint authority")
	fs.BoolVar(&pf.revokeUpdate, "revoke-update", false, "Make the metadata immutable")
	fs.BoolVar(&pf.revokeFreeze, "revoke-freeze", false, "Create the mint without a freeze authority")
	fs.Var(&pf.socials, "social", "Social link as platform=url (repeatable)")
	fs.StringVar(&pf.author, "author", "", "Creator name")
	fs.StringVar(&pf.email, "email", "", "Creator email")
	fs.BoolVar(&pf.metadata, "metadata", true, "Upload metadata and register it on chain")
	return pf
}

// paramsForQuote builds params without reading the image.
func (pf *paramsFlags) paramsForQuote() (*domain.CoinCreationParams, error) {
	if pf.decimals > domain.MaxDecimals {
		return nil, fmt.Errorf("decimals must be between 0 and %d", domain.MaxDecimals)
	}
	return &domain.CoinCreationParams{
		Name:            pf.name,
		Symbol:          pf.symbol,
		Description:     pf.description,
		Supply:          pf.supply,
		Decimals:        uint8(pf.decimals),
		RevokeMint:      pf.revokeMint,
		RevokeUpdate:    pf.revokeUpdate,
		RevokeFreeze:    pf.revokeFreeze,
		Socials:         pf.socials.links,
		AuthorName:      pf.author,
		AuthorEmail:     pf.email,
		IncludeMetadata: pf.metadata,
	}, nil
}

func (pf *paramsFlags) params() (*domain.CoinCreationParams, error) {
	p, err := pf.paramsForQuote()
	if err != nil {
		return nil, err
	}
	if pf.image == "" {
		return p, nil
	}
	data, err := os.ReadFile(pf.image)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	p.Image = &domain.ImageFile{
		Name:        filepath.Base(pf.image),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}
	return p, nil
}

func nowUTC() time.Time { return time.Now().UTC() }
