// Package metadata publishes off-chain token metadata and registers it on chain.
package metadata

import (
	"strconv"

	"token-forge/internal/domain"
)

// ImageMIMEType is the file type recorded for the token image.
const ImageMIMEType = "image/png"

// BuildDocument assembles the off-chain metadata JSON for p.
// creator is the payer address and receives the full creator share.
func BuildDocument(p *domain.CoinCreationParams, imageURL, creator string) domain.MetadataDocument {
	author := p.AuthorName
	if author == "" {
		author = "Anonymous"
	}

	doc := domain.MetadataDocument{
		Name:        p.Name,
		Symbol:      p.Symbol,
		Description: p.Description,
		Image:       imageURL,
		Attributes: []domain.MetadataAttribute{
			{TraitType: "Total Supply", Value: strconv.FormatUint(p.Supply, 10)},
			{TraitType: "Decimals", Value: strconv.Itoa(int(p.Decimals))},
			{TraitType: "Creator", Value: author},
		},
		Properties: domain.MetadataProperties{
			Files:    []domain.MetadataFile{},
			Category: "image",
			Creators: []domain.MetadataCreator{{Address: creator, Share: 100}},
		},
	}
	if imageURL != "" {
		doc.Properties.Files = append(doc.Properties.Files, domain.MetadataFile{URI: imageURL, Type: ImageMIMEType})
	}

	for _, l := range p.Socials {
		if doc.Extensions == nil {
			doc.Extensions = make(map[string]string)
		}
		// First link per platform wins.
		if _, ok := doc.Extensions[string(l.Platform)]; !ok {
			doc.Extensions[string(l.Platform)] = l.URL
		}
		if l.Platform == domain.PlatformWebsite && doc.ExternalURL == "" {
			doc.ExternalURL = l.URL
		}
	}
	return doc
}
