package domain

// MetadataDocument is the off-chain token metadata JSON (Metaplex fungible standard).
// Pinned to IPFS; its gateway URL becomes the on-chain uri.
type MetadataDocument struct {
	Name        string              `json:"name"`
	Symbol      string              `json:"symbol"`
	Description string              `json:"description"`
	Image       string              `json:"image,omitempty"`
	ExternalURL string              `json:"external_url,omitempty"`
	Attributes  []MetadataAttribute `json:"attributes"`
	Properties  MetadataProperties  `json:"properties"`
	Extensions  map[string]string   `json:"extensions,omitempty"` // platform -> url
}

// MetadataAttribute is one trait_type/value pair.
type MetadataAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// MetadataProperties holds files, category and creators.
type MetadataProperties struct {
	Files    []MetadataFile    `json:"files"`
	Category string            `json:"category"`
	Creators []MetadataCreator `json:"creators"`
}

// MetadataFile references an attached file.
type MetadataFile struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// MetadataCreator is a creator entry; shares across creators sum to 100.
type MetadataCreator struct {
	Address string `json:"address"`
	Share   int    `json:"share"`
}
