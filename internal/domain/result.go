package domain

import "token-forge/internal/apperr"

// ValidationOutcome describes how a pinned resource was checked.
type ValidationOutcome string

const (
	ValidationSkipped     ValidationOutcome = "SKIPPED"
	ValidationValid       ValidationOutcome = "VALID"
	ValidationUnvalidated ValidationOutcome = "UNVALIDATED" // every gateway failed, accepted by policy
)

// CreationResult is the outcome of one creation run.
// Success refers to the mint; metadata failures leave Success true with HasMetadata false.
type CreationResult struct {
	RunID   string `json:"run_id"`
	Success bool   `json:"success"`

	MintAddress       string `json:"mint_address,omitempty"`
	MintSignature     string `json:"mint_signature,omitempty"`
	MetadataSignature string `json:"metadata_signature,omitempty"`
	RevokeSignature   string `json:"revoke_signature,omitempty"`

	MetadataAddress    string            `json:"metadata_address,omitempty"`
	MetadataURI        string            `json:"metadata_uri,omitempty"`
	ImageURL           string            `json:"image_url,omitempty"`
	HasMetadata        bool              `json:"has_metadata"`
	MetadataValidation ValidationOutcome `json:"metadata_validation,omitempty"`
	MetadataError      *apperr.Error     `json:"metadata_error,omitempty"`

	Error *apperr.Error `json:"error,omitempty"`

	FeeSOL      string `json:"fee_sol"`
	FeeLamports uint64 `json:"fee_lamports"`
}

// CreatedCoinRecord is one persisted entry in the created-coins list.
type CreatedCoinRecord struct {
	ID            string      `json:"id"`            // sha256(mint|signature)
	Name          string      `json:"name"`
	Symbol        string      `json:"symbol"`
	Supply        uint64      `json:"supply"`
	Decimals      uint8       `json:"decimals"`
	MintAddress   string      `json:"mintAddress"`
	TransactionID string      `json:"transactionId"`
	Socials       SocialLinks `json:"socials"`
	CreatedAt     int64       `json:"createdAt"`     // Unix ms
	HasMetadata   bool        `json:"hasMetadata"`
	MetadataURI   string      `json:"metadataUri,omitempty"`
}

// Clone returns a copy that shares no slices with r.
func (r *CreatedCoinRecord) Clone() *CreatedCoinRecord {
	c := *r
	c.Socials = append(SocialLinks(nil), r.Socials...)
	return &c
}
