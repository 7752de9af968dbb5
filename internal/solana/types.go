package solana

// Commitment levels accepted by the RPC.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// Blockhash from getLatestBlockhash.
type Blockhash struct {
	Blockhash            string
	LastValidBlockHeight uint64
}

// SignatureStatus from getSignatureStatuses.
type SignatureStatus struct {
	Slot               uint64
	Confirmations      *uint64 // nil once rooted
	Err                interface{}
	ConfirmationStatus Commitment
}

// Reached reports whether the status is at least commitment c.
func (s *SignatureStatus) Reached(c Commitment) bool {
	if s == nil {
		return false
	}
	switch c {
	case CommitmentFinalized:
		return s.ConfirmationStatus == CommitmentFinalized
	case CommitmentConfirmed:
		return s.ConfirmationStatus == CommitmentConfirmed || s.ConfirmationStatus == CommitmentFinalized
	default:
		return s.ConfirmationStatus != ""
	}
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}
