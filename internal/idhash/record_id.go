package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeRecordID computes a deterministic created-coin record id using SHA256.
// Formula: SHA256(mint|tx_signature)
// Returns hex-encoded hash (64 characters).
func ComputeRecordID(mint, txSignature string) string {
	data := fmt.Sprintf("%s|%s", mint, txSignature)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
