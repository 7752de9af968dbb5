package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PublicKeySize is the length of a Solana address in bytes.
const PublicKeySize = 32

// Well-known program addresses.
const (
	SystemProgramID        = "11111111111111111111111111111111"
	TokenProgramID         = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	TokenMetadataProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrNoViableBump   = errors.New("unable to find a viable program address bump seed")
)

// DecodeAddress decodes a base58 address and checks its length.
func DecodeAddress(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(b) != PublicKeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidAddress, PublicKeySize, len(b))
	}
	return b, nil
}

// IsOnCurve reports whether b is a valid ed25519 point.
// Wallet and mint addresses are on the curve; program derived addresses are not.
func IsOnCurve(b []byte) bool {
	if len(b) != PublicKeySize {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// IsOnCurveAddress is IsOnCurve for a base58 address. Undecodable input is not on the curve.
func IsOnCurveAddress(s string) bool {
	b, err := DecodeAddress(s)
	if err != nil {
		return false
	}
	return IsOnCurve(b)
}

// FindProgramAddress derives a program derived address: the first bump from 255 down
// whose sha256(seeds || bump || program || "ProgramDerivedAddress") is off the curve.
func FindProgramAddress(seeds [][]byte, programID string) (string, uint8, error) {
	program, err := DecodeAddress(programID)
	if err != nil {
		return "", 0, err
	}

	for bump := 255; bump >= 0; bump-- {
		data := make([]byte, 0, 128)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, byte(bump))
		data = append(data, program...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)
		if !IsOnCurve(hash[:]) {
			return base58.Encode(hash[:]), uint8(bump), nil
		}
	}

	return "", 0, ErrNoViableBump
}
