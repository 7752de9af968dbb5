// Package wallet resolves the signing wallet for a creation run.
//
// Providers are registered explicitly in a Registry; nothing is discovered from
// globals. Resolution walks a fixed priority order so the same set of connected
// providers always resolves to the same wallet.
package wallet

import (
	"context"
	"errors"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// Provider IDs in default resolution priority.
const (
	Phantom  = "phantom"
	Solflare = "solflare"
	Backpack = "backpack"
	Glow     = "glow"
	Keypair  = "keypair"
)

// DefaultPriority is the order Resolve walks.
var DefaultPriority = []string{Phantom, Solflare, Backpack, Glow, Keypair}

var (
	ErrNotConnected      = errors.New("wallet not connected")
	ErrSigningRejected   = errors.New("user rejected the request")
	ErrUnknownProvider   = errors.New("unknown wallet provider")
	ErrInvalidKeypair    = errors.New("invalid keypair")
	ErrNotRequiredSigner = errors.New("wallet is not a required signer of the transaction")
)

// Event is a provider lifecycle event.
type Event string

const (
	EventDisconnect     Event = "disconnect"
	EventAccountChanged Event = "accountChanged"
)

// ListenerID identifies a registered event handler.
type ListenerID uint64

// Handler receives provider events.
type Handler func(Event)

//go:generate mockgen -source=provider.go -destination=mocks/provider_mock.go -package=mocks

// Provider is a wallet capable of signing transactions for its public key.
type Provider interface {
	ID() string
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool
	PublicKey() (common.PublicKey, bool)
	// SignTransaction adds the wallet's signature and returns the signed transaction.
	// A declined request returns an error wrapping ErrSigningRejected.
	SignTransaction(ctx context.Context, tx types.Transaction) (types.Transaction, error)
	On(event Event, h Handler) ListenerID
	RemoveListener(id ListenerID)
}
