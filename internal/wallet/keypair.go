package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// ApprovalFunc asks the user to approve a transaction before it is signed.
type ApprovalFunc func(ctx context.Context, tx types.Transaction) (bool, error)

// KeypairProvider signs with a local ed25519 keypair, such as a Solana CLI keypair file.
type KeypairProvider struct {
	Listeners

	id     string
	path   string
	secret []byte

	mu        sync.RWMutex
	account   *types.Account
	connected bool
	approve   ApprovalFunc
}

// KeypairOption configures KeypairProvider.
type KeypairOption func(*KeypairProvider)

// WithApproval installs an approval prompt consulted before every signature.
func WithApproval(fn ApprovalFunc) KeypairOption {
	return func(p *KeypairProvider) { p.approve = fn }
}

// WithProviderID overrides the provider ID (default "keypair").
func WithProviderID(id string) KeypairOption {
	return func(p *KeypairProvider) { p.id = id }
}

// NewKeypairFileProvider creates a provider that loads path on Connect.
func NewKeypairFileProvider(path string, opts ...KeypairOption) *KeypairProvider {
	p := &KeypairProvider{id: Keypair, path: path}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewKeypairProvider creates a provider from a 64-byte secret key.
func NewKeypairProvider(secret []byte, opts ...KeypairOption) *KeypairProvider {
	p := &KeypairProvider{id: Keypair, secret: append([]byte(nil), secret...)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseKeypair decodes a keypair in Solana CLI format: a JSON array of 64 integers in [0,255].
func ParseKeypair(data []byte) ([]byte, error) {
	var ints []int
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &ints); err != nil {
		return nil, fmt.Errorf("%w: not a json int array: %v", ErrInvalidKeypair, err)
	}
	if len(ints) != 64 {
		return nil, fmt.Errorf("%w: want 64 bytes, got %d", ErrInvalidKeypair, len(ints))
	}
	b := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: byte out of range at %d: %d", ErrInvalidKeypair, i, v)
		}
		b[i] = byte(v)
	}
	return b, nil
}

func (p *KeypairProvider) ID() string { return p.id }

// Connect loads the keypair. Connecting twice is a no-op.
func (p *KeypairProvider) Connect(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.connected {
		return nil
	}

	secret := p.secret
	if p.path != "" {
		data, err := os.ReadFile(p.path)
		if err != nil {
			return fmt.Errorf("read keypair %s: %w", p.path, err)
		}
		if secret, err = ParseKeypair(data); err != nil {
			return err
		}
	}

	acc, err := types.AccountFromBytes(secret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
	}
	p.account = &acc
	p.connected = true
	return nil
}

// Disconnect forgets the key and notifies disconnect listeners.
func (p *KeypairProvider) Disconnect(_ context.Context) error {
	p.mu.Lock()
	was := p.connected
	p.connected = false
	p.account = nil
	p.mu.Unlock()

	if was {
		p.Emit(EventDisconnect)
	}
	return nil
}

func (p *KeypairProvider) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

func (p *KeypairProvider) PublicKey() (common.PublicKey, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.connected || p.account == nil {
		return common.PublicKey{}, false
	}
	return p.account.PublicKey, true
}

// SignTransaction signs tx with the keypair after the optional approval prompt.
func (p *KeypairProvider) SignTransaction(ctx context.Context, tx types.Transaction) (types.Transaction, error) {
	p.mu.RLock()
	acc := p.account
	connected := p.connected
	approve := p.approve
	p.mu.RUnlock()

	if !connected || acc == nil {
		return tx, ErrNotConnected
	}

	if approve != nil {
		ok, err := approve(ctx, tx)
		if err != nil {
			return tx, fmt.Errorf("approval: %w", err)
		}
		if !ok {
			return tx, ErrSigningRejected
		}
	}

	msg, err := tx.Message.Serialize()
	if err != nil {
		return tx, fmt.Errorf("serialize message: %w", err)
	}
	if err := tx.AddSignature(acc.Sign(msg)); err != nil {
		return tx, fmt.Errorf("%w: %v", ErrNotRequiredSigner, err)
	}
	return tx, nil
}

var _ Provider = (*KeypairProvider)(nil)
