package wallet

import (
	"sort"
	"sync"

	"token-forge/internal/apperr"
	"token-forge/internal/solana"
)

// Registry holds the providers available to a run.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	priority  []string
}

// NewRegistry creates a Registry that resolves in priority order (DefaultPriority if empty).
func NewRegistry(priority ...string) *Registry {
	if len(priority) == 0 {
		priority = DefaultPriority
	}
	return &Registry{
		providers: make(map[string]Provider),
		priority:  append([]string(nil), priority...),
	}
}

// Register adds p, replacing any provider with the same ID.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID()] = p
}

// Get returns the provider registered under id.
func (r *Registry) Get(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// Detect lists registered provider IDs: priority order first, then the rest sorted by name.
func (r *Registry) Detect() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(r.providers))
	out := make([]string, 0, len(r.providers))
	for _, id := range r.priority {
		if _, ok := r.providers[id]; ok && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}

	var rest []string
	for id := range r.providers {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Resolve returns the first provider in Detect order that is connected and exposes a public key.
func (r *Registry) Resolve() (Provider, error) {
	for _, id := range r.Detect() {
		p, _ := r.Get(id)
		if usable(p) {
			return p, nil
		}
	}
	return nil, apperr.New(apperr.KindNoWalletConnected, "resolve_wallet", "Please connect your wallet first")
}

// Select returns the provider with id if it is connected.
func (r *Registry) Select(id string) (Provider, error) {
	const op = "select_wallet"

	p, ok := r.Get(id)
	if !ok {
		return nil, apperr.Wrap(apperr.KindNoWalletConnected, op, ErrUnknownProvider)
	}
	if !usable(p) {
		return nil, apperr.Newf(apperr.KindNoWalletConnected, op, "%s wallet is not connected", id)
	}
	return p, nil
}

func usable(p Provider) bool {
	if p == nil || !p.IsConnected() {
		return false
	}
	_, ok := p.PublicKey()
	return ok
}

// ValidateAddress checks that s is a base58 encoded 32-byte address.
func ValidateAddress(s string) error {
	_, err := solana.DecodeAddress(s)
	return err
}
