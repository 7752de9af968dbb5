package wallet

import (
	"context"
	"sync/atomic"

	"github.com/blocto/solana-go-sdk/types"

	"token-forge/internal/apperr"
)

// Guard watches a provider for disconnects during a run.
type Guard struct {
	p            Provider
	id           ListenerID
	disconnected atomic.Bool
}

// NewGuard subscribes to p's disconnect event. Call Release when the run ends.
func NewGuard(p Provider) *Guard {
	g := &Guard{p: p}
	g.id = p.On(EventDisconnect, func(Event) { g.disconnected.Store(true) })
	return g
}

// Check returns a WalletDisconnected error if the wallet went away since NewGuard.
func (g *Guard) Check(op string) error {
	if g.disconnected.Load() || !g.p.IsConnected() {
		return apperr.New(apperr.KindWalletDisconnected, op, "Wallet disconnected during the operation")
	}
	return nil
}

// Release removes the disconnect listener.
func (g *Guard) Release() {
	g.p.RemoveListener(g.id)
}

// Provider returns p wrapped so that every signing request first runs Check.
func (g *Guard) Provider() Provider {
	return &guardedProvider{Provider: g.p, g: g}
}

type guardedProvider struct {
	Provider
	g *Guard
}

func (gp *guardedProvider) SignTransaction(ctx context.Context, tx types.Transaction) (types.Transaction, error) {
	if err := gp.g.Check("sign"); err != nil {
		return tx, err
	}
	return gp.Provider.SignTransaction(ctx, tx)
}
