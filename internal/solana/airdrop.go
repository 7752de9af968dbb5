package solana

import (
	"context"

	"token-forge/internal/apperr"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// Airdropper requests faucet funds. Only devnet has a faucet.
type Airdropper struct {
	cluster   Cluster
	rpc       RPCClient
	confirmer *Confirmer
}

// NewAirdropper creates an Airdropper for cluster.
func NewAirdropper(cluster Cluster, rpc RPCClient, confirmer *Confirmer) *Airdropper {
	return &Airdropper{cluster: cluster, rpc: rpc, confirmer: confirmer}
}

// Request airdrops lamports to address and waits for confirmation.
func (a *Airdropper) Request(ctx context.Context, address string, lamports uint64) (string, error) {
	const op = "airdrop"

	if a.cluster != Devnet {
		return "", apperr.Newf(apperr.KindUnsupportedNetwork, op, "airdrops are only available on devnet, current cluster is %s", a.cluster)
	}
	if _, err := DecodeAddress(address); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, op, err)
	}

	bh, err := a.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransaction, op, err)
	}
	sig, err := a.rpc.RequestAirdrop(ctx, address, lamports)
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransaction, op, err)
	}
	if err := a.confirmer.Confirm(ctx, sig, bh.LastValidBlockHeight); err != nil {
		return sig, err
	}
	return sig, nil
}
