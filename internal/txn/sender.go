// Package txn signs, submits and confirms transactions on behalf of a wallet provider.
package txn

import (
	"context"
	"errors"
	"time"

	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	"token-forge/internal/apperr"
	"token-forge/internal/solana"
	"token-forge/internal/wallet"
)

// Sender builds a transaction from instructions, has it signed and waits for confirmation.
type Sender struct {
	rpc            solana.RPCClient
	confirmer      *solana.Confirmer
	confirmTimeout time.Duration
	logger         *zap.Logger
}

// NewSender creates a Sender. A zero confirmTimeout waits until ctx is done.
func NewSender(rpc solana.RPCClient, confirmer *solana.Confirmer, confirmTimeout time.Duration, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{rpc: rpc, confirmer: confirmer, confirmTimeout: confirmTimeout, logger: logger}
}

// Send submits instructions with the provider's key as fee payer.
// extra keypairs (e.g. a fresh mint account) partially sign before the wallet does.
// There is no automatic resubmission: a failed send is returned to the caller.
func (s *Sender) Send(ctx context.Context, op string, provider wallet.Provider, instructions []types.Instruction, extra ...types.Account) (string, error) {
	payer, ok := provider.PublicKey()
	if !ok {
		return "", apperr.New(apperr.KindNoWalletConnected, op, "Please connect your wallet first")
	}

	bh, err := s.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransaction, op, err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        payer,
			RecentBlockhash: bh.Blockhash,
			Instructions:    instructions,
		}),
		Signers: extra,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, op, err)
	}

	signed, err := provider.SignTransaction(ctx, tx)
	if err != nil {
		return "", classifySignError(op, err)
	}

	raw, err := signed.Serialize()
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, op, err)
	}

	sig, err := s.rpc.SendTransaction(ctx, raw)
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransaction, op, err)
	}
	s.logger.Info("transaction sent", zap.String("step", op), zap.String("signature", sig))

	cctx := ctx
	if s.confirmTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.confirmTimeout)
		defer cancel()
	}
	if err := s.confirmer.Confirm(cctx, sig, bh.LastValidBlockHeight); err != nil {
		return sig, err
	}
	s.logger.Info("transaction confirmed", zap.String("step", op), zap.String("signature", sig))
	return sig, nil
}

func classifySignError(op string, err error) error {
	var ae *apperr.Error
	switch {
	case errors.As(err, &ae):
		return err
	case errors.Is(err, wallet.ErrSigningRejected):
		return apperr.New(apperr.KindSigningRejected, op, "You rejected the transaction")
	case errors.Is(err, wallet.ErrNotConnected):
		return apperr.New(apperr.KindWalletDisconnected, op, "Wallet disconnected during the operation")
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.KindTimeout, op, err)
	default:
		return apperr.Wrap(apperr.KindTransaction, op, err)
	}
}
