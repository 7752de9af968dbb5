package mint

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	"token-forge/internal/apperr"
	"token-forge/internal/domain"
	"token-forge/internal/fees"
	"token-forge/internal/logger"
	"token-forge/internal/solana"
	"token-forge/internal/txn"
	"token-forge/internal/wallet"
)

// Result of a confirmed mint transaction.
type Result struct {
	MintAddress string
	Signature   string
	FeeLamports uint64
	// RevokedInline is true when the mint authority was revoked in the same transaction.
	RevokedInline bool
}

// Builder submits mint transactions.
type Builder struct {
	rpc          solana.RPCClient
	sender       *txn.Sender
	feeRecipient common.PublicKey
	schedule     fees.Schedule
	logger       *zap.Logger

	newMintAccount func() types.Account
}

// Option configures Builder.
type Option func(*Builder)

// WithSchedule overrides the default fee schedule.
func WithSchedule(s fees.Schedule) Option {
	return func(b *Builder) { b.schedule = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithMintAccountSource replaces the fresh keypair generator.
func WithMintAccountSource(fn func() types.Account) Option {
	return func(b *Builder) { b.newMintAccount = fn }
}

// NewBuilder creates a Builder that sends fees to feeRecipient.
func NewBuilder(rpc solana.RPCClient, sender *txn.Sender, feeRecipient string, opts ...Option) (*Builder, error) {
	if err := wallet.ValidateAddress(feeRecipient); err != nil {
		return nil, err
	}
	b := &Builder{
		rpc:            rpc,
		sender:         sender,
		feeRecipient:   common.PublicKeyFromString(feeRecipient),
		schedule:       fees.DefaultSchedule,
		logger:         zap.NewNop(),
		newMintAccount: types.NewAccount,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Schedule returns the fee schedule in use.
func (b *Builder) Schedule() fees.Schedule { return b.schedule }

// Submit creates the token mint. The balance pre-check compares against the service
// fee only; rent and network fees are not included.
func (b *Builder) Submit(ctx context.Context, p *domain.CoinCreationParams, provider wallet.Provider) (*Result, error) {
	const op = "mint"

	payer, ok := provider.PublicKey()
	if !ok {
		return nil, apperr.New(apperr.KindNoWalletConnected, op, "Please connect your wallet first")
	}

	fee := fees.Calculate(b.schedule, p)
	feeLamports := fees.ToLamports(fee)

	balance, err := b.rpc.GetBalance(ctx, payer.ToBase58())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransaction, op, err)
	}
	if balance < feeLamports {
		return nil, apperr.Newf(apperr.KindInsufficientFunds, op,
			"You need at least %s SOL to create this token. Current balance: %s SOL",
			fee.StringFixed(2), fees.FromLamports(balance).StringFixed(4))
	}

	rent, err := b.rpc.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransaction, op, err)
	}

	mintAccount := b.newMintAccount()
	plan, err := NewPlan(p, payer, mintAccount.PublicKey, b.feeRecipient, rent, feeLamports)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, op, err)
	}
	ins, err := BuildInstructions(plan)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, op, err)
	}

	mintAddr := mintAccount.PublicKey.ToBase58()
	b.logger.Info("submitting mint transaction",
		logger.Mint(mintAddr),
		zap.Int("instructions", len(ins)),
		zap.Uint64("fee_lamports", feeLamports),
		zap.Bool("revoke_inline", plan.RevokeMintInline))

	sig, err := b.sender.Send(ctx, op, provider, ins, mintAccount)
	if err != nil {
		return nil, err
	}

	return &Result{
		MintAddress:   mintAddr,
		Signature:     sig,
		FeeLamports:   feeLamports,
		RevokedInline: plan.RevokeMintInline,
	}, nil
}

// RevokeMintAuthority permanently removes the mint authority of mint in its own transaction.
func (b *Builder) RevokeMintAuthority(ctx context.Context, mint string, provider wallet.Provider) (string, error) {
	const op = "revoke_mint"

	payer, ok := provider.PublicKey()
	if !ok {
		return "", apperr.New(apperr.KindNoWalletConnected, op, "Please connect your wallet first")
	}
	if err := wallet.ValidateAddress(mint); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, op, err)
	}

	ins := []types.Instruction{RevokeMintInstruction(common.PublicKeyFromString(mint), payer)}
	return b.sender.Send(ctx, op, provider, ins)
}
