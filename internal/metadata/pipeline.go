package metadata

import (
	"context"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	"token-forge/internal/apperr"
	"token-forge/internal/domain"
	"token-forge/internal/logger"
	"token-forge/internal/pinning"
	"token-forge/internal/solana"
	"token-forge/internal/txn"
	"token-forge/internal/wallet"
)

// Pipeline step names, used for logs and step metrics.
const (
	StepWaitMint         = "wait_mint"
	StepPinImage         = "pin_image"
	StepValidateImage    = "validate_image"
	StepPinMetadata      = "pin_metadata"
	StepValidateMetadata = "validate_metadata"
	StepCreateMetadata   = "create_metadata"
	StepRevokeMint       = "revoke_mint"
)

// AccountWaiter blocks until an account exists.
type AccountWaiter interface {
	Wait(ctx context.Context, address, owner string) (*solana.AccountInfo, error)
}

// Validator checks pinned content.
type Validator interface {
	ValidateImage(ctx context.Context, url string) error
	ValidateMetadata(ctx context.Context, url string) (domain.ValidationOutcome, error)
}

// Revoker removes the mint authority in its own transaction.
type Revoker interface {
	RevokeMintAuthority(ctx context.Context, mint string, provider wallet.Provider) (string, error)
}

// Outcome reports what the pipeline completed. Fields are filled as steps succeed,
// so a failed run still shows how far it got.
type Outcome struct {
	MetadataAddress string
	URI             string
	ImageURL        string
	Signature       string
	RevokeSignature string
	Validation      domain.ValidationOutcome
}

// Pipeline runs the metadata steps for an already confirmed mint.
type Pipeline struct {
	waiter    AccountWaiter
	pinner    pinning.Pinner
	validator Validator
	sender    *txn.Sender
	revoker   Revoker
	logger    *zap.Logger
	observe   func(step string, d time.Duration, err error)
}

// PipelineOption configures Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// WithStepObserver registers a callback run after every step.
func WithStepObserver(fn func(step string, d time.Duration, err error)) PipelineOption {
	return func(p *Pipeline) { p.observe = fn }
}

// NewPipeline creates a Pipeline.
func NewPipeline(waiter AccountWaiter, pinner pinning.Pinner, validator Validator, sender *txn.Sender, revoker Revoker, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		waiter:    waiter,
		pinner:    pinner,
		validator: validator,
		sender:    sender,
		revoker:   revoker,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run publishes metadata for mint and registers it on chain. Each step depends on the
// previous one; the first failure stops the run and is returned as KindMetadata with
// the underlying error as cause. The mint itself is never affected.
// When params.RevokeMint is set the mint authority is revoked after the metadata
// transaction confirms, since creating metadata requires the mint authority.
func (pl *Pipeline) Run(ctx context.Context, params *domain.CoinCreationParams, provider wallet.Provider, mint string) (*Outcome, error) {
	out := &Outcome{Validation: domain.ValidationSkipped}
	log := pl.logger.With(logger.Mint(mint))

	payer, ok := provider.PublicKey()
	if !ok {
		return out, fail(StepCreateMetadata, apperr.New(apperr.KindNoWalletConnected, StepCreateMetadata, "Please connect your wallet first"))
	}
	if !solana.IsOnCurveAddress(mint) {
		return out, fail(StepWaitMint, apperr.Newf(apperr.KindValidation, StepWaitMint, "mint %s is not a valid account address", mint))
	}

	if err := pl.step(ctx, StepWaitMint, func(ctx context.Context) error {
		_, err := pl.waiter.Wait(ctx, mint, solana.TokenProgramID)
		return err
	}); err != nil {
		return out, err
	}

	if params.Image != nil {
		var cid string
		if err := pl.step(ctx, StepPinImage, func(ctx context.Context) (err error) {
			cid, err = pl.pinner.PinFile(ctx, params.Symbol+"_image", params.Image.ContentType, params.Image.Data)
			return err
		}); err != nil {
			return out, err
		}
		out.ImageURL = pl.pinner.GatewayURL(cid)
		log.Info("image pinned", zap.String("url", out.ImageURL))

		if err := pl.step(ctx, StepValidateImage, func(ctx context.Context) error {
			return pl.validator.ValidateImage(ctx, out.ImageURL)
		}); err != nil {
			return out, err
		}
	}

	doc := BuildDocument(params, out.ImageURL, payer.ToBase58())
	var cid string
	if err := pl.step(ctx, StepPinMetadata, func(ctx context.Context) (err error) {
		cid, err = pl.pinner.PinJSON(ctx, params.Symbol+"_metadata", doc)
		return err
	}); err != nil {
		return out, err
	}
	out.URI = pl.pinner.GatewayURL(cid)
	log.Info("metadata pinned", zap.String("uri", out.URI))

	if err := pl.step(ctx, StepValidateMetadata, func(ctx context.Context) (err error) {
		out.Validation, err = pl.validator.ValidateMetadata(ctx, out.URI)
		return err
	}); err != nil {
		return out, err
	}

	if err := pl.step(ctx, StepCreateMetadata, func(ctx context.Context) error {
		ins, addr, err := CreateInstruction(params, common.PublicKeyFromString(mint), payer, out.URI)
		if err != nil {
			return err
		}
		out.MetadataAddress = addr
		sig, err := pl.sender.Send(ctx, StepCreateMetadata, provider, []types.Instruction{ins})
		if err != nil {
			return err
		}
		out.Signature = sig
		return nil
	}); err != nil {
		return out, err
	}
	log.Info("metadata account created",
		zap.String("metadata", out.MetadataAddress),
		zap.String("signature", out.Signature))

	if params.RevokeMint {
		if err := pl.step(ctx, StepRevokeMint, func(ctx context.Context) (err error) {
			out.RevokeSignature, err = pl.revoker.RevokeMintAuthority(ctx, mint, provider)
			return err
		}); err != nil {
			return out, err
		}
		log.Info("mint authority revoked", zap.String("signature", out.RevokeSignature))
	}

	return out, nil
}

func (pl *Pipeline) step(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	if pl.observe != nil {
		pl.observe(name, time.Since(start), err)
	}
	if err != nil {
		pl.logger.Warn("metadata step failed", zap.String("step", name), zap.Error(err))
		return fail(name, err)
	}
	return nil
}

func fail(step string, err error) error {
	return apperr.Wrap(apperr.KindMetadata, step, err)
}
