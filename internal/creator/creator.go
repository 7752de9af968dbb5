// Package creator runs the token creation workflow: validate the parameters, resolve
// the wallet, submit the mint transaction, optionally publish metadata and finally
// record the created coin.
//
// Create never returns an error or panics; every failure ends up in the returned
// domain.CreationResult together with a notification.
package creator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"token-forge/internal/apperr"
	"token-forge/internal/domain"
	"token-forge/internal/fees"
	"token-forge/internal/idhash"
	"token-forge/internal/logger"
	"token-forge/internal/metadata"
	"token-forge/internal/mint"
	"token-forge/internal/observability"
	"token-forge/internal/storage"
	"token-forge/internal/wallet"
)

// Step names recorded in step metrics next to the metadata pipeline steps.
const (
	StepMint    = "mint"
	StepPersist = "persist"
)

// MintSubmitter submits the mint transaction.
type MintSubmitter interface {
	Submit(ctx context.Context, p *domain.CoinCreationParams, provider wallet.Provider) (*mint.Result, error)
	Schedule() fees.Schedule
}

// MetadataRunner publishes metadata for a confirmed mint.
type MetadataRunner interface {
	Run(ctx context.Context, params *domain.CoinCreationParams, provider wallet.Provider, mint string) (*metadata.Outcome, error)
}

// WalletResolver picks the signing wallet for a run.
type WalletResolver interface {
	Resolve() (wallet.Provider, error)
}

// WalletResolverFunc adapts a function to WalletResolver.
type WalletResolverFunc func() (wallet.Provider, error)

func (f WalletResolverFunc) Resolve() (wallet.Provider, error) { return f() }

// Selected resolves to the provider registered under id instead of walking the priority order.
func Selected(r *wallet.Registry, id string) WalletResolver {
	return WalletResolverFunc(func() (wallet.Provider, error) { return r.Select(id) })
}

// Creator orchestrates creation runs.
type Creator struct {
	wallets  WalletResolver
	minter   MintSubmitter
	metadata MetadataRunner
	store    storage.CoinRecordStore
	notifier Notifier
	logger   *zap.Logger
	metrics  *observability.Metrics

	stepDelay time.Duration
	now       func() time.Time
	newRunID  func() string
}

// Option configures Creator.
type Option func(*Creator)

// WithMetadata enables the metadata pipeline. Without it, runs that request
// metadata keep the mint and report a metadata error.
func WithMetadata(m MetadataRunner) Option {
	return func(c *Creator) { c.metadata = m }
}

// WithStore persists a record for every confirmed mint.
func WithStore(s storage.CoinRecordStore) Option {
	return func(c *Creator) { c.store = s }
}

// WithNotifier sets where notifications go.
func WithNotifier(n Notifier) Option {
	return func(c *Creator) { c.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Creator) { c.logger = l }
}

// WithMetrics records run metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Creator) { c.metrics = m }
}

// WithStepDelay waits d between the mint and the metadata pipeline.
func WithStepDelay(d time.Duration) Option {
	return func(c *Creator) { c.stepDelay = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Creator) { c.now = now }
}

// WithRunIDs replaces the uuid run id generator.
func WithRunIDs(fn func() string) Option {
	return func(c *Creator) { c.newRunID = fn }
}

// New creates a Creator.
func New(wallets WalletResolver, minter MintSubmitter, opts ...Option) *Creator {
	c := &Creator{
		wallets:  wallets,
		minter:   minter,
		notifier: NotifierFunc(func(Notification) {}),
		logger:   zap.NewNop(),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Quote returns the fee for params under the minter's schedule.
func (c *Creator) Quote(params *domain.CoinCreationParams) []fees.Line {
	return fees.Breakdown(c.minter.Schedule(), params)
}

// Create runs one creation. params is copied first, so the caller may reuse it.
// Success reports whether the mint confirmed; metadata problems are reported in
// MetadataError and never undo a successful mint.
// observers receive this run's notifications in addition to the configured notifier.
//
// A started run is not cancellable: cancelling ctx does not abort a sent transaction,
// an upload or the record write. Network steps are bounded by their own timeouts.
func (c *Creator) Create(ctx context.Context, params *domain.CoinCreationParams, observers ...Notifier) (res *domain.CreationResult) {
	ctx = context.WithoutCancel(ctx)
	if len(observers) > 0 {
		run := *c
		run.notifier = Tee(append([]Notifier{c.notifier}, observers...)...)
		return run.create(ctx, params)
	}
	return c.create(ctx, params)
}

func (c *Creator) create(ctx context.Context, params *domain.CoinCreationParams) (res *domain.CreationResult) {
	start := c.now()
	res = &domain.CreationResult{RunID: c.newRunID()}
	log := c.logger.With(zap.String("run_id", res.RunID))

	var p *domain.CoinCreationParams
	saved := false
	defer func() {
		if r := recover(); r != nil {
			log.Error("creation run panicked", zap.Any("panic", r))
			e := apperr.Newf(apperr.KindInternal, "create", "unexpected error: %v", r)
			if res.Success {
				res.MetadataError = e
			} else {
				res.Error = e
			}
			c.notifier.Notify(failureNotification(e))
			// A confirmed mint is always recorded.
			if res.Success && !saved {
				saved = true
				c.persistRecovering(ctx, log, res, p)
			}
		}
		c.finish(log, res, start)
	}()

	if params == nil {
		c.fail(log, res, apperr.New(apperr.KindValidation, "validate", "token parameters are required"))
		return res
	}
	p = params.Clone()
	p.Normalize()
	if err := p.Validate(); err != nil {
		c.fail(log, res, err)
		return res
	}

	provider, err := c.wallets.Resolve()
	if err != nil {
		c.fail(log, res, err)
		return res
	}
	guard := wallet.NewGuard(provider)
	defer guard.Release()
	signer := guard.Provider()
	log = log.With(zap.String("wallet", provider.ID()))

	fee := fees.Calculate(c.minter.Schedule(), p)
	res.FeeSOL = fee.StringFixed(2)
	res.FeeLamports = fees.ToLamports(fee)

	c.notifier.Notify(Notification{
		Level:       LevelInfo,
		Title:       "Creating token",
		Description: "Please confirm the transaction in your wallet",
	})

	mintStart := time.Now()
	mr, err := c.minter.Submit(ctx, p, signer)
	c.recordStep(StepMint, time.Since(mintStart))
	if err != nil {
		c.fail(log, res, err)
		return res
	}

	res.Success = true
	res.MintAddress = mr.MintAddress
	res.MintSignature = mr.Signature
	res.FeeLamports = mr.FeeLamports
	res.MetadataValidation = domain.ValidationSkipped
	if mr.RevokedInline {
		res.RevokeSignature = mr.Signature
	}
	if c.metrics != nil {
		c.metrics.RecordMint(mr.FeeLamports)
	}
	log = log.With(logger.Mint(mr.MintAddress))
	log.Info("mint confirmed", zap.String("signature", mr.Signature), zap.Uint64("fee_lamports", mr.FeeLamports))
	c.notifier.Notify(Notification{
		Level:       LevelSuccess,
		Title:       "Token created successfully!",
		Description: fmt.Sprintf("Your token has been created with address: %s...", prefix(mr.MintAddress, 8)),
	})

	if p.IncludeMetadata {
		c.runMetadata(ctx, log, res, p, guard, signer, mr)
	}

	saved = true
	c.persist(ctx, log, res, p)

	c.notifier.Notify(Notification{
		Level:       LevelSuccess,
		Title:       "Coin created successfully!",
		Description: fmt.Sprintf("Transaction ID: %s...", prefix(mr.Signature, 8)),
	})
	return res
}

func (c *Creator) runMetadata(ctx context.Context, log *zap.Logger, res *domain.CreationResult, p *domain.CoinCreationParams,
	guard *wallet.Guard, signer wallet.Provider, mr *mint.Result) {
	const op = "metadata"

	metaErr := func(e *apperr.Error) {
		res.MetadataError = e
		if c.metrics != nil {
			c.metrics.RecordMetadata("FAILED")
		}
		log.Warn("metadata not created", zap.Error(e))
		c.notifier.Notify(Notification{Level: LevelError, Title: "Failed to add metadata", Description: e.Message})
		if p.RevokeMint && !mr.RevokedInline && res.RevokeSignature == "" {
			c.notifier.Notify(Notification{
				Level:       LevelWarning,
				Title:       "Mint authority still active",
				Description: "The mint authority was not revoked because metadata creation did not complete",
			})
		}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("metadata step panicked", zap.Any("panic", r))
			if !res.HasMetadata {
				metaErr(apperr.Newf(apperr.KindMetadata, op, "unexpected error: %v", r))
			}
		}
	}()

	if c.metadata == nil {
		metaErr(apperr.New(apperr.KindMetadata, op, "Metadata pinning is not configured"))
		return
	}
	if err := sleep(ctx, c.stepDelay); err != nil {
		metaErr(apperr.Wrap(apperr.KindMetadata, op, err))
		return
	}
	if err := guard.Check(op); err != nil {
		metaErr(apperr.As(err, apperr.KindMetadata, op))
		return
	}

	c.notifier.Notify(Notification{
		Level:       LevelInfo,
		Title:       "Adding token metadata...",
		Description: "This will require another transaction",
	})

	out, err := c.metadata.Run(ctx, p, signer, res.MintAddress)
	if out != nil {
		res.MetadataAddress = out.MetadataAddress
		res.MetadataURI = out.URI
		res.ImageURL = out.ImageURL
		res.MetadataSignature = out.Signature
		if out.RevokeSignature != "" {
			res.RevokeSignature = out.RevokeSignature
		}
		res.MetadataValidation = out.Validation
	}
	if err != nil {
		metaErr(apperr.As(err, apperr.KindMetadata, op))
		return
	}

	res.HasMetadata = true
	if c.metrics != nil {
		c.metrics.RecordMetadata(string(res.MetadataValidation))
	}
	log.Info("metadata created",
		zap.String("metadata", res.MetadataAddress),
		zap.String("uri", res.MetadataURI),
		zap.String("validation", string(res.MetadataValidation)))
	if res.MetadataValidation == domain.ValidationUnvalidated {
		c.notifier.Notify(Notification{
			Level:       LevelWarning,
			Title:       "Metadata not yet visible",
			Description: "The metadata could not be fetched from any IPFS gateway yet; wallets may show it later",
		})
	}
	c.notifier.Notify(Notification{
		Level:       LevelSuccess,
		Title:       "Metadata added successfully!",
		Description: "Your token now has on-chain metadata",
	})
}

// persistRecovering is persist for the panic path, where a second panic must not escape.
func (c *Creator) persistRecovering(ctx context.Context, log *zap.Logger, res *domain.CreationResult, p *domain.CoinCreationParams) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("saving created coin panicked", zap.Any("panic", r))
		}
	}()
	c.persist(ctx, log, res, p)
}

// persist stores the created coin. A failure only produces a warning.
func (c *Creator) persist(ctx context.Context, log *zap.Logger, res *domain.CreationResult, p *domain.CoinCreationParams) {
	if c.store == nil {
		return
	}
	rec := &domain.CreatedCoinRecord{
		ID:            idhash.ComputeRecordID(res.MintAddress, res.MintSignature),
		Name:          p.Name,
		Symbol:        p.Symbol,
		Supply:        p.Supply,
		Decimals:      p.Decimals,
		MintAddress:   res.MintAddress,
		TransactionID: res.MintSignature,
		Socials:       append(domain.SocialLinks(nil), p.Socials...),
		CreatedAt:     c.now().UnixMilli(),
		HasMetadata:   res.HasMetadata,
	}
	if res.HasMetadata {
		rec.MetadataURI = res.MetadataURI
	}

	start := time.Now()
	err := c.store.Prepend(ctx, rec)
	c.recordStep(StepPersist, time.Since(start))
	if c.metrics != nil {
		c.metrics.RecordPersist(err)
	}
	if err != nil {
		log.Warn("failed to save created coin", zap.Error(err))
		c.notifier.Notify(Notification{
			Level:       LevelWarning,
			Title:       "Coin not saved",
			Description: "The token was created but could not be added to your coin list: " + err.Error(),
		})
		return
	}
	log.Debug("created coin saved", zap.String("id", rec.ID))
}

func (c *Creator) fail(log *zap.Logger, res *domain.CreationResult, err error) {
	res.Success = false
	res.Error = apperr.As(err, apperr.KindInternal, "create")
	log.Warn("creation failed", zap.String("kind", string(res.Error.Kind)), zap.Error(err))
	c.notifier.Notify(failureNotification(res.Error))
}

func (c *Creator) finish(log *zap.Logger, res *domain.CreationResult, start time.Time) {
	d := c.now().Sub(start)
	kind := ""
	if !res.Success && res.Error != nil {
		kind = string(res.Error.Kind)
	}
	if c.metrics != nil {
		c.metrics.RecordRun(kind, d)
	}
	log.Info("creation run finished",
		zap.Bool("success", res.Success),
		zap.Bool("has_metadata", res.HasMetadata),
		zap.Duration("duration", d))
}

func (c *Creator) recordStep(step string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordStep(step, d)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
