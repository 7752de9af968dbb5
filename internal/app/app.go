// Package app wires the components shared by cmd/forge and cmd/server from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"token-forge/internal/config"
	"token-forge/internal/creator"
	"token-forge/internal/fees"
	"token-forge/internal/metadata"
	"token-forge/internal/mint"
	"token-forge/internal/observability"
	"token-forge/internal/pinning"
	"token-forge/internal/price"
	"token-forge/internal/solana"
	"token-forge/internal/storage"
	chstore "token-forge/internal/storage/clickhouse"
	"token-forge/internal/storage/memory"
	"token-forge/internal/storage/migrations"
	pgstore "token-forge/internal/storage/postgres"
	"token-forge/internal/storage/slot"
	"token-forge/internal/txn"
	"token-forge/internal/wallet"
)

// App holds the wired components.
type App struct {
	Config   *config.Config
	Cluster  solana.Cluster
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Registry *prometheus.Registry

	RPC        *solana.HTTPClient
	Confirmer  *solana.Confirmer
	Airdropper *solana.Airdropper
	Wallets    *wallet.Registry
	Builder    *mint.Builder
	Pipeline   *metadata.Pipeline // nil without pinning credentials
	Store      storage.CoinRecordStore
	Price      *price.Client
	Creator    *creator.Creator

	closers []func()
}

// Options are the per-binary choices that do not come from Config.
type Options struct {
	// Approval is asked before the keypair wallet signs. Nil signs without asking.
	Approval wallet.ApprovalFunc
	// WalletID selects a registered wallet instead of resolving by priority.
	WalletID string
	Notifier creator.Notifier
	// MetricsNamespace defaults to token_forge.
	MetricsNamespace string
	// NoWebSocket confirms by polling only.
	NoWebSocket bool
}

// New builds an App. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cluster, err := solana.ParseCluster(cfg.Cluster)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Cluster:  cluster,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	a.Metrics = observability.NewMetrics(opts.MetricsNamespace, a.Registry)
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := a.wire(ctx, opts); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context, opts Options) error {
	cfg := a.Config
	log := a.Logger

	rpcEndpoint := cfg.RPCEndpoint
	if rpcEndpoint == "" {
		rpcEndpoint = a.Cluster.RPCEndpoint()
	}
	a.RPC = solana.NewHTTPClient(rpcEndpoint, solana.WithObserver(a.Metrics.ObserveRPC))

	confirmerOpts := []solana.ConfirmerOption{solana.WithConfirmerLogger(log)}
	wsEndpoint := cfg.WSEndpoint
	if wsEndpoint == "" && cfg.RPCEndpoint == "" {
		wsEndpoint = a.Cluster.WSEndpoint()
	}
	if wsEndpoint != "" && !opts.NoWebSocket {
		wsConfig := solana.DefaultWSConfig()
		wsConfig.Logger = log
		ws, err := solana.NewWSClient(ctx, wsEndpoint, &wsConfig)
		if err != nil {
			// Confirmation falls back to polling.
			log.Warn("websocket unavailable", zap.String("endpoint", wsEndpoint), zap.Error(err))
		} else {
			a.closers = append(a.closers, func() { ws.Close() })
			confirmerOpts = append(confirmerOpts, solana.WithWebSocket(ws))
		}
	}
	a.Confirmer = solana.NewConfirmer(a.RPC, confirmerOpts...)
	a.Airdropper = solana.NewAirdropper(a.Cluster, a.RPC, a.Confirmer)
	sender := txn.NewSender(a.RPC, a.Confirmer, cfg.ConfirmTimeout, log)

	a.Wallets = wallet.NewRegistry()
	if cfg.WalletKeypair != "" {
		var kpOpts []wallet.KeypairOption
		if opts.Approval != nil {
			kpOpts = append(kpOpts, wallet.WithApproval(opts.Approval))
		}
		kp := wallet.NewKeypairFileProvider(cfg.WalletKeypair, kpOpts...)
		if err := kp.Connect(ctx); err != nil {
			return fmt.Errorf("connect keypair wallet: %w", err)
		}
		a.Wallets.Register(kp)
	}

	schedule, err := fees.ParseSchedule(fees.DefaultSchedule,
		cfg.FeeBase, cfg.FeeRevokeMint, cfg.FeeRevokeUpdate, cfg.FeeRevokeFreeze, cfg.FeeSocials)
	if err != nil {
		return fmt.Errorf("fee schedule: %w", err)
	}
	a.Builder, err = mint.NewBuilder(a.RPC, sender, cfg.OwnerAddress, mint.WithSchedule(schedule), mint.WithLogger(log))
	if err != nil {
		return fmt.Errorf("fee recipient: %w", err)
	}

	if cfg.HasPinata() {
		policy, err := pinning.ParseMetadataPolicy(cfg.MetadataPolicy)
		if err != nil {
			return err
		}
		pinner := pinning.NewClient(pinning.Credentials{
			APIKey:    cfg.PinataAPIKey,
			SecretKey: cfg.PinataSecretKey,
			JWT:       cfg.PinataJWT,
		}, pinning.WithGateway(cfg.PinataGateway))
		validator := pinning.NewValidator(pinning.WithPolicy(policy), pinning.WithValidatorLogger(log))
		waiter := solana.NewAccountWaiter(a.RPC, cfg.MintWaitTimeout, log)
		a.Pipeline = metadata.NewPipeline(waiter, pinner, validator, sender, a.Builder,
			metadata.WithLogger(log),
			metadata.WithStepObserver(func(step string, d time.Duration, _ error) {
				a.Metrics.RecordStep(step, d)
			}))
	} else {
		log.Info("pinning credentials not set, metadata creation disabled")
	}

	if a.Store, err = a.openStore(ctx); err != nil {
		return err
	}

	a.Price = price.NewClient(price.WithURL(cfg.PriceAPIURL), price.WithLogger(log))

	var resolver creator.WalletResolver = a.Wallets
	if opts.WalletID != "" {
		resolver = creator.Selected(a.Wallets, opts.WalletID)
	}
	creatorOpts := []creator.Option{
		creator.WithStore(a.Store),
		creator.WithLogger(log),
		creator.WithMetrics(a.Metrics),
		creator.WithStepDelay(cfg.StepDelay),
	}
	if a.Pipeline != nil {
		creatorOpts = append(creatorOpts, creator.WithMetadata(a.Pipeline))
	}
	if opts.Notifier != nil {
		creatorOpts = append(creatorOpts, creator.WithNotifier(opts.Notifier))
	}
	a.Creator = creator.New(resolver, a.Builder, creatorOpts...)
	return nil
}

// openStore opens the primary slot store and any configured mirrors.
func (a *App) openStore(ctx context.Context) (storage.CoinRecordStore, error) {
	cfg := a.Config
	observe := storage.QueryObserver(a.Metrics.RecordDBQuery)

	var primary storage.CoinRecordStore
	switch cfg.StoreBackend {
	case "memory":
		primary = memory.NewCoinRecordStore()
	case "sqlite":
		db, err := slot.OpenSQLite(ctx, cfg.StorePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { db.Close() })
		primary = storage.NewInstrumented(slot.NewStore(db.Slot(slot.DefaultName), a.Logger), "sqlite", observe)
	default:
		primary = slot.NewStore(slot.NewFileSlot(cfg.StorePath), a.Logger)
	}

	var mirrors []storage.CoinRecordStore
	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		mirrors = append(mirrors, storage.NewInstrumented(pgstore.NewCoinRecordStore(pool), "postgres", observe))
	}
	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		a.closers = append(a.closers, func() { conn.Close() })
		mirrors = append(mirrors, storage.NewInstrumented(chstore.NewCoinRecordStore(conn), "clickhouse", observe))
	}
	if len(mirrors) == 0 {
		return primary, nil
	}
	return storage.NewMulti(primary, a.Logger, mirrors...), nil
}

// ErrNoWallet is returned by Payer when no wallet is registered.
var ErrNoWallet = errors.New("no wallet configured, set WALLET_KEYPAIR")

// Payer returns the address of the wallet runs would sign with.
func (a *App) Payer() (string, error) {
	p, err := a.Wallets.Resolve()
	if err != nil {
		return "", ErrNoWallet
	}
	pk, _ := p.PublicKey()
	return pk.ToBase58(), nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
