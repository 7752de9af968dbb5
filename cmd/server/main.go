// Package main serves token creation over HTTP:
// - POST /coins creates a token from a multipart form
// - GET /coins and GET /coins/{mint} read the created coins list
// - POST /fee and GET /price quote the service fee
// - /healthz and /metrics for operations
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"token-forge/internal/app"
	"token-forge/internal/config"
	"token-forge/internal/creator"
	"token-forge/internal/logger"
	"token-forge/internal/observability"
)

func main() {
	if err := config.LoadEnvFile(os.Getenv("ENV_FILE")); err != nil {
		panic(err)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}

	// Parse flags (env vars as defaults)
	flag.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	flag.StringVar(&cfg.Cluster, "cluster", cfg.Cluster, "Solana cluster (devnet, testnet, mainnet-beta)")
	flag.StringVar(&cfg.RPCEndpoint, "rpc-endpoint", cfg.RPCEndpoint, "Solana RPC HTTP endpoint")
	flag.StringVar(&cfg.WSEndpoint, "ws-endpoint", cfg.WSEndpoint, "Solana WebSocket endpoint")
	flag.StringVar(&cfg.WalletKeypair, "keypair", cfg.WalletKeypair, "Path to the signing keypair file")
	flag.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "Created coins store (file, sqlite, memory)")
	flag.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "Path of the file or sqlite store")
	flag.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "Mirror created coins to PostgreSQL")
	flag.StringVar(&cfg.ClickhouseDSN, "clickhouse-dsn", cfg.ClickhouseDSN, "Mirror created coins to ClickHouse")
	flag.StringVar(&cfg.LogEnv, "log-env", cfg.LogEnv, "Log format (development, production)")
	origins := flag.String("cors-origins", os.Getenv("CORS_ORIGINS"), "Comma-separated origins allowed to call the API")
	flag.Parse()

	log, err := logger.New(cfg.LogEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.WalletKeypair == "" {
		log.Fatal("--keypair is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, log, app.Options{Notifier: creator.LogNotifier(log)})
	if err != nil {
		log.Fatal("failed to start", zap.Error(err))
	}
	defer a.Close()

	payer, _ := a.Payer()
	log.Info("server configured",
		zap.String("cluster", string(a.Cluster)),
		zap.String("payer", payer),
		zap.Bool("metadata", a.Pipeline != nil),
		zap.String("store", cfg.StoreBackend))

	srv := &Server{
		creator:  a.Creator,
		store:    a.Store,
		price:    a.Price,
		metrics:  observability.HandlerFor(a.Registry),
		logger:   log,
		explorer: a.Cluster.ExplorerAddressURL,
		origins:  splitList(*origins),
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Closed once in-flight requests have drained.
	drained := make(chan struct{})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()

		shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
		defer stop()
		go func() {
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Warn("graceful shutdown failed", zap.Error(err))
			}
			close(drained)
		}()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			log.Error("received second signal, forcing exit", zap.String("signal", sig.String()))
			os.Exit(1)
		case <-shutdownCtx.Done():
			log.Error("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-drained:
		}
	}()

	log.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server", zap.Error(err))
	}
	<-drained
	log.Info("shutdown complete")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
