package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"token-forge/internal/config"
	"token-forge/internal/domain"
	"token-forge/internal/storage"
)

func writeKeypair(t *testing.T, acc types.Account) string {
	t.Helper()
	ints := make([]int, len(acc.PrivateKey))
	for i, b := range acc.PrivateKey {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Cluster:         "devnet",
		RPCEndpoint:     "http://127.0.0.1:1",
		OwnerAddress:    config.DefaultOwnerAddress,
		PinataGateway:   "https://gateway.pinata.cloud",
		MetadataPolicy:  "accept-unvalidated",
		StoreBackend:    "memory",
		MintWaitTimeout: time.Second,
		ConfirmTimeout:  time.Second,
	}
}

func TestNew_MemoryWithoutPinning(t *testing.T) {
	acc := types.NewAccount()
	cfg := testConfig(t)
	cfg.WalletKeypair = writeKeypair(t, acc)

	a, err := New(context.Background(), cfg, zap.NewNop(), Options{})
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Pipeline)
	assert.NotNil(t, a.Creator)
	payer, err := a.Payer()
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey.ToBase58(), payer)
}

func TestNew_SQLiteWithPinning(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreBackend = "sqlite"
	cfg.StorePath = filepath.Join(t.TempDir(), "coins.db")
	cfg.PinataJWT = "jwt"

	a, err := New(context.Background(), cfg, zap.NewNop(), Options{MetricsNamespace: "apptest"})
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Pipeline)
	_, err = a.Payer()
	assert.ErrorIs(t, err, ErrNoWallet)

	ctx := context.Background()
	rec := &domain.CreatedCoinRecord{ID: "id-1", Name: "Solana Doge", Symbol: "SDOGE", MintAddress: "mint-1"}
	require.NoError(t, a.Store.Prepend(ctx, rec))
	got, err := a.Store.GetByMint(ctx, "mint-1")
	require.NoError(t, err)
	assert.Equal(t, "SDOGE", got.Symbol)
	_, err = a.Store.GetByMint(ctx, "mint-2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"unknown backend", func(c *config.Config) { c.StoreBackend = "redis" }},
		{"unknown cluster", func(c *config.Config) { c.Cluster = "localnet-x" }},
		{"bad owner", func(c *config.Config) { c.OwnerAddress = "nope" }},
		{"bad fee", func(c *config.Config) { c.FeeBase = "abc" }},
		{"missing keypair", func(c *config.Config) { c.WalletKeypair = "/nonexistent/id.json" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			_, err := New(context.Background(), cfg, zap.NewNop(), Options{})
			assert.Error(t, err)
		})
	}
}
