package clickhouse_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"token-forge/internal/domain"
	"token-forge/internal/storage"
	"token-forge/internal/storage/clickhouse"
	"token-forge/internal/storage/migrations"
)

// setupTestDB starts a ClickHouse container and applies the embedded migrations.
func setupTestDB(t *testing.T) *clickhouse.Conn {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60*time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	dsn := fmt.Sprintf("clickhouse://%s:%s/forge_test", host, port.Port())
	conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestCoinRecordStore(t *testing.T) {
	conn := setupTestDB(t)
	store := clickhouse.NewCoinRecordStore(conn)
	ctx := context.Background()

	first := &domain.CreatedCoinRecord{
		ID: "a", Name: "Solana Doge", Symbol: "SDOGE", Supply: 1_000_000_000, Decimals: 9,
		MintAddress: "mint-a", TransactionID: "sig-a", CreatedAt: 1000,
		Socials: domain.SocialLinks{{Platform: domain.PlatformWebsite, URL: "https://sdoge.io"}},
	}
	second := &domain.CreatedCoinRecord{
		ID: "b", Name: "Other", Symbol: "OTH", Supply: 1, MintAddress: "mint-b",
		TransactionID: "sig-b", CreatedAt: 2000, HasMetadata: true, MetadataURI: "https://x/ipfs/y",
	}

	require.NoError(t, store.Prepend(ctx, first))
	require.NoError(t, store.Prepend(ctx, second))
	assert.ErrorIs(t, store.Prepend(ctx, first), storage.ErrDuplicateKey)

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.True(t, got[0].HasMetadata)

	rec, err := store.GetByMint(ctx, "mint-a")
	require.NoError(t, err)
	assert.Equal(t, first.Socials, rec.Socials)
	assert.Equal(t, uint8(9), rec.Decimals)

	_, err = store.GetByMint(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
