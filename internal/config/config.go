// Package config loads runtime settings from the environment.
// An optional .env file is read first; binaries then let flags override these values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting shared by cmd/forge and cmd/server.
type Config struct {
	Cluster     string
	RPCEndpoint string
	WSEndpoint  string

	WalletKeypair string
	OwnerAddress  string

	PinataAPIKey    string
	PinataSecretKey string
	PinataJWT       string
	PinataGateway   string
	MetadataPolicy  string

	MintWaitTimeout time.Duration
	ConfirmTimeout  time.Duration
	StepDelay       time.Duration

	StoreBackend  string // file | sqlite | memory
	StorePath     string
	PostgresDSN   string
	ClickhouseDSN string

	LogEnv      string
	PriceAPIURL string
	HTTPAddr    string

	FeeBase         string
	FeeRevokeMint   string
	FeeRevokeUpdate string
	FeeRevokeFreeze string
	FeeSocials      string
}

// DefaultOwnerAddress receives service fees when OWNER_WALLET_ADDRESS is unset.
const DefaultOwnerAddress = "6ASNcMLW2rQjt11hWzh9J4TFKUVJHVXUAcyDR9JNcawh"

// LoadEnvFile loads path (default ".env") if it exists. Missing files are ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv reads Config from environment variables, applying defaults.
func FromEnv() (*Config, error) {
	c := &Config{
		Cluster:         getenv("SOLANA_CLUSTER", "devnet"),
		RPCEndpoint:     os.Getenv("SOLANA_RPC_ENDPOINT"),
		WSEndpoint:      os.Getenv("SOLANA_WS_ENDPOINT"),
		WalletKeypair:   os.Getenv("WALLET_KEYPAIR"),
		OwnerAddress:    getenv("OWNER_WALLET_ADDRESS", DefaultOwnerAddress),
		PinataAPIKey:    os.Getenv("PINATA_API_KEY"),
		PinataSecretKey: os.Getenv("PINATA_SECRET_KEY"),
		PinataJWT:       os.Getenv("PINATA_JWT"),
		PinataGateway:   getenv("PINATA_GATEWAY", "https://gateway.pinata.cloud"),
		MetadataPolicy:  getenv("METADATA_POLICY", "accept-unvalidated"),
		StoreBackend:    getenv("STORE_BACKEND", "file"),
		StorePath:       getenv("STORE_PATH", "created_coins.json"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN:   os.Getenv("CLICKHOUSE_DSN"),
		LogEnv:          getenv("LOG_ENV", "development"),
		PriceAPIURL:     os.Getenv("PRICE_API_URL"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		FeeBase:         os.Getenv("FEE_BASE"),
		FeeRevokeMint:   os.Getenv("FEE_REVOKE_MINT"),
		FeeRevokeUpdate: os.Getenv("FEE_REVOKE_UPDATE"),
		FeeRevokeFreeze: os.Getenv("FEE_REVOKE_FREEZE"),
		FeeSocials:      os.Getenv("FEE_SOCIALS"),
	}

	var err error
	if c.MintWaitTimeout, err = durationEnv("MINT_WAIT_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if c.ConfirmTimeout, err = durationEnv("CONFIRM_TIMEOUT", 90*time.Second); err != nil {
		return nil, err
	}
	if c.StepDelay, err = durationEnv("STEP_DELAY", 0); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values that have a fixed set of options.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("STORE_BACKEND must be file, sqlite or memory, got %q", c.StoreBackend)
	}
	switch c.MetadataPolicy {
	case "accept-unvalidated", "strict":
	default:
		return fmt.Errorf("METADATA_POLICY must be accept-unvalidated or strict, got %q", c.MetadataPolicy)
	}
	return nil
}

// HasPinata reports whether any pinning credentials are configured.
func (c *Config) HasPinata() bool {
	return c.PinataJWT != "" || (c.PinataAPIKey != "" && c.PinataSecretKey != "")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// durationEnv accepts Go durations ("30s") or a plain number of seconds.
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return time.Duration(secs) * time.Second, nil
}
