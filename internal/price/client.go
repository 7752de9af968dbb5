// Package price fetches the SOL/USD rate used to show fee estimates.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultURL is the CoinGecko simple price endpoint for SOL in USD.
	DefaultURL     = "https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd"
	defaultTimeout = 10 * time.Second
)

// FallbackSOLPriceUSD is reported when the feed is unavailable.
var FallbackSOLPriceUSD = decimal.RequireFromString("150.25")

// Quote is a SOL price. FromFallback marks the constant fallback rather than a live rate.
type Quote struct {
	USD          decimal.Decimal `json:"usd"`
	FromFallback bool            `json:"from_fallback"`
}

// Convert returns sol expressed in USD, rounded to cents.
func (q Quote) Convert(sol decimal.Decimal) decimal.Decimal {
	return sol.Mul(q.USD).Round(2)
}

// Client reads the price feed. It never returns an error: failures fall back.
type Client struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// Option configures Client.
type Option func(*Client)

// WithURL overrides the feed URL.
func WithURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.url = u
		}
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a price client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		url:    DefaultURL,
		client: &http.Client{Timeout: defaultTimeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type simplePriceResponse map[string]map[string]decimal.Decimal

// SOLPriceUSD returns the current SOL price, or the fallback on any failure.
func (c *Client) SOLPriceUSD(ctx context.Context) Quote {
	usd, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("sol price unavailable, using fallback",
			zap.Error(err),
			zap.String("fallback", FallbackSOLPriceUSD.String()))
		return Quote{USD: FallbackSOLPriceUSD, FromFallback: true}
	}
	return Quote{USD: usd}
}

func (c *Client) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price feed status %d", resp.StatusCode)
	}

	var body simplePriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decode price: %w", err)
	}
	usd, ok := body["solana"]["usd"]
	if !ok || !usd.IsPositive() {
		return decimal.Zero, fmt.Errorf("price feed missing solana.usd")
	}
	return usd, nil
}
