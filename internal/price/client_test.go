package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClient_SOLPriceUSD(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"solana":{"usd":172.43}}`))
	}))
	defer server.Close()

	q := NewClient(WithURL(server.URL)).SOLPriceUSD(context.Background())

	assert.False(t, q.FromFallback)
	assert.True(t, decimal.RequireFromString("172.43").Equal(q.USD))
}

func TestClient_Fallback(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`nope`)) }},
		{"missing key", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"bitcoin":{"usd":1}}`)) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			q := NewClient(WithURL(server.URL)).SOLPriceUSD(context.Background())

			assert.True(t, q.FromFallback)
			assert.True(t, FallbackSOLPriceUSD.Equal(q.USD))
		})
	}
}

func TestQuote_Convert(t *testing.T) {
	q := Quote{USD: decimal.RequireFromString("150.25")}
	assert.Equal(t, "30.05", q.Convert(decimal.RequireFromString("0.2")).StringFixed(2))
}
