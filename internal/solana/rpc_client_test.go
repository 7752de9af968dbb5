package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// rpcServer answers every request with result, checking the method when want is set.
func rpcServer(t *testing.T, want string, result interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if want != "" && req.Method != want {
			t.Errorf("expected method %s, got %s", want, req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPClient_GetBalance(t *testing.T) {
	server := rpcServer(t, "getBalance", map[string]interface{}{
		"context": map[string]interface{}{"slot": 1},
		"value":   uint64(2_500_000_000),
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	balance, err := client.GetBalance(context.Background(), "payer")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance != 2_500_000_000 {
		t.Errorf("expected 2500000000 lamports, got %d", balance)
	}
}

func TestHTTPClient_GetLatestBlockhash(t *testing.T) {
	server := rpcServer(t, "getLatestBlockhash", map[string]interface{}{
		"value": map[string]interface{}{
			"blockhash":            "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N",
			"lastValidBlockHeight": uint64(3090),
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	bh, err := client.GetLatestBlockhash(context.Background())
	if err != nil {
		t.Fatalf("GetLatestBlockhash: %v", err)
	}
	if bh.Blockhash != "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N" {
		t.Errorf("unexpected blockhash %s", bh.Blockhash)
	}
	if bh.LastValidBlockHeight != 3090 {
		t.Errorf("expected lastValidBlockHeight 3090, got %d", bh.LastValidBlockHeight)
	}
}

func TestHTTPClient_SendTransaction(t *testing.T) {
	raw := []byte{1, 2, 3, 4}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Method != "sendTransaction" {
			t.Errorf("expected sendTransaction, got %s", req.Method)
		}
		if len(req.Params) != 2 {
			t.Errorf("expected 2 params, got %d", len(req.Params))
			return
		}
		if req.Params[0] != base64.StdEncoding.EncodeToString(raw) {
			t.Errorf("unexpected wire tx %v", req.Params[0])
		}
		cfg, _ := req.Params[1].(map[string]interface{})
		if cfg["encoding"] != "base64" {
			t.Errorf("expected base64 encoding, got %v", cfg["encoding"])
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "5sig",
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	sig, err := client.SendTransaction(context.Background(), raw)
	if err != nil {
		t.Fatalf("SendTransaction: %v", err)
	}
	if sig != "5sig" {
		t.Errorf("expected signature 5sig, got %s", sig)
	}
}

func TestHTTPClient_GetSignatureStatuses(t *testing.T) {
	server := rpcServer(t, "getSignatureStatuses", map[string]interface{}{
		"value": []interface{}{
			map[string]interface{}{
				"slot":               uint64(72),
				"confirmations":      uint64(10),
				"err":                nil,
				"confirmationStatus": "confirmed",
			},
			nil,
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	statuses, err := client.GetSignatureStatuses(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("GetSignatureStatuses: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if !statuses[0].Reached(CommitmentConfirmed) {
		t.Errorf("expected first signature confirmed, got %+v", statuses[0])
	}
	if statuses[0].Reached(CommitmentFinalized) {
		t.Error("confirmed must not count as finalized")
	}
	if statuses[1] != nil {
		t.Errorf("expected nil status for unknown signature, got %+v", statuses[1])
	}
}

func TestHTTPClient_Retry(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := attempts.Add(1)
		if count < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  uint64(999),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL,
		WithMaxRetries(3),
		WithRetryDelay(10*time.Millisecond),
	)

	height, err := client.GetBlockHeight(context.Background())
	if err != nil {
		t.Fatalf("GetBlockHeight: %v", err)
	}

	if height != 999 {
		t.Errorf("expected height 999, got %d", height)
	}

	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestHTTPClient_RPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error": map[string]interface{}{
				"code":    -32002,
				"message": "Transaction simulation failed: Attempt to debit an account but found no record of a prior credit.",
				"data":    map[string]interface{}{"logs": []string{}},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	_, err := client.SendTransaction(context.Background(), []byte{1})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %T", err)
	}

	if rpcErr.Code != -32002 {
		t.Errorf("expected code -32002, got %d", rpcErr.Code)
	}
	if len(rpcErr.Data) == 0 {
		t.Error("expected error data to be preserved")
	}
}

func TestHTTPClient_GetAccountInfo(t *testing.T) {
	server := rpcServer(t, "getAccountInfo", map[string]interface{}{
		"value": map[string]interface{}{
			"lamports":   uint64(1461600),
			"owner":      "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
			"data":       []string{"SGVsbG8gV29ybGQ=", "base64"},
			"executable": false,
			"rentEpoch":  uint64(100),
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)

	info, err := client.GetAccountInfo(context.Background(), "mint")
	if err != nil {
		t.Fatalf("GetAccountInfo: %v", err)
	}

	if info == nil {
		t.Fatal("expected account info, got nil")
	}

	if info.Lamports != 1461600 {
		t.Errorf("expected lamports 1461600, got %d", info.Lamports)
	}

	if info.Owner != "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA" {
		t.Errorf("unexpected owner: %s", info.Owner)
	}

	if info.Data != "SGVsbG8gV29ybGQ=" {
		t.Errorf("unexpected data: %s", info.Data)
	}
}

func TestHTTPClient_GetAccountInfo_NotFound(t *testing.T) {
	server := rpcServer(t, "", map[string]interface{}{"value": nil})
	defer server.Close()

	client := NewHTTPClient(server.URL)

	info, err := client.GetAccountInfo(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("GetAccountInfo: %v", err)
	}

	if info != nil {
		t.Errorf("expected nil for not found, got %+v", info)
	}
}

func TestHTTPClient_Observer(t *testing.T) {
	server := rpcServer(t, "getMinimumBalanceForRentExemption", uint64(1461600))
	defer server.Close()

	var seen string
	client := NewHTTPClient(server.URL, WithObserver(func(method string, _ time.Duration, err error) {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		seen = method
	}))

	rent, err := client.GetMinimumBalanceForRentExemption(context.Background(), 82)
	if err != nil {
		t.Fatalf("GetMinimumBalanceForRentExemption: %v", err)
	}
	if rent != 1461600 {
		t.Errorf("expected 1461600, got %d", rent)
	}
	if seen != "getMinimumBalanceForRentExemption" {
		t.Errorf("observer saw %q", seen)
	}
}

func TestHTTPClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := client.GetBlockHeight(ctx)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
