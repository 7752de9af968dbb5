package solana_test

import (
	"context"
	"testing"
	"time"

	"token-forge/internal/apperr"
	"token-forge/internal/solana"
	"token-forge/internal/solana/stub"
)

func TestConfirmer_Confirmed(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.Statuses["sig"] = &solana.SignatureStatus{ConfirmationStatus: solana.CommitmentConfirmed}

	c := solana.NewConfirmer(rpc, solana.WithPollInterval(5*time.Millisecond))
	if err := c.Confirm(context.Background(), "sig", 1150); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
}

func TestConfirmer_OnChainError(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.Statuses["sig"] = &solana.SignatureStatus{
		ConfirmationStatus: solana.CommitmentConfirmed,
		Err:                map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
	}

	c := solana.NewConfirmer(rpc, solana.WithPollInterval(5*time.Millisecond))
	err := c.Confirm(context.Background(), "sig", 1150)
	if apperr.KindOf(err) != apperr.KindTransaction {
		t.Fatalf("expected transaction error, got %v", err)
	}
}

func TestConfirmer_BlockhashExpired(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.BlockHeight = 2000

	c := solana.NewConfirmer(rpc, solana.WithPollInterval(5*time.Millisecond))
	err := c.Confirm(context.Background(), "unknown", 1150)
	if apperr.KindOf(err) != apperr.KindTransaction {
		t.Fatalf("expected transaction error, got %v", err)
	}
}

func TestConfirmer_Deadline(t *testing.T) {
	rpc := stub.NewRPCClient()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	c := solana.NewConfirmer(rpc, solana.WithPollInterval(5*time.Millisecond))
	err := c.Confirm(ctx, "pending", 1150)
	if apperr.KindOf(err) != apperr.KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestAccountWaiter_AppearsAfterPolling(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AccountDelay = 2
	rpc.AddAccount("mint", &solana.AccountInfo{Owner: solana.TokenProgramID})

	w := solana.NewAccountWaiter(rpc, time.Second, nil).WithIntervals(time.Millisecond, 5*time.Millisecond)
	info, err := w.Wait(context.Background(), "mint", solana.TokenProgramID)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if info.Owner != solana.TokenProgramID {
		t.Errorf("unexpected owner %s", info.Owner)
	}
	if got := rpc.Calls("getAccountInfo"); got != 3 {
		t.Errorf("expected 3 polls, got %d", got)
	}
}

func TestAccountWaiter_Timeout(t *testing.T) {
	rpc := stub.NewRPCClient()

	w := solana.NewAccountWaiter(rpc, 40*time.Millisecond, nil).WithIntervals(time.Millisecond, 5*time.Millisecond)
	_, err := w.Wait(context.Background(), "missing", "")
	if apperr.KindOf(err) != apperr.KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestAccountWaiter_WrongOwner(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddAccount("mint", &solana.AccountInfo{Owner: solana.SystemProgramID})

	w := solana.NewAccountWaiter(rpc, time.Second, nil).WithIntervals(time.Millisecond, 5*time.Millisecond)
	_, err := w.Wait(context.Background(), "mint", solana.TokenProgramID)
	if apperr.KindOf(err) != apperr.KindTransaction {
		t.Fatalf("expected transaction error, got %v", err)
	}
	if got := rpc.Calls("getAccountInfo"); got != 1 {
		t.Errorf("owner mismatch must not be retried, got %d calls", got)
	}
}

func TestAirdropper(t *testing.T) {
	rpc := stub.NewRPCClient()
	confirmer := solana.NewConfirmer(rpc, solana.WithPollInterval(5*time.Millisecond))
	addr := "6ASNcMLW2rQjt11hWzh9J4TFKUVJHVXUAcyDR9JNcawh"

	_, err := solana.NewAirdropper(solana.Mainnet, rpc, confirmer).Request(context.Background(), addr, solana.LamportsPerSOL)
	if apperr.KindOf(err) != apperr.KindUnsupportedNetwork {
		t.Fatalf("expected unsupported network, got %v", err)
	}

	sig, err := solana.NewAirdropper(solana.Devnet, rpc, confirmer).Request(context.Background(), addr, solana.LamportsPerSOL)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if sig == "" {
		t.Error("expected airdrop signature")
	}
	if rpc.Balances[addr] != solana.LamportsPerSOL {
		t.Errorf("expected balance credited, got %d", rpc.Balances[addr])
	}
}

func TestParseCluster(t *testing.T) {
	for in, want := range map[string]solana.Cluster{
		"":             solana.Devnet,
		"Devnet":       solana.Devnet,
		"testnet":      solana.Testnet,
		"mainnet":      solana.Mainnet,
		"mainnet-beta": solana.Mainnet,
	} {
		got, err := solana.ParseCluster(in)
		if err != nil || got != want {
			t.Errorf("ParseCluster(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := solana.ParseCluster("localnet"); err == nil {
		t.Error("expected error for unknown cluster")
	}
	if got := solana.Devnet.ExplorerAddressURL("abc"); got != "https://explorer.solana.com/address/abc?cluster=devnet" {
		t.Errorf("unexpected explorer url %s", got)
	}
}
