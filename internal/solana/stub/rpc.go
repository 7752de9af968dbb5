// Package stub provides an in-memory solana.RPCClient for tests.
package stub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mr-tron/base58"

	"token-forge/internal/solana"
)

// ErrNotFound is returned when a requested item was never seeded.
var ErrNotFound = errors.New("not found")

// RPCClient implements solana.RPCClient for testing.
// Sent transactions are confirmed immediately unless FailSignatures says otherwise.
type RPCClient struct {
	mu sync.Mutex

	Balances    map[string]uint64
	Accounts    map[string]*solana.AccountInfo
	Statuses    map[string]*solana.SignatureStatus
	Blockhash   solana.Blockhash
	BlockHeight uint64
	RentExempt  uint64

	// AccountDelay hides an account for this many GetAccountInfo calls after it is created.
	AccountDelay int
	// AccountsOnSend are created (owned by the token program) when the next transaction is sent.
	AccountsOnSend []string
	// SendErr, when set, is returned by SendTransaction.
	SendErr error
	// FailSignatures maps a send ordinal (1-based) to an on-chain error.
	FailSignatures map[int]interface{}

	Sent     [][]byte
	Airdrops map[string]uint64
	calls    map[string]int
	hidden   map[string]int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Balances: make(map[string]uint64),
		Accounts: make(map[string]*solana.AccountInfo),
		Statuses: make(map[string]*solana.SignatureStatus),
		Blockhash: solana.Blockhash{
			Blockhash:            "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N",
			LastValidBlockHeight: 1150,
		},
		BlockHeight:    1000,
		RentExempt:     1461600,
		FailSignatures: make(map[int]interface{}),
		Airdrops:       make(map[string]uint64),
		calls:          make(map[string]int),
		hidden:         make(map[string]int),
	}
}

func (c *RPCClient) count(method string) {
	c.calls[method]++
}

// Calls returns how many times method was invoked.
func (c *RPCClient) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// SentCount returns the number of transactions sent.
func (c *RPCClient) SentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Sent)
}

// SetBalance seeds the balance of address.
func (c *RPCClient) SetBalance(address string, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Balances[address] = lamports
}

// AddAccount seeds an account.
func (c *RPCClient) AddAccount(address string, info *solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[address] = info
	c.hidden[address] = c.AccountDelay
}

// GetBalance returns the seeded balance (0 when unknown).
func (c *RPCClient) GetBalance(_ context.Context, address string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count("getBalance")
	return c.Balances[address], nil
}

// GetLatestBlockhash returns the seeded blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context) (*solana.Blockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count("getLatestBlockhash")
	bh := c.Blockhash
	return &bh, nil
}

// GetMinimumBalanceForRentExemption returns RentExempt regardless of size.
func (c *RPCClient) GetMinimumBalanceForRentExemption(_ context.Context, _ uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count("getMinimumBalanceForRentExemption")
	return c.RentExempt, nil
}

// SendTransaction records raw and returns the first signature of the wire transaction.
func (c *RPCClient) SendTransaction(_ context.Context, raw []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count("sendTransaction")

	if c.SendErr != nil {
		return "", c.SendErr
	}
	sig, err := FirstSignature(raw)
	if err != nil {
		return "", err
	}

	c.Sent = append(c.Sent, raw)
	status := &solana.SignatureStatus{Slot: c.BlockHeight, ConfirmationStatus: solana.CommitmentConfirmed}
	if e, ok := c.FailSignatures[len(c.Sent)]; ok {
		status.Err = e
	}
	c.Statuses[sig] = status

	for _, addr := range c.AccountsOnSend {
		c.Accounts[addr] = &solana.AccountInfo{Lamports: c.RentExempt, Owner: solana.TokenProgramID}
		c.hidden[addr] = c.AccountDelay
	}
	c.AccountsOnSend = nil

	return sig, nil
}

// GetSignatureStatuses returns the recorded statuses.
func (c *RPCClient) GetSignatureStatuses(_ context.Context, signatures ...string) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count("getSignatureStatuses")

	out := make([]*solana.SignatureStatus, len(signatures))
	for i, s := range signatures {
		if st, ok := c.Statuses[s]; ok {
			cp := *st
			out[i] = &cp
		}
	}
	return out, nil
}

// GetBlockHeight returns BlockHeight.
func (c *RPCClient) GetBlockHeight(_ context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count("getBlockHeight")
	return c.BlockHeight, nil
}

// GetAccountInfo returns the seeded account, honoring AccountDelay.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count("getAccountInfo")

	info, ok := c.Accounts[pubkey]
	if !ok {
		return nil, nil
	}
	if c.hidden[pubkey] > 0 {
		c.hidden[pubkey]--
		return nil, nil
	}
	cp := *info
	return &cp, nil
}

// RequestAirdrop credits the balance and records a confirmed signature.
func (c *RPCClient) RequestAirdrop(_ context.Context, address string, lamports uint64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count("requestAirdrop")

	c.Airdrops[address] += lamports
	c.Balances[address] += lamports
	sig := fmt.Sprintf("airdrop-%s-%d", address, len(c.Airdrops))
	c.Statuses[sig] = &solana.SignatureStatus{ConfirmationStatus: solana.CommitmentFinalized}
	return sig, nil
}

// FirstSignature extracts the fee payer signature from a wire transaction.
func FirstSignature(raw []byte) (string, error) {
	if len(raw) < 65 || raw[0] == 0 || raw[0] > 0x7f {
		return "", fmt.Errorf("malformed wire transaction")
	}
	return base58.Encode(raw[1:65]), nil
}

var _ solana.RPCClient = (*RPCClient)(nil)
