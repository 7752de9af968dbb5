package solana

import "context"

// RPCClient defines the Solana RPC HTTP methods used to build, send and confirm transactions.
type RPCClient interface {
	// GetBalance returns the lamport balance of address.
	GetBalance(ctx context.Context, address string) (uint64, error)

	// GetLatestBlockhash returns a recent blockhash and the last block height it stays valid for.
	GetLatestBlockhash(ctx context.Context) (*Blockhash, error)

	// GetMinimumBalanceForRentExemption returns the lamports needed for an account of size bytes.
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)

	// SendTransaction submits a signed wire transaction and returns its signature.
	SendTransaction(ctx context.Context, rawTx []byte) (string, error)

	// GetSignatureStatuses returns one status per signature; nil entries are unknown signatures.
	GetSignatureStatuses(ctx context.Context, signatures ...string) ([]*SignatureStatus, error)

	// GetBlockHeight returns the current block height.
	GetBlockHeight(ctx context.Context) (uint64, error)

	// GetAccountInfo retrieves account info. Returns nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// RequestAirdrop asks the cluster faucet for lamports and returns the airdrop signature.
	RequestAirdrop(ctx context.Context, address string, lamports uint64) (string, error)
}
