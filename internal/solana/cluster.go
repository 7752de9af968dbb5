package solana

import (
	"fmt"
	"strings"
)

// Cluster is a Solana network.
type Cluster string

const (
	Devnet  Cluster = "devnet"
	Testnet Cluster = "testnet"
	Mainnet Cluster = "mainnet-beta"
)

// ParseCluster accepts devnet, testnet, mainnet or mainnet-beta.
func ParseCluster(s string) (Cluster, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "devnet":
		return Devnet, nil
	case "testnet":
		return Testnet, nil
	case "mainnet", "mainnet-beta":
		return Mainnet, nil
	default:
		return "", fmt.Errorf("unknown cluster %q", s)
	}
}

// RPCEndpoint returns the public HTTP endpoint.
func (c Cluster) RPCEndpoint() string {
	return "https://api." + string(c) + ".solana.com"
}

// WSEndpoint returns the public WebSocket endpoint.
func (c Cluster) WSEndpoint() string {
	return "wss://api." + string(c) + ".solana.com"
}

// ExplorerAddressURL links an address on the Solana explorer.
func (c Cluster) ExplorerAddressURL(address string) string {
	return fmt.Sprintf("https://explorer.solana.com/address/%s?cluster=%s", address, c)
}

// ExplorerTxURL links a transaction on the Solana explorer.
func (c Cluster) ExplorerTxURL(signature string) string {
	return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=%s", signature, c)
}
