package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"cairn/research-portal/portal-backend/pkg/chain"
)

// WalletProvider resolves the account a connecting user controls
type WalletProvider interface {
	RequestAccounts(ctx context.Context) ([]string, error)
	// Simulated reports whether accounts are mocked
	Simulated() bool
}

type rpcWallet struct {
	url     string
	timeout time.Duration
}

// NewRPCWallet asks the JSON-RPC endpoint at url for its accounts
func NewRPCWallet(url string, timeout time.Duration) WalletProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &rpcWallet{url: url, timeout: timeout}
}

func (w *rpcWallet) RequestAccounts(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	client, err := rpc.DialContext(ctx, w.url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial wallet rpc: %w", err)
	}
	defer client.Close()

	var accounts []string
	if err := client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, fmt.Errorf("eth_requestAccounts failed: %w", err)
	}
	for i := range accounts {
		accounts[i] = chain.NormalizeAddress(accounts[i])
	}
	return accounts, nil
}

func (w *rpcWallet) Simulated() bool { return false }

type mockWallet struct {
	account string
}

// NewMockWallet always connects account
func NewMockWallet(account string) WalletProvider {
	return &mockWallet{account: account}
}

func (w *mockWallet) RequestAccounts(ctx context.Context) ([]string, error) {
	return []string{w.account}, nil
}

func (w *mockWallet) Simulated() bool { return true }

// NewWalletProvider uses the RPC endpoint when one is configured and
// simulates mockAccount otherwise
func NewWalletProvider(rpcURL, mockAccount string, timeout time.Duration) WalletProvider {
	if rpcURL == "" {
		return NewMockWallet(mockAccount)
	}
	return NewRPCWallet(rpcURL, timeout)
}
