package stub

import (
	"context"
	"errors"
	"sync"

	"daio-rewards/internal/solana"
)

// ErrNotFound is returned when a block time is not found.
var ErrNotFound = errors.New("not found")

// RPCClient implements solana.RPCClient for testing.
// Fail injects an error for a method name.
type RPCClient struct {
	mu            sync.Mutex
	TokenAccounts map[string][]solana.TokenAccount
	Accounts      map[string]*solana.AccountInfo
	Signatures    map[string][]solana.SignatureInfo
	BlockTimes    map[int64]int64
	Fail          map[string]error
	Calls         map[string]int
}

// Compile-time interface check.
var _ solana.RPCClient = (*RPCClient)(nil)

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		TokenAccounts: make(map[string][]solana.TokenAccount),
		Accounts:      make(map[string]*solana.AccountInfo),
		Signatures:    make(map[string][]solana.SignatureInfo),
		BlockTimes:    make(map[int64]int64),
		Fail:          make(map[string]error),
		Calls:         make(map[string]int),
	}
}

func (c *RPCClient) record(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls[method]++
	return c.Fail[method]
}

// CallCount returns how many times method was invoked.
func (c *RPCClient) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Calls[method]
}

// GetTokenAccountsByOwner returns the token accounts registered for owner.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner, _ string) ([]solana.TokenAccount, error) {
	if err := c.record("getTokenAccountsByOwner"); err != nil {
		return nil, err
	}
	return c.TokenAccounts[owner], nil
}

// GetAccountInfo returns the registered account, or nil if absent.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	if err := c.record("getAccountInfo"); err != nil {
		return nil, err
	}
	return c.Accounts[pubkey], nil
}

// GetSignaturesForAddress pages through the registered signatures, which are
// stored newest first like the real endpoint.
func (c *RPCClient) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	if err := c.record("getSignaturesForAddress"); err != nil {
		return nil, err
	}
	sigs, ok := c.Signatures[address]
	if !ok {
		return nil, nil
	}

	if opts != nil && opts.Before != "" {
		idx := -1
		for i, s := range sigs {
			if s.Signature == opts.Before {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil
		}
		sigs = sigs[idx+1:]
	}

	// Apply limit if specified
	if opts != nil && opts.Limit > 0 && opts.Limit < len(sigs) {
		return sigs[:opts.Limit], nil
	}

	return sigs, nil
}

// GetBlockTime returns the registered block time for slot.
func (c *RPCClient) GetBlockTime(_ context.Context, slot int64) (*int64, error) {
	if err := c.record("getBlockTime"); err != nil {
		return nil, err
	}
	bt, ok := c.BlockTimes[slot]
	if !ok {
		return nil, ErrNotFound
	}
	return &bt, nil
}

// AddTokenAccount registers a parsed token account owned by owner.
func (c *RPCClient) AddTokenAccount(owner, pubkey, mint string) {
	acct := solana.TokenAccount{
		Pubkey: pubkey,
		Account: solana.AccountInfo{
			Owner: solana.TokenProgramID,
			Parsed: &solana.ParsedData{
				Program: "spl-token",
				Type:    "account",
				Info:    []byte(`{"mint":"` + mint + `","owner":"` + owner + `","tokenAmount":{"amount":"1"}}`),
			},
		},
	}
	c.TokenAccounts[owner] = append(c.TokenAccounts[owner], acct)
	c.Accounts[pubkey] = &acct.Account
}

// AddMint registers a parsed mint account with the given authority.
func (c *RPCClient) AddMint(mint, authority string) {
	auth := "null"
	if authority != "" {
		auth = `"` + authority + `"`
	}
	c.Accounts[mint] = &solana.AccountInfo{
		Owner: solana.TokenProgramID,
		Parsed: &solana.ParsedData{
			Program: "spl-token",
			Type:    "mint",
			Info:    []byte(`{"mintAuthority":` + auth + `,"supply":"1000","decimals":6,"isInitialized":true,"freezeAuthority":null}`),
		},
	}
}

// AddSignatures adds signatures for an address to the stub store.
func (c *RPCClient) AddSignatures(address string, sigs []solana.SignatureInfo) {
	c.Signatures[address] = sigs
}
