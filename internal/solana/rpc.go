package solana

import "context"

// Well-known program addresses.
const (
	TokenProgramID           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
)

// RPCClient defines Solana RPC HTTP interface.
type RPCClient interface {
	// GetTokenAccountsByOwner lists token accounts owned by owner under programID.
	GetTokenAccountsByOwner(ctx context.Context, owner, programID string) ([]TokenAccount, error)

	// GetAccountInfo retrieves account info by public key.
	// Returns nil, nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	// Results are ordered newest first.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetBlockTime retrieves the estimated production time of a block.
	GetBlockTime(ctx context.Context, slot int64) (*int64, error)
}
