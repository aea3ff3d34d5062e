package solana

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mr-tron/base58"
)

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}

// TokenAccount is an entry from getTokenAccountsByOwner.
type TokenAccount struct {
	Pubkey  string
	Account AccountInfo
}

// AccountInfo represents Solana account information.
// Exactly one of Parsed or Raw is usually populated: jsonParsed responses for
// known programs carry Parsed, everything else carries the raw bytes.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Executable bool
	RentEpoch  uint64
	Raw        []byte
	Parsed     *ParsedData
}

// ParsedData is the jsonParsed form of account data.
type ParsedData struct {
	Program string
	Type    string
	Info    json.RawMessage
}

// TokenAccountData is the decoded content of an SPL token account.
type TokenAccountData struct {
	Mint   string
	Owner  string
	Amount uint64
}

// MintData is the decoded content of an SPL mint account.
type MintData struct {
	MintAuthority   string // empty when the authority is unset
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority string
}

// Account data layouts.
const (
	TokenAccountSize = 165
	MintAccountSize  = 82
)

// ErrUnexpectedData is returned when account data is not in the expected layout.
var ErrUnexpectedData = errors.New("unexpected account data")

// TokenAccount decodes the account as an SPL token account.
func (a *AccountInfo) TokenAccount() (*TokenAccountData, error) {
	if a.Parsed != nil {
		if a.Parsed.Type != "account" {
			return nil, fmt.Errorf("%w: parsed type %q", ErrUnexpectedData, a.Parsed.Type)
		}
		var info struct {
			Mint        string `json:"mint"`
			Owner       string `json:"owner"`
			TokenAmount struct {
				Amount string `json:"amount"`
			} `json:"tokenAmount"`
		}
		if err := json.Unmarshal(a.Parsed.Info, &info); err != nil {
			return nil, fmt.Errorf("decode parsed token account: %w", err)
		}
		if info.Mint == "" {
			return nil, fmt.Errorf("%w: token account without mint", ErrUnexpectedData)
		}
		amount, err := parseAmount(info.TokenAmount.Amount)
		if err != nil {
			return nil, err
		}
		return &TokenAccountData{Mint: info.Mint, Owner: info.Owner, Amount: amount}, nil
	}

	// Layout: mint(32) | owner(32) | amount(8) | ...
	if len(a.Raw) < 72 {
		return nil, fmt.Errorf("%w: token account data too short: %d", ErrUnexpectedData, len(a.Raw))
	}
	return &TokenAccountData{
		Mint:   base58.Encode(a.Raw[0:32]),
		Owner:  base58.Encode(a.Raw[32:64]),
		Amount: binary.LittleEndian.Uint64(a.Raw[64:72]),
	}, nil
}

// Mint decodes the account as an SPL mint.
func (a *AccountInfo) Mint() (*MintData, error) {
	if a.Parsed != nil {
		if a.Parsed.Type != "mint" {
			return nil, fmt.Errorf("%w: parsed type %q", ErrUnexpectedData, a.Parsed.Type)
		}
		var info struct {
			MintAuthority   *string `json:"mintAuthority"`
			Supply          string  `json:"supply"`
			Decimals        uint8   `json:"decimals"`
			IsInitialized   bool    `json:"isInitialized"`
			FreezeAuthority *string `json:"freezeAuthority"`
		}
		if err := json.Unmarshal(a.Parsed.Info, &info); err != nil {
			return nil, fmt.Errorf("decode parsed mint: %w", err)
		}
		m := &MintData{Decimals: info.Decimals, IsInitialized: info.IsInitialized}
		if info.MintAuthority != nil {
			m.MintAuthority = *info.MintAuthority
		}
		if info.FreezeAuthority != nil {
			m.FreezeAuthority = *info.FreezeAuthority
		}
		supply, err := parseAmount(info.Supply)
		if err != nil {
			return nil, err
		}
		m.Supply = supply
		return m, nil
	}

	// Layout: authorityOption(4) | authority(32) | supply(8) | decimals(1) |
	// initialized(1) | freezeOption(4) | freezeAuthority(32)
	if len(a.Raw) < MintAccountSize {
		return nil, fmt.Errorf("%w: mint data too short: %d", ErrUnexpectedData, len(a.Raw))
	}
	m := &MintData{
		Supply:        binary.LittleEndian.Uint64(a.Raw[36:44]),
		Decimals:      a.Raw[44],
		IsInitialized: a.Raw[45] != 0,
	}
	if binary.LittleEndian.Uint32(a.Raw[0:4]) == 1 {
		m.MintAuthority = base58.Encode(a.Raw[4:36])
	}
	if binary.LittleEndian.Uint32(a.Raw[46:50]) == 1 {
		m.FreezeAuthority = base58.Encode(a.Raw[50:82])
	}
	return m, nil
}

// parseAmount parses a u64 amount encoded as a decimal string.
func parseAmount(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", ErrUnexpectedData, s)
	}
	return v, nil
}
