package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PublicKeySize is the length of a decoded Solana address.
const PublicKeySize = 32

// ErrInvalidAddress is returned for strings that are not base58 32-byte keys.
var ErrInvalidAddress = errors.New("invalid address")

// DecodeAddress decodes a base58 address into its 32 raw bytes.
func DecodeAddress(address string) ([]byte, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	b, err := base58.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, address, err)
	}
	if len(b) != PublicKeySize {
		return nil, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidAddress, address, len(b))
	}
	return b, nil
}

// ValidateAddress reports whether address is a well-formed public key.
func ValidateAddress(address string) error {
	_, err := DecodeAddress(address)
	return err
}

// IsOnCurve reports whether the address is a point on the ed25519 curve.
// Wallets are on-curve; program-derived addresses are not.
func IsOnCurve(address string) bool {
	b, err := DecodeAddress(address)
	if err != nil {
		return false
	}
	return isOnCurve(b)
}

func isOnCurve(point []byte) bool {
	if len(point) != PublicKeySize {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// FindProgramAddress derives the program address for seeds, searching bumps
// from 255 downward for the first off-curve hash.
func FindProgramAddress(seeds [][]byte, programID string) (string, uint8, error) {
	program, err := DecodeAddress(programID)
	if err != nil {
		return "", 0, fmt.Errorf("program id: %w", err)
	}

	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(program)
		h.Write([]byte("ProgramDerivedAddress"))
		sum := h.Sum(nil)

		if !isOnCurve(sum) {
			return base58.Encode(sum), uint8(bump), nil
		}
	}
	return "", 0, errors.New("no viable bump seed")
}

// FindAssociatedTokenAddress returns the canonical associated token account
// for owner and mint under the SPL Token program.
func FindAssociatedTokenAddress(owner, mint string) (string, error) {
	ownerKey, err := DecodeAddress(owner)
	if err != nil {
		return "", fmt.Errorf("owner: %w", err)
	}
	mintKey, err := DecodeAddress(mint)
	if err != nil {
		return "", fmt.Errorf("mint: %w", err)
	}
	tokenProgram, err := DecodeAddress(TokenProgramID)
	if err != nil {
		return "", err
	}

	addr, _, err := FindProgramAddress([][]byte{ownerKey, tokenProgram, mintKey}, AssociatedTokenProgramID)
	return addr, err
}
