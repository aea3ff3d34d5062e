package solana

import (
	"errors"
	"testing"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"issuer", "GF6AF7pJZnKNeZvLQ8Jwx7j2uSWSNRZMgan3BCbHbVSr", false},
		{"token program", TokenProgramID, false},
		{"system program", "11111111111111111111111111111111", false},
		{"empty", "", true},
		{"not base58", "0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", true},
		{"too short", "ABC", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.address)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAddress) {
					t.Errorf("expected ErrInvalidAddress, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFindAssociatedTokenAddress(t *testing.T) {
	// Known mainnet association: wallet + USDC mint.
	owner := "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	mint := "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

	ata, err := FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		t.Fatalf("FindAssociatedTokenAddress: %v", err)
	}

	if err := ValidateAddress(ata); err != nil {
		t.Errorf("derived address invalid: %v", err)
	}

	if IsOnCurve(ata) {
		t.Errorf("associated token address must be off-curve")
	}

	again, err := FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		t.Fatalf("FindAssociatedTokenAddress: %v", err)
	}
	if again != ata {
		t.Errorf("derivation not deterministic: %s != %s", again, ata)
	}
}

func TestFindAssociatedTokenAddress_InvalidInput(t *testing.T) {
	if _, err := FindAssociatedTokenAddress("bad", TokenProgramID); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}
