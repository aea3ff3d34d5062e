package domain

import "testing"

func TestTier_IsValid(t *testing.T) {
	for _, tier := range []Tier{TierBronze, TierSilver, TierGold, TierDiamond} {
		if !tier.IsValid() {
			t.Errorf("expected %s to be valid", tier)
		}
	}

	if Tier("Platinum").IsValid() {
		t.Error("expected Platinum to be invalid")
	}
}

func TestHoldingReport_Durations(t *testing.T) {
	r := &HoldingReport{
		WalletAddress: "wallet1",
		Holdings: []Holding{
			{TokenAccount: "a", HoldingDurationDays: 10},
			{TokenAccount: "b", HoldingDurationDays: 400},
		},
	}

	days := r.Durations()
	if len(days) != 2 || days[0] != 10 || days[1] != 400 {
		t.Errorf("unexpected durations: %v", days)
	}
}
