package domain

// Tier represents the reward category derived from holding duration.
type Tier string

const (
	TierBronze  Tier = "Bronze"
	TierSilver  Tier = "Silver"
	TierGold    Tier = "Gold"
	TierDiamond Tier = "Diamond"
)

// String returns the string representation of Tier.
func (t Tier) String() string {
	return string(t)
}

// IsValid checks if the tier is a valid value.
func (t Tier) IsValid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold, TierDiamond:
		return true
	}
	return false
}
