package domain

// RewardResult is the computed reward for a single holding.
// Rewards are advisory only; nothing is disbursed.
type RewardResult struct {
	Tier            Tier
	BaseMultiplier  float64 // from the tier table
	Boost           float64 // in [1.0, 1.5]
	FinalMultiplier float64 // BaseMultiplier * Boost
	HoldingDays     int
	Seed            int // per-wallet seed in [0, 15]
}
