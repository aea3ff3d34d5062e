package reward

import (
	"fmt"

	"daio-rewards/internal/domain"
)

// Boost bounds.
const (
	MinBoost = 1.0
	MaxBoost = 1.5
)

// SeedSource produces a per-wallet seed in [0, 15].
type SeedSource interface {
	Generate(address string) (int, error)
}

// Booster produces a multiplicative boost for a duration and seed.
type Booster interface {
	Boost(days, seed int) (float64, error)
}

// Calculator computes reward results for holdings.
type Calculator struct {
	seeds   SeedSource
	booster Booster
}

// NewCalculator creates a new Calculator.
func NewCalculator(seeds SeedSource, booster Booster) *Calculator {
	return &Calculator{seeds: seeds, booster: booster}
}

// Calculate computes the reward for a holding duration held by wallet.
func (c *Calculator) Calculate(days int, wallet string) (*domain.RewardResult, error) {
	seed, err := c.seeds.Generate(wallet)
	if err != nil {
		return nil, fmt.Errorf("generate seed: %w", err)
	}
	return c.CalculateWithSeed(days, seed)
}

// CalculateWithSeed computes the reward using a precomputed seed.
func (c *Calculator) CalculateWithSeed(days, seed int) (*domain.RewardResult, error) {
	if days < 0 {
		days = 0
	}

	tier, base := Classify(days)

	boost, err := c.booster.Boost(days, seed)
	if err != nil {
		return nil, fmt.Errorf("compute boost: %w", err)
	}
	boost = ClampBoost(boost)

	return &domain.RewardResult{
		Tier:            tier,
		BaseMultiplier:  base,
		Boost:           boost,
		FinalMultiplier: base * boost,
		HoldingDays:     days,
		Seed:            seed,
	}, nil
}

// ClampBoost bounds a boost to [MinBoost, MaxBoost].
func ClampBoost(b float64) float64 {
	if b != b || b < MinBoost { // NaN or below range
		return MinBoost
	}
	if b > MaxBoost {
		return MaxBoost
	}
	return b
}
