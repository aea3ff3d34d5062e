// Package reward maps holding durations to reward tiers and multipliers.
package reward

import "daio-rewards/internal/domain"

// Tier thresholds in days.
const (
	DiamondDays = 365
	GoldDays    = 180
	SilverDays  = 90
)

// tierRule is one row of the tier table.
type tierRule struct {
	minDays    int
	tier       domain.Tier
	multiplier float64
}

// tierTable is evaluated top-down; first match wins.
var tierTable = []tierRule{
	{minDays: DiamondDays, tier: domain.TierDiamond, multiplier: 2.0},
	{minDays: GoldDays, tier: domain.TierGold, multiplier: 1.5},
	{minDays: SilverDays, tier: domain.TierSilver, multiplier: 1.25},
}

// Classify returns the tier and base multiplier for a holding duration.
// Negative durations are treated as zero.
func Classify(days int) (domain.Tier, float64) {
	if days < 0 {
		days = 0
	}
	for _, rule := range tierTable {
		if days >= rule.minDays {
			return rule.tier, rule.multiplier
		}
	}
	return domain.TierBronze, 1.0
}
