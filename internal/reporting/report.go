package reporting

import (
	"sort"
	"time"

	"daio-rewards/internal/domain"
)

// Report represents one check run in tabular form.
type Report struct {
	// Metadata
	RunID       string
	Trigger     domain.Trigger
	GeneratedAt time.Time
	StartedAt   time.Time
	Duration    time.Duration

	// Outcome counts
	Summary RunSummary

	// Rewards (sorted by wallet, token account)
	Rewards []RewardRow

	// Wallets that did not produce rewards, with the reason
	Skipped []SkippedRow

	// Analyses keyed by wallet
	Analyses []AnalysisRow
}

// RunSummary counts wallet outcomes.
type RunSummary struct {
	WalletsChecked int
	Rewarded       int
	NoAccounts     int
	NoHoldings     int
	Failed         int
	Holdings       int
	TierCounts     map[domain.Tier]int
}

// RewardRow represents one row in the rewards table.
type RewardRow struct {
	WalletAddress   string
	TokenAccount    string
	MintAddress     string
	AcquiredAt      time.Time
	HoldingDays     int
	Tier            domain.Tier
	BaseMultiplier  float64
	Boost           float64
	FinalMultiplier float64
	Seed            int
}

// SkippedRow records a wallet without rewards.
type SkippedRow struct {
	WalletAddress string
	Outcome       domain.Outcome
	Reason        string
}

// AnalysisRow holds a wallet's analysis text.
type AnalysisRow struct {
	WalletAddress string
	Text          string
	Confidence    float64
}

// BuildReport converts a check summary into a Report.
func BuildReport(s *domain.CheckSummary, generatedAt time.Time) *Report {
	r := &Report{
		RunID:       s.RunID,
		Trigger:     s.Trigger,
		GeneratedAt: generatedAt,
		StartedAt:   s.StartedAt,
		Duration:    s.Duration(),
		Summary: RunSummary{
			WalletsChecked: len(s.Results),
			TierCounts:     make(map[domain.Tier]int),
		},
	}

	for _, res := range s.Results {
		switch res.Outcome {
		case domain.OutcomeOK:
			r.Summary.Rewarded++
		case domain.OutcomeNoAccounts:
			r.Summary.NoAccounts++
			r.Skipped = append(r.Skipped, SkippedRow{res.WalletAddress, res.Outcome, NoAccountsText})
		case domain.OutcomeNoHoldings:
			r.Summary.NoHoldings++
			r.Skipped = append(r.Skipped, SkippedRow{res.WalletAddress, res.Outcome, NoHoldingsText})
		case domain.OutcomeError:
			r.Summary.Failed++
			r.Skipped = append(r.Skipped, SkippedRow{res.WalletAddress, res.Outcome, res.Error})
		}

		if res.Analysis != nil {
			r.Analyses = append(r.Analyses, AnalysisRow{
				WalletAddress: res.WalletAddress,
				Text:          res.Analysis.Text,
				Confidence:    res.Analysis.Confidence,
			})
		}

		for _, hr := range res.Rewards {
			r.Summary.Holdings++
			r.Summary.TierCounts[hr.Reward.Tier]++
			r.Rewards = append(r.Rewards, RewardRow{
				WalletAddress:   res.WalletAddress,
				TokenAccount:    hr.Holding.TokenAccount,
				MintAddress:     hr.Holding.MintAddress,
				AcquiredAt:      hr.Holding.AcquisitionDate,
				HoldingDays:     hr.Reward.HoldingDays,
				Tier:            hr.Reward.Tier,
				BaseMultiplier:  hr.Reward.BaseMultiplier,
				Boost:           hr.Reward.Boost,
				FinalMultiplier: hr.Reward.FinalMultiplier,
				Seed:            hr.Reward.Seed,
			})
		}
	}

	sort.SliceStable(r.Rewards, func(i, j int) bool {
		if r.Rewards[i].WalletAddress != r.Rewards[j].WalletAddress {
			return r.Rewards[i].WalletAddress < r.Rewards[j].WalletAddress
		}
		return r.Rewards[i].TokenAccount < r.Rewards[j].TokenAccount
	})
	sort.SliceStable(r.Skipped, func(i, j int) bool {
		return r.Skipped[i].WalletAddress < r.Skipped[j].WalletAddress
	})
	sort.SliceStable(r.Analyses, func(i, j int) bool {
		return r.Analyses[i].WalletAddress < r.Analyses[j].WalletAddress
	})

	return r
}
