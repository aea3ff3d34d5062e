package domain

import "time"

// RewardSnapshot records one computed reward during a check run.
// Corresponds to reward_snapshots table in ClickHouse.
type RewardSnapshot struct {
	SnapshotID      string // deterministic hash of run, wallet and token account
	RunID           string // check run identifier
	WalletAddress   string
	TokenAccount    string
	MintAddress     string
	AcquiredAt      time.Time
	HoldingDays     int
	Tier            Tier
	BaseMultiplier  float64
	Boost           float64
	FinalMultiplier float64
	Seed            int
	CheckedAt       time.Time
}

// NewRewardSnapshot builds a snapshot from a holding and its reward.
// The caller assigns SnapshotID.
func NewRewardSnapshot(runID, wallet string, h Holding, r RewardResult, checkedAt time.Time) *RewardSnapshot {
	return &RewardSnapshot{
		RunID:           runID,
		WalletAddress:   wallet,
		TokenAccount:    h.TokenAccount,
		MintAddress:     h.MintAddress,
		AcquiredAt:      h.AcquisitionDate,
		HoldingDays:     r.HoldingDays,
		Tier:            r.Tier,
		BaseMultiplier:  r.BaseMultiplier,
		Boost:           r.Boost,
		FinalMultiplier: r.FinalMultiplier,
		Seed:            r.Seed,
		CheckedAt:       checkedAt,
	}
}
