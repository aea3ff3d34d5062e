package domain

import "time"

// Holding is a token position traceable to the configured issuer.
// Produced by a single lookup call and never cached.
type Holding struct {
	TokenAccount        string    // SPL token account address
	MintAddress         string    // token mint address
	HoldingDurationDays int       // whole days since acquisition, >= 0
	AcquisitionDate     time.Time // block time of the earliest account transaction
	Associated          bool      // token account is the owner's associated token account
}

// HoldingReport is the result of a holdings lookup for one wallet.
type HoldingReport struct {
	WalletAddress string
	Holdings      []Holding
	CheckedAt     time.Time
}

// Durations returns the holding durations in days, in holding order.
func (r *HoldingReport) Durations() []int {
	days := make([]int, len(r.Holdings))
	for i, h := range r.Holdings {
		days[i] = h.HoldingDurationDays
	}
	return days
}
