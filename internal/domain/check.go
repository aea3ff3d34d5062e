package domain

import "time"

// Outcome classifies how a wallet fared in a check run.
type Outcome string

const (
	OutcomeOK         Outcome = "ok"          // holdings found and rewarded
	OutcomeNoAccounts Outcome = "no_accounts" // wallet has no token accounts
	OutcomeNoHoldings Outcome = "no_holdings" // token accounts exist, none from the issuer
	OutcomeError      Outcome = "error"       // lookup, analysis or reward failed
)

// Trigger names what started a check run.
type Trigger string

const (
	TriggerManual   Trigger = "manual"
	TriggerSchedule Trigger = "schedule"
	TriggerActivity Trigger = "activity"
)

// HoldingReward pairs a holding with its computed reward.
type HoldingReward struct {
	Holding Holding
	Reward  RewardResult
}

// WalletResult is the outcome of checking a single wallet.
type WalletResult struct {
	WalletAddress string
	Outcome       Outcome
	Error         string    // set when Outcome is OutcomeError
	Analysis      *Analysis // nil when analysis is disabled or not applicable
	Rewards       []HoldingReward
}

// CheckSummary collects the results of one check run.
type CheckSummary struct {
	RunID      string
	Trigger    Trigger
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []WalletResult
}

// Count returns the number of results with the given outcome.
func (s *CheckSummary) Count(outcome Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}

// Duration returns the wall time of the run.
func (s *CheckSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
