package reporting

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"daio-rewards/internal/domain"
)

// Messages shown for wallets that yield no rewards.
const (
	NoWalletsText  = "No wallets are currently being tracked."
	NoAccountsText = "No token accounts found for this wallet"
	NoHoldingsText = "No tokens from the DAIO deployer found in this wallet."
)

// Console prints check results and command feedback for the operator.
type Console struct {
	w   io.Writer
	loc *time.Location
}

// NewConsole creates a Console writing to w. Timestamps are shown in loc.
func NewConsole(w io.Writer, loc *time.Location) *Console {
	if loc == nil {
		loc = time.Local
	}
	return &Console{w: w, loc: loc}
}

// Banner prints the start-up help text.
func (c *Console) Banner(schedule string) {
	fmt.Fprintln(c.w, "DAIO Reward System Tracker")
	fmt.Fprintf(c.w, "Running continuously. Will check wallets every day at %s\n", schedule)
	c.Help()
}

// Help prints the command list.
func (c *Console) Help() {
	fmt.Fprintln(c.w, "Available commands:")
	fmt.Fprintln(c.w, "1. add <wallet_address> - Start tracking a wallet")
	fmt.Fprintln(c.w, "2. remove <wallet_address> - Stop tracking a wallet")
	fmt.Fprintln(c.w, "3. list - List all tracked wallets")
	fmt.Fprintln(c.w, "4. check - Run an immediate check of all wallets")
	fmt.Fprintln(c.w, "5. history <wallet_address> - Show recorded rewards for a wallet")
	fmt.Fprintln(c.w, "6. help - Show this list")
	fmt.Fprintln(c.w, "7. exit - Exit the program")
}

// Prompt prints the input prompt.
func (c *Console) Prompt() {
	fmt.Fprint(c.w, "\nEnter command: ")
}

// Tracking confirms an add.
func (c *Console) Tracking(address string, added bool) {
	if added {
		fmt.Fprintf(c.w, "Now tracking wallet: %s\n", address)
		return
	}
	fmt.Fprintf(c.w, "Already tracking wallet: %s\n", address)
}

// Stopped confirms a remove. Removing an untracked wallet is reported the same way.
func (c *Console) Stopped(address string) {
	fmt.Fprintf(c.w, "Stopped tracking wallet: %s\n", address)
}

// WalletList prints the tracked wallets.
func (c *Console) WalletList(wallets []string) {
	fmt.Fprintln(c.w, "\nTracked wallets:")
	if len(wallets) == 0 {
		fmt.Fprintln(c.w, NoWalletsText)
		return
	}
	for _, w := range wallets {
		fmt.Fprintln(c.w, w)
	}
}

// Error prints a command or run error.
func (c *Console) Error(err error) {
	fmt.Fprintf(c.w, "Error: %v\n", err)
}

// Invalid prints the malformed-command message.
func (c *Console) Invalid(err error) {
	fmt.Fprintf(c.w, "Invalid command. Please try again. (%v)\n", err)
}

// Check prints a full check run in the order wallets were processed.
func (c *Console) Check(s *domain.CheckSummary) {
	label := "scheduled check"
	switch s.Trigger {
	case domain.TriggerManual:
		label = "check"
	case domain.TriggerActivity:
		label = "activity check"
	}
	fmt.Fprintf(c.w, "\nRunning %s at %s\n", label, s.StartedAt.In(c.loc).Format("2006-01-02 15:04:05 MST"))

	if len(s.Results) == 0 {
		fmt.Fprintln(c.w, NoWalletsText)
		return
	}
	for _, res := range s.Results {
		c.Wallet(res)
	}
}

// Wallet prints one wallet's result.
func (c *Console) Wallet(res domain.WalletResult) {
	fmt.Fprintf(c.w, "\nChecking wallet: %s\n", res.WalletAddress)

	switch res.Outcome {
	case domain.OutcomeNoAccounts:
		fmt.Fprintf(c.w, "Error: %s\n", NoAccountsText)
		return
	case domain.OutcomeError:
		fmt.Fprintf(c.w, "Error: %s\n", res.Error)
		return
	case domain.OutcomeNoHoldings:
		fmt.Fprintln(c.w, NoHoldingsText)
		return
	}

	if res.Analysis != nil {
		fmt.Fprintln(c.w, "\nAI Analysis:", res.Analysis.Text)
		fmt.Fprintf(c.w, "Analysis Quantum Confidence: %.2f%%\n", res.Analysis.Confidence*100)
	}

	for _, hr := range res.Rewards {
		h, r := hr.Holding, hr.Reward
		fmt.Fprintf(c.w, "\nToken Account: %s\n", h.TokenAccount)
		fmt.Fprintf(c.w, "Mint Address: %s\n", h.MintAddress)
		fmt.Fprintf(c.w, "Holding Duration: %d days\n", h.HoldingDurationDays)
		fmt.Fprintf(c.w, "Acquisition Date: %s\n", h.AcquisitionDate.In(c.loc).Format("2006-01-02T15:04:05"))
		fmt.Fprintf(c.w, "Reward Tier: %s\n", r.Tier)
		fmt.Fprintf(c.w, "Base Multiplier: %sx\n", formatMultiplier(r.BaseMultiplier))
		fmt.Fprintf(c.w, "Quantum Boost: %.3fx\n", r.Boost)
		fmt.Fprintf(c.w, "Final Multiplier: %.3fx\n", r.FinalMultiplier)
		fmt.Fprintf(c.w, "Quantum Seed: %d\n", r.Seed)
	}
}

// History prints recorded rewards for a wallet, newest first.
func (c *Console) History(address string, snaps []*domain.RewardSnapshot, err error) {
	if err != nil {
		c.Error(err)
		return
	}
	fmt.Fprintf(c.w, "\nReward history for %s:\n", address)
	if len(snaps) == 0 {
		fmt.Fprintln(c.w, "No recorded rewards.")
		return
	}
	for _, s := range snaps {
		fmt.Fprintf(c.w, "%s  %s  %-7s %4d days  base %sx  boost %.3fx  final %.3fx\n",
			s.CheckedAt.In(c.loc).Format("2006-01-02 15:04"), s.TokenAccount, s.Tier,
			s.HoldingDays, formatMultiplier(s.BaseMultiplier), s.Boost, s.FinalMultiplier)
	}
}

// formatMultiplier prints whole multipliers with one decimal (2.0) and others
// with the shortest exact form (1.25).
func formatMultiplier(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
