package reporting

import (
	"fmt"
	"strings"
	"time"

	"daio-rewards/internal/domain"
)

var tierOrder = []domain.Tier{domain.TierDiamond, domain.TierGold, domain.TierSilver, domain.TierBronze}

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# DAIO Holder Reward Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Trigger: %s | Started: %s | Duration: %s\n\n",
		r.RunID, r.Trigger, r.StartedAt.Format(time.RFC3339), r.Duration.Round(time.Millisecond)))
	sb.WriteString("Multipliers are advisory. Nothing is paid out.\n\n")

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Wallets Checked | %d |\n", r.Summary.WalletsChecked))
	sb.WriteString(fmt.Sprintf("| Rewarded | %d |\n", r.Summary.Rewarded))
	sb.WriteString(fmt.Sprintf("| No Token Accounts | %d |\n", r.Summary.NoAccounts))
	sb.WriteString(fmt.Sprintf("| No Issuer Holdings | %d |\n", r.Summary.NoHoldings))
	sb.WriteString(fmt.Sprintf("| Failed | %d |\n", r.Summary.Failed))
	sb.WriteString(fmt.Sprintf("| Holdings | %d |\n", r.Summary.Holdings))
	for _, tier := range tierOrder {
		sb.WriteString(fmt.Sprintf("| %s Holdings | %d |\n", tier, r.Summary.TierCounts[tier]))
	}
	sb.WriteString("\n")

	// Rewards
	sb.WriteString("## Rewards\n\n")
	if len(r.Rewards) > 0 {
		sb.WriteString("| Wallet | Token Account | Mint | Acquired | Days | Tier | Base | Boost | Final | Seed |\n")
		sb.WriteString("|--------|---------------|------|----------|------|------|------|-------|-------|------|\n")
		for _, row := range r.Rewards {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %s | %s | %.3f | %.3f | %d |\n",
				row.WalletAddress, row.TokenAccount, row.MintAddress,
				row.AcquiredAt.Format("2006-01-02"), row.HoldingDays, row.Tier,
				formatMultiplier(row.BaseMultiplier), row.Boost, row.FinalMultiplier, row.Seed))
		}
	} else {
		sb.WriteString("No rewards computed.\n")
	}
	sb.WriteString("\n")

	// Analyses
	if len(r.Analyses) > 0 {
		sb.WriteString("## Analysis\n\n")
		for _, a := range r.Analyses {
			sb.WriteString(fmt.Sprintf("### %s\n\n", a.WalletAddress))
			sb.WriteString(fmt.Sprintf("Confidence: %.2f%%\n\n", a.Confidence*100))
			sb.WriteString(strings.TrimSpace(a.Text))
			sb.WriteString("\n\n")
		}
	}

	// Skipped
	sb.WriteString("## Skipped Wallets\n\n")
	if len(r.Skipped) > 0 {
		sb.WriteString("| Wallet | Outcome | Reason |\n")
		sb.WriteString("|--------|---------|--------|\n")
		for _, s := range r.Skipped {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				s.WalletAddress, s.Outcome, escapeCell(s.Reason)))
		}
	} else {
		sb.WriteString("None.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
