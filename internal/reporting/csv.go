package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderCSV renders reward rows as CSV string.
func RenderCSV(rows []RewardRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("wallet_address,token_account,mint_address,acquired_at,holding_days,")
	sb.WriteString("tier,base_multiplier,boost,final_multiplier,seed\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%d,%s,%.6f,%.6f,%.6f,%d\n",
			r.WalletAddress,
			r.TokenAccount,
			r.MintAddress,
			r.AcquiredAt.UTC().Format(time.RFC3339),
			r.HoldingDays,
			r.Tier,
			r.BaseMultiplier,
			r.Boost,
			r.FinalMultiplier,
			r.Seed,
		))
	}

	return sb.String()
}
