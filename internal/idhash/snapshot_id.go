package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeSnapshotID computes a deterministic snapshot_id using SHA256.
// Formula: SHA256(run_id|wallet_address|token_account)
// Returns hex-encoded hash (64 characters).
func ComputeSnapshotID(
	runID string,
	walletAddress string,
	tokenAccount string,
) string {
	data := fmt.Sprintf("%s|%s|%s",
		runID,
		walletAddress,
		tokenAccount,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
