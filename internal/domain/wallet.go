package domain

import "time"

// TrackedWallet is an address the operator opted into periodic checking.
// Corresponds to tracked_wallets table in PostgreSQL.
type TrackedWallet struct {
	Address string    // base58 public key, PRIMARY KEY
	AddedAt time.Time // when tracking started
}
