package storage

import (
	"context"

	"daio-rewards/internal/domain"
)

// WalletStore provides access to tracked_wallets storage.
type WalletStore interface {
	// Insert adds a tracked wallet. Returns ErrDuplicateKey if address exists.
	Insert(ctx context.Context, w *domain.TrackedWallet) error

	// Delete removes a tracked wallet. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, address string) error

	// Get retrieves a tracked wallet by address. Returns ErrNotFound if not exists.
	Get(ctx context.Context, address string) (*domain.TrackedWallet, error)

	// List retrieves all tracked wallets, ordered by added_at ASC, address ASC.
	List(ctx context.Context) ([]*domain.TrackedWallet, error)
}

// RewardSnapshotStore provides access to reward_snapshots storage.
// Snapshots are append-only.
type RewardSnapshotStore interface {
	// InsertBulk adds snapshots atomically. Fails entire batch on any duplicate snapshot_id.
	InsertBulk(ctx context.Context, snapshots []*domain.RewardSnapshot) error

	// GetByWallet retrieves up to limit snapshots for a wallet, newest first.
	// A limit <= 0 returns all snapshots.
	GetByWallet(ctx context.Context, wallet string, limit int) ([]*domain.RewardSnapshot, error)

	// GetByRun retrieves all snapshots of a check run, ordered by wallet, token account.
	GetByRun(ctx context.Context, runID string) ([]*domain.RewardSnapshot, error)
}
