package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"daio-rewards/internal/domain"
	"daio-rewards/internal/observability"
	"daio-rewards/internal/storage"
)

const snapshotColumns = `
	snapshot_id, run_id, wallet_address, token_account, mint_address,
	acquired_at, holding_days, tier, base_multiplier, boost, final_multiplier,
	seed, checked_at`

// RewardSnapshotStore implements storage.RewardSnapshotStore using ClickHouse.
type RewardSnapshotStore struct {
	conn *Conn
}

// NewRewardSnapshotStore creates a new RewardSnapshotStore.
func NewRewardSnapshotStore(conn *Conn) *RewardSnapshotStore {
	return &RewardSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RewardSnapshotStore = (*RewardSnapshotStore)(nil)

// InsertBulk adds snapshots atomically. Fails entire batch on any duplicate snapshot_id.
func (s *RewardSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.RewardSnapshot) (err error) {
	if len(snapshots) == 0 {
		return nil
	}
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "insert_reward_snapshots", time.Since(start).Seconds(), err)
	}()

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(snapshots))
	ids := make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.SnapshotID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[snap.SnapshotID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[snap.SnapshotID] = struct{}{}
		ids = append(ids, snap.SnapshotID)
	}

	// ReplacingMergeTree would silently replace, but snapshots are append-only.
	for _, id := range ids {
		exists, err := s.exists(ctx, id)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO reward_snapshots ("+snapshotColumns+")")
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.SnapshotID, snap.RunID, snap.WalletAddress, snap.TokenAccount, snap.MintAddress,
			snap.AcquiredAt.UTC(), uint32(snap.HoldingDays), string(snap.Tier),
			snap.BaseMultiplier, snap.Boost, snap.FinalMultiplier,
			uint8(snap.Seed), snap.CheckedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByWallet retrieves up to limit snapshots for a wallet, newest first.
func (s *RewardSnapshotStore) GetByWallet(ctx context.Context, wallet string, limit int) (result []*domain.RewardSnapshot, err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "get_reward_snapshots_by_wallet", time.Since(start).Seconds(), err)
	}()

	query := `
		SELECT` + snapshotColumns + `
		FROM reward_snapshots FINAL
		WHERE wallet_address = ?
		ORDER BY checked_at DESC, token_account ASC
	`
	args := []any{wallet}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query by wallet: %w", err)
	}
	defer rows.Close()

	return scanRewardSnapshots(rows)
}

// GetByRun retrieves all snapshots of a check run, ordered by wallet, token account.
func (s *RewardSnapshotStore) GetByRun(ctx context.Context, runID string) (result []*domain.RewardSnapshot, err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "get_reward_snapshots_by_run", time.Since(start).Seconds(), err)
	}()

	query := `
		SELECT` + snapshotColumns + `
		FROM reward_snapshots FINAL
		WHERE run_id = ?
		ORDER BY wallet_address ASC, token_account ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run: %w", err)
	}
	defer rows.Close()

	return scanRewardSnapshots(rows)
}

// exists checks if a snapshot is already stored.
func (s *RewardSnapshotStore) exists(ctx context.Context, snapshotID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `
		SELECT count() FROM reward_snapshots FINAL
		WHERE snapshot_id = ?
	`, snapshotID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanRewardSnapshots(rows driver.Rows) ([]*domain.RewardSnapshot, error) {
	var result []*domain.RewardSnapshot
	for rows.Next() {
		var (
			snap        domain.RewardSnapshot
			holdingDays uint32
			tier        string
			seed        uint8
		)
		err := rows.Scan(
			&snap.SnapshotID, &snap.RunID, &snap.WalletAddress, &snap.TokenAccount, &snap.MintAddress,
			&snap.AcquiredAt, &holdingDays, &tier,
			&snap.BaseMultiplier, &snap.Boost, &snap.FinalMultiplier,
			&seed, &snap.CheckedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reward snapshot: %w", err)
		}
		snap.HoldingDays = int(holdingDays)
		snap.Tier = domain.Tier(tier)
		snap.Seed = int(seed)
		result = append(result, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reward snapshots: %w", err)
	}
	return result, nil
}
