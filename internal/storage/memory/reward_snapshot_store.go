package memory

import (
	"context"
	"sort"
	"sync"

	"daio-rewards/internal/domain"
	"daio-rewards/internal/storage"
)

// RewardSnapshotStore is an in-memory implementation of storage.RewardSnapshotStore.
type RewardSnapshotStore struct {
	mu        sync.RWMutex
	snapshots []*domain.RewardSnapshot
	ids       map[string]struct{}
}

// NewRewardSnapshotStore creates a new in-memory reward snapshot store.
func NewRewardSnapshotStore() *RewardSnapshotStore {
	return &RewardSnapshotStore{
		ids: make(map[string]struct{}),
	}
}

// InsertBulk adds snapshots atomically. Fails entire batch on any duplicate.
func (s *RewardSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.RewardSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before writing anything.
	seen := make(map[string]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.SnapshotID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.ids[snap.SnapshotID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := seen[snap.SnapshotID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[snap.SnapshotID] = struct{}{}
	}

	for _, snap := range snapshots {
		snapCopy := *snap
		s.snapshots = append(s.snapshots, &snapCopy)
		s.ids[snap.SnapshotID] = struct{}{}
	}
	return nil
}

// GetByWallet retrieves up to limit snapshots for a wallet, newest first.
func (s *RewardSnapshotStore) GetByWallet(_ context.Context, wallet string, limit int) ([]*domain.RewardSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RewardSnapshot
	for _, snap := range s.snapshots {
		if snap.WalletAddress == wallet {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CheckedAt.Equal(result[j].CheckedAt) {
			return result[i].CheckedAt.After(result[j].CheckedAt)
		}
		return result[i].TokenAccount < result[j].TokenAccount
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetByRun retrieves all snapshots of a check run, ordered by wallet, token account.
func (s *RewardSnapshotStore) GetByRun(_ context.Context, runID string) ([]*domain.RewardSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RewardSnapshot
	for _, snap := range s.snapshots {
		if snap.RunID == runID {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].WalletAddress != result[j].WalletAddress {
			return result[i].WalletAddress < result[j].WalletAddress
		}
		return result[i].TokenAccount < result[j].TokenAccount
	})
	return result, nil
}

var _ storage.RewardSnapshotStore = (*RewardSnapshotStore)(nil)
