package memory

import (
	"context"
	"sort"
	"sync"

	"daio-rewards/internal/domain"
	"daio-rewards/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu      sync.RWMutex
	wallets map[string]*domain.TrackedWallet // keyed by address
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		wallets: make(map[string]*domain.TrackedWallet),
	}
}

// Insert adds a tracked wallet. Returns ErrDuplicateKey if address exists.
func (s *WalletStore) Insert(_ context.Context, w *domain.TrackedWallet) error {
	if w == nil || w.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.wallets[w.Address]; exists {
		return storage.ErrDuplicateKey
	}

	walletCopy := *w
	s.wallets[w.Address] = &walletCopy
	return nil
}

// Delete removes a tracked wallet. Returns ErrNotFound if not exists.
func (s *WalletStore) Delete(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.wallets[address]; !exists {
		return storage.ErrNotFound
	}
	delete(s.wallets, address)
	return nil
}

// Get retrieves a tracked wallet by address. Returns ErrNotFound if not exists.
func (s *WalletStore) Get(_ context.Context, address string) (*domain.TrackedWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.wallets[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	walletCopy := *w
	return &walletCopy, nil
}

// List retrieves all tracked wallets, ordered by added_at ASC, address ASC.
func (s *WalletStore) List(_ context.Context) ([]*domain.TrackedWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.TrackedWallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		walletCopy := *w
		result = append(result, &walletCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].AddedAt.Equal(result[j].AddedAt) {
			return result[i].AddedAt.Before(result[j].AddedAt)
		}
		return result[i].Address < result[j].Address
	})

	return result, nil
}

var _ storage.WalletStore = (*WalletStore)(nil)
