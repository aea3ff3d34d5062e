package tracker

import (
	"sort"
	"sync"
)

// WalletSet is the set of tracked wallet addresses.
// Mutations come from the control loop; reads may come from any goroutine.
type WalletSet struct {
	mu      sync.RWMutex
	members map[string]struct{}
}

// NewWalletSet creates an empty set.
func NewWalletSet() *WalletSet {
	return &WalletSet{members: make(map[string]struct{})}
}

// Add inserts address and reports whether it was not already present.
func (s *WalletSet) Add(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[address]; ok {
		return false
	}
	s.members[address] = struct{}{}
	return true
}

// Remove deletes address and reports whether it was present.
func (s *WalletSet) Remove(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[address]; !ok {
		return false
	}
	delete(s.members, address)
	return true
}

// Contains reports whether address is tracked.
func (s *WalletSet) Contains(address string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.members[address]
	return ok
}

// List returns the tracked addresses in sorted order.
func (s *WalletSet) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.members))
	for addr := range s.members {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of tracked addresses.
func (s *WalletSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}
