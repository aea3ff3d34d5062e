package tracker

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"daio-rewards/internal/observability"
	"daio-rewards/internal/solana"
)

// DefaultDebounce is the minimum interval between activity triggers for one wallet.
const DefaultDebounce = 5 * time.Minute

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	Debounce   time.Duration
	BufferSize int
	Logger     *log.Logger
	Now        func() time.Time
}

// Watcher turns on-chain log notifications mentioning a tracked wallet
// into re-check triggers.
type Watcher struct {
	ws       solana.WSClient
	debounce time.Duration
	logger   *log.Logger
	now      func() time.Time
	out      chan string

	mu       sync.Mutex
	watching map[string]struct{}
	lastFire map[string]time.Time
}

// Compile-time interface check.
var _ ActivityWatcher = (*Watcher)(nil)

// NewWatcher creates a Watcher over ws.
func NewWatcher(ws solana.WSClient, cfg WatcherConfig) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[watcher] ", log.LstdFlags)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Watcher{
		ws:       ws,
		debounce: cfg.Debounce,
		logger:   cfg.Logger,
		now:      cfg.Now,
		out:      make(chan string, cfg.BufferSize),
		watching: make(map[string]struct{}),
		lastFire: make(map[string]time.Time),
	}
}

// Triggers returns the channel of wallet addresses with fresh activity.
func (w *Watcher) Triggers() <-chan string {
	return w.out
}

// Watch subscribes to logs mentioning address. Watching twice is a no-op.
func (w *Watcher) Watch(ctx context.Context, address string) error {
	w.mu.Lock()
	if _, ok := w.watching[address]; ok {
		w.mu.Unlock()
		return nil
	}
	w.watching[address] = struct{}{}
	w.mu.Unlock()

	ch, err := w.ws.SubscribeLogs(ctx, solana.LogsFilter{Mentions: []string{address}})
	if err != nil {
		w.mu.Lock()
		delete(w.watching, address)
		w.mu.Unlock()
		return fmt.Errorf("subscribe %s: %w", address, err)
	}

	go w.forward(address, ch)
	return nil
}

// Unwatch cancels the subscription for address.
func (w *Watcher) Unwatch(ctx context.Context, address string) error {
	w.mu.Lock()
	if _, ok := w.watching[address]; !ok {
		w.mu.Unlock()
		return nil
	}
	delete(w.watching, address)
	delete(w.lastFire, address)
	w.mu.Unlock()

	if err := w.ws.UnsubscribeLogs(ctx, solana.LogsFilter{Mentions: []string{address}}); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", address, err)
	}
	return nil
}

// forward runs until the subscription channel is closed.
func (w *Watcher) forward(address string, ch <-chan solana.LogNotification) {
	for notif := range ch {
		if notif.Err != nil {
			// Failed transactions do not move balances.
			continue
		}
		if !w.allow(address) {
			continue
		}
		select {
		case w.out <- address:
			observability.RecordActivityTrigger()
		default:
			w.logger.Printf("trigger queue full, dropping activity for %s", address)
		}
	}
}

// allow reports whether address may fire now, recording the fire time.
func (w *Watcher) allow(address string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watching[address]; !ok {
		return false
	}
	now := w.now()
	if last, ok := w.lastFire[address]; ok && now.Sub(last) < w.debounce {
		return false
	}
	w.lastFire[address] = now
	return true
}
