package solana

import (
	"context"
	"sort"
	"strings"
)

// WSClient defines Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeLogs subscribes to transaction logs matching the filter.
	// Subscribing twice with an equivalent filter returns the existing channel.
	SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error)

	// UnsubscribeLogs cancels the subscription for filter and closes its channel.
	UnsubscribeLogs(ctx context.Context, filter LogsFilter) error

	// Close closes the WebSocket connection.
	Close() error
}

// LogsFilter defines subscription filter for logs.
type LogsFilter struct {
	// Mentions filters logs that mention any of these addresses.
	Mentions []string
}

// Key identifies equivalent filters.
func (f LogsFilter) Key() string {
	if len(f.Mentions) == 0 {
		return "*"
	}
	m := append([]string(nil), f.Mentions...)
	sort.Strings(m)
	return strings.Join(m, ",")
}

// LogNotification represents a logs subscription message.
type LogNotification struct {
	Signature string
	Slot      int64
	Logs      []string
	Err       interface{}
}
