// Package scheduler fires events at a fixed local time of day.
package scheduler

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata" // schedules name IANA zones; do not depend on the host database
)

// DefaultTimezone is the zone the daily check runs in by default.
const DefaultTimezone = "America/Los_Angeles"

// Daily fires once per day at Hour:Minute in Location.
type Daily struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// ParseDaily parses "HH:MM" in the named IANA timezone.
func ParseDaily(clock, timezone string) (Daily, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return Daily{}, fmt.Errorf("parse check time %q: %w", clock, err)
	}
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Daily{}, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return Daily{Hour: t.Hour(), Minute: t.Minute(), Location: loc}, nil
}

// Next returns the first fire time strictly after after.
// Days where the wall time does not exist (DST gap) fire at the normalized instant.
func (d Daily) Next(after time.Time) time.Time {
	loc := d.location()
	local := after.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, loc)
	if !next.After(after) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.Hour, d.Minute, 0, 0, loc)
	}
	return next
}

// String formats the schedule like "16:21 PST".
func (d Daily) String() string {
	loc := d.location()
	ref := time.Date(2000, 1, 1, d.Hour, d.Minute, 0, 0, loc)
	return fmt.Sprintf("%02d:%02d %s", d.Hour, d.Minute, ref.Format("MST"))
}

func (d Daily) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

// Ticks sends the fire time on the returned channel once per day until ctx is done.
// A tick that is not received before the next one is due is dropped.
func (d Daily) Ticks(ctx context.Context, now func() time.Time) <-chan time.Time {
	if now == nil {
		now = time.Now
	}
	out := make(chan time.Time, 1)

	go func() {
		defer close(out)
		for {
			next := d.Next(now())
			timer := time.NewTimer(next.Sub(now()))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			select {
			case out <- next:
			default:
			}
		}
	}()

	return out
}
