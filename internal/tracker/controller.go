// Package tracker owns the tracked-wallet set and runs reward checks over it.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"daio-rewards/internal/analysis"
	"daio-rewards/internal/domain"
	"daio-rewards/internal/holdings"
	"daio-rewards/internal/idhash"
	"daio-rewards/internal/observability"
	"daio-rewards/internal/solana"
	"daio-rewards/internal/storage"
)

// ErrHistoryUnavailable is returned by History when no snapshot store is configured.
var ErrHistoryUnavailable = errors.New("reward history is not configured")

// HoldingsLookup resolves a wallet's issuer holdings.
type HoldingsLookup interface {
	Lookup(ctx context.Context, wallet string) (*domain.HoldingReport, error)
}

// RewardCalculator computes the reward for a holding duration.
type RewardCalculator interface {
	Calculate(days int, wallet string) (*domain.RewardResult, error)
}

// ActivityWatcher follows on-chain activity of tracked wallets.
type ActivityWatcher interface {
	Watch(ctx context.Context, address string) error
	Unwatch(ctx context.Context, address string) error
}

// Options for creating a Controller.
type Options struct {
	// Required
	Holdings HoldingsLookup
	Rewards  RewardCalculator

	// Optional collaborators
	Analyzer  analysis.Analyzer           // nil disables analysis
	Wallets   storage.WalletStore         // mirrors the tracked set when set
	Snapshots storage.RewardSnapshotStore // records computed rewards when set
	Watcher   ActivityWatcher

	Validate func(address string) error // defaults to solana.ValidateAddress
	NewRunID func() string              // defaults to uuid.NewString
	Now      func() time.Time
	Logger   *log.Logger
	Tracer   trace.Tracer
}

// Status is a point-in-time view of the controller.
type Status struct {
	TrackedWallets int
	ChecksRun      int
	LastRunID      string
	LastCheckAt    time.Time // zero if no check has run
	LastDuration   time.Duration
}

// Controller owns the tracked-wallet set and runs checks over it.
type Controller struct {
	set       *WalletSet
	holdings  HoldingsLookup
	rewards   RewardCalculator
	analyzer  analysis.Analyzer
	wallets   storage.WalletStore
	snapshots storage.RewardSnapshotStore
	watcher   ActivityWatcher
	validate  func(string) error
	newRunID  func() string
	now       func() time.Time
	logger    *log.Logger
	tracer    trace.Tracer

	mu     sync.RWMutex
	status Status
}

// New creates a Controller.
func New(opts Options) *Controller {
	c := &Controller{
		set:       NewWalletSet(),
		holdings:  opts.Holdings,
		rewards:   opts.Rewards,
		analyzer:  opts.Analyzer,
		wallets:   opts.Wallets,
		snapshots: opts.Snapshots,
		watcher:   opts.Watcher,
		validate:  opts.Validate,
		newRunID:  opts.NewRunID,
		now:       opts.Now,
		logger:    opts.Logger,
		tracer:    opts.Tracer,
	}
	if c.analyzer == nil {
		c.analyzer = analysis.Disabled{}
	}
	if c.validate == nil {
		c.validate = solana.ValidateAddress
	}
	if c.newRunID == nil {
		c.newRunID = uuid.NewString
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = log.New(os.Stderr, "[tracker] ", log.LstdFlags)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("daio-rewards/tracker")
	}
	return c
}

// Hydrate loads the tracked set from the wallet store and starts watching each wallet.
func (c *Controller) Hydrate(ctx context.Context) error {
	if c.wallets == nil {
		return nil
	}
	stored, err := c.wallets.List(ctx)
	if err != nil {
		return fmt.Errorf("load tracked wallets: %w", err)
	}
	for _, w := range stored {
		if c.set.Add(w.Address) {
			c.watch(ctx, w.Address)
		}
	}
	observability.SetTrackedWallets(c.set.Len())
	c.logger.Printf("Loaded %d tracked wallets", len(stored))
	return nil
}

// Add starts tracking address and reports whether it was new.
// Returns an error wrapping solana.ErrInvalidAddress for malformed addresses.
func (c *Controller) Add(ctx context.Context, address string) (bool, error) {
	if err := c.validate(address); err != nil {
		return false, err
	}
	if !c.set.Add(address) {
		return false, nil
	}
	observability.SetTrackedWallets(c.set.Len())

	if c.wallets != nil {
		err := c.wallets.Insert(ctx, &domain.TrackedWallet{Address: address, AddedAt: c.now()})
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			c.logger.Printf("WARN: persist wallet %s: %v", address, err)
		}
	}
	c.watch(ctx, address)
	return true, nil
}

// Remove stops tracking address and reports whether it was tracked.
// Removing an untracked address is a no-op.
func (c *Controller) Remove(ctx context.Context, address string) bool {
	if !c.set.Remove(address) {
		return false
	}
	observability.SetTrackedWallets(c.set.Len())

	if c.wallets != nil {
		if err := c.wallets.Delete(ctx, address); err != nil && !errors.Is(err, storage.ErrNotFound) {
			c.logger.Printf("WARN: delete wallet %s: %v", address, err)
		}
	}
	if c.watcher != nil {
		if err := c.watcher.Unwatch(ctx, address); err != nil {
			c.logger.Printf("WARN: unwatch %s: %v", address, err)
		}
	}
	return true
}

// List returns the tracked addresses in sorted order.
func (c *Controller) List() []string {
	return c.set.List()
}

// IsTracked reports whether address is tracked.
func (c *Controller) IsTracked(address string) bool {
	return c.set.Contains(address)
}

// Check runs the reward routine over every tracked wallet.
// Per-wallet failures are recorded in the summary and do not stop the run.
// A cancelled context stops the run early and returns the partial summary with ctx.Err().
func (c *Controller) Check(ctx context.Context, trigger domain.Trigger) (*domain.CheckSummary, error) {
	return c.run(ctx, trigger, c.set.List())
}

// CheckWallet runs the reward routine for a single tracked wallet.
func (c *Controller) CheckWallet(ctx context.Context, address string, trigger domain.Trigger) (*domain.CheckSummary, error) {
	if !c.set.Contains(address) {
		return nil, fmt.Errorf("wallet %s is not tracked", address)
	}
	return c.run(ctx, trigger, []string{address})
}

// History returns up to limit recorded rewards for address, newest first.
func (c *Controller) History(ctx context.Context, address string, limit int) ([]*domain.RewardSnapshot, error) {
	if c.snapshots == nil {
		return nil, ErrHistoryUnavailable
	}
	return c.snapshots.GetByWallet(ctx, address, limit)
}

// Status returns a snapshot of controller state.
func (c *Controller) Status() Status {
	c.mu.RLock()
	s := c.status
	c.mu.RUnlock()
	s.TrackedWallets = c.set.Len()
	return s
}

func (c *Controller) run(ctx context.Context, trigger domain.Trigger, wallets []string) (*domain.CheckSummary, error) {
	ctx, span := c.tracer.Start(ctx, "tracker.Check", trace.WithAttributes(
		attribute.String("trigger", string(trigger)),
		attribute.Int("wallets", len(wallets)),
	))
	defer span.End()

	summary := &domain.CheckSummary{
		RunID:     c.newRunID(),
		Trigger:   trigger,
		StartedAt: c.now(),
	}
	span.SetAttributes(attribute.String("run_id", summary.RunID))

	var runErr error
	for _, wallet := range wallets {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		result := c.checkWallet(ctx, summary.RunID, wallet)
		observability.RecordWalletOutcome(string(result.Outcome))
		summary.Results = append(summary.Results, result)
	}
	summary.FinishedAt = c.now()

	c.recordSnapshots(ctx, summary)

	c.mu.Lock()
	c.status.ChecksRun++
	c.status.LastRunID = summary.RunID
	c.status.LastCheckAt = summary.FinishedAt
	c.status.LastDuration = summary.Duration()
	c.mu.Unlock()

	observability.RecordCheck(string(trigger), summary.Duration().Seconds(), summary.FinishedAt.Unix())
	c.logger.Printf("Check %s (%s): %d wallets, %d ok, %d failed in %v",
		summary.RunID, trigger, len(summary.Results),
		summary.Count(domain.OutcomeOK), summary.Count(domain.OutcomeError), summary.Duration())

	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
	}
	return summary, runErr
}

// checkWallet never fails: errors become an OutcomeError result.
func (c *Controller) checkWallet(ctx context.Context, runID, wallet string) domain.WalletResult {
	ctx, span := c.tracer.Start(ctx, "tracker.CheckWallet",
		trace.WithAttributes(attribute.String("wallet", wallet)))
	defer span.End()

	result := domain.WalletResult{WalletAddress: wallet}
	fail := func(err error) domain.WalletResult {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Printf("ERROR: wallet %s: %v", wallet, err)
		result.Outcome = domain.OutcomeError
		result.Error = err.Error()
		return result
	}

	report, err := c.holdings.Lookup(ctx, wallet)
	if err != nil {
		if errors.Is(err, holdings.ErrNoTokenAccounts) {
			result.Outcome = domain.OutcomeNoAccounts
			return result
		}
		return fail(fmt.Errorf("error checking token holding duration: %w", err))
	}
	observability.RecordHoldings(len(report.Holdings))

	if len(report.Holdings) == 0 {
		result.Outcome = domain.OutcomeNoHoldings
		return result
	}

	an, err := c.analyzer.Analyze(ctx, report)
	if err != nil {
		return fail(err)
	}
	result.Analysis = an

	for _, h := range report.Holdings {
		r, err := c.rewards.Calculate(h.HoldingDurationDays, wallet)
		if err != nil {
			return fail(fmt.Errorf("calculate reward for %s: %w", h.TokenAccount, err))
		}
		observability.RecordReward(string(r.Tier), r.Boost)
		result.Rewards = append(result.Rewards, domain.HoldingReward{Holding: h, Reward: *r})
	}

	result.Outcome = domain.OutcomeOK
	return result
}

// recordSnapshots appends the run's rewards to the snapshot store.
// Storage failures are logged; the run's console output is unaffected.
func (c *Controller) recordSnapshots(ctx context.Context, summary *domain.CheckSummary) {
	if c.snapshots == nil {
		return
	}
	var snaps []*domain.RewardSnapshot
	for _, res := range summary.Results {
		for _, hr := range res.Rewards {
			snap := domain.NewRewardSnapshot(summary.RunID, res.WalletAddress, hr.Holding, hr.Reward, summary.FinishedAt)
			snap.SnapshotID = idhash.ComputeSnapshotID(summary.RunID, res.WalletAddress, hr.Holding.TokenAccount)
			snaps = append(snaps, snap)
		}
	}
	if len(snaps) == 0 {
		return
	}
	// The run context may already be cancelled; the write is still wanted.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := c.snapshots.InsertBulk(writeCtx, snaps); err != nil {
		c.logger.Printf("WARN: record %d reward snapshots for run %s: %v", len(snaps), summary.RunID, err)
	}
}

func (c *Controller) watch(ctx context.Context, address string) {
	if c.watcher == nil {
		return
	}
	if err := c.watcher.Watch(ctx, address); err != nil {
		c.logger.Printf("WARN: watch %s: %v", address, err)
	}
}
