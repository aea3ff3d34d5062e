// Package cli runs the operator command loop. A single goroutine consumes
// stdin lines, daily schedule ticks and wallet activity triggers, so checks
// never overlap and the tracked set is only mutated here.
package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"os"
	"time"

	"daio-rewards/internal/domain"
	"daio-rewards/internal/reporting"
	"daio-rewards/internal/solana"
)

// DefaultHistoryLimit bounds the rows printed by the history command.
const DefaultHistoryLimit = 20

// Controller is the tracker surface the loop drives.
type Controller interface {
	Add(ctx context.Context, address string) (bool, error)
	Remove(ctx context.Context, address string) bool
	List() []string
	IsTracked(address string) bool
	Check(ctx context.Context, trigger domain.Trigger) (*domain.CheckSummary, error)
	CheckWallet(ctx context.Context, address string, trigger domain.Trigger) (*domain.CheckSummary, error)
	History(ctx context.Context, address string, limit int) ([]*domain.RewardSnapshot, error)
}

// Options configures a Loop.
type Options struct {
	In           io.Reader
	Console      *reporting.Console
	Controller   Controller
	Ticks        <-chan time.Time // daily schedule; nil disables
	Triggers     <-chan string    // wallet activity; nil disables
	Reports      *reporting.Writer
	HistoryLimit int
	Logger       *log.Logger
}

// Loop is the control goroutine.
type Loop struct {
	in           io.Reader
	console      *reporting.Console
	ctrl         Controller
	ticks        <-chan time.Time
	triggers     <-chan string
	reports      *reporting.Writer
	historyLimit int
	logger       *log.Logger
}

// New creates a Loop.
func New(opts Options) *Loop {
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	console := opts.Console
	if console == nil {
		console = reporting.NewConsole(os.Stdout, nil)
	}
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Loop{
		in:           in,
		console:      console,
		ctrl:         opts.Controller,
		ticks:        opts.Ticks,
		triggers:     opts.Triggers,
		reports:      opts.Reports,
		historyLimit: limit,
		logger:       logger,
	}
}

// Run processes events until exit, end of input or ctx cancellation.
// It returns nil on exit and end of input, ctx.Err() on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, readErr := l.readLines(ctx)

	l.console.Prompt()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				if err := *readErr; err != nil {
					return err
				}
				l.logger.Println("Input closed, exiting")
				return nil
			}
			if l.handleLine(ctx, line) {
				return nil
			}

		case _, ok := <-l.ticks:
			if !ok {
				l.ticks = nil
				continue
			}
			l.runCheck(ctx, domain.TriggerSchedule)

		case addr, ok := <-l.triggers:
			if !ok {
				l.triggers = nil
				continue
			}
			l.runActivity(ctx, addr)
		}
		l.console.Prompt()
	}
}

// readLines scans l.in on its own goroutine. The returned error pointer is
// valid once the channel is closed.
func (l *Loop) readLines(ctx context.Context) (<-chan string, *error) {
	lines := make(chan string)
	var scanErr error

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(l.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr = scanner.Err()
	}()
	return lines, &scanErr
}

// handleLine executes one command and reports whether the loop should exit.
func (l *Loop) handleLine(ctx context.Context, line string) bool {
	cmd, err := ParseCommand(line)
	if err != nil {
		l.console.Invalid(err)
		return false
	}

	switch cmd.Name {
	case "":
	case CmdAdd:
		added, err := l.ctrl.Add(ctx, cmd.Address)
		if err != nil {
			if errors.Is(err, solana.ErrInvalidAddress) {
				l.console.Invalid(err)
			} else {
				l.console.Error(err)
			}
			return false
		}
		l.console.Tracking(cmd.Address, added)
	case CmdRemove:
		l.ctrl.Remove(ctx, cmd.Address)
		l.console.Stopped(cmd.Address)
	case CmdList:
		l.console.WalletList(l.ctrl.List())
	case CmdCheck:
		l.runCheck(ctx, domain.TriggerManual)
	case CmdHistory:
		snaps, err := l.ctrl.History(ctx, cmd.Address, l.historyLimit)
		l.console.History(cmd.Address, snaps, err)
	case CmdHelp:
		l.console.Help()
	case CmdExit:
		return true
	}
	return false
}

func (l *Loop) runCheck(ctx context.Context, trigger domain.Trigger) {
	summary, err := l.ctrl.Check(ctx, trigger)
	l.finish(summary, err)
}

func (l *Loop) runActivity(ctx context.Context, address string) {
	if !l.ctrl.IsTracked(address) {
		return
	}
	summary, err := l.ctrl.CheckWallet(ctx, address, domain.TriggerActivity)
	l.finish(summary, err)
}

func (l *Loop) finish(summary *domain.CheckSummary, err error) {
	if summary != nil {
		l.console.Check(summary)
		l.writeReports(summary)
	}
	if err != nil {
		l.console.Error(err)
	}
}

func (l *Loop) writeReports(summary *domain.CheckSummary) {
	if l.reports == nil || len(summary.Results) == 0 {
		return
	}
	md, csv, err := l.reports.Write(summary)
	if err != nil {
		l.logger.Printf("WARN: write reports for run %s: %v", summary.RunID, err)
		return
	}
	l.logger.Printf("Reports written: %s, %s", md, csv)
}
