package app

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"hotspotd/internal/domain"
)

// ControlPlane is the control-server port the poller drives.
type ControlPlane interface {
	Fetch(ctx context.Context) ([]domain.Command, error)
	Report(ctx context.Context, commandID int64, result domain.CommandResult) error
}

// CommandExecutor executes one command and never fails; every outcome is a
// result payload.
type CommandExecutor interface {
	Execute(ctx context.Context, cmd domain.Command) domain.CommandResult
}

// Poller fetches pending commands on a fixed interval, executes them in id
// order and reports each outcome back. Execution is strictly sequential:
// the device gives no transactional guarantees across connections, so there
// must be exactly one writer.
type Poller struct {
	control  ControlPlane
	executor CommandExecutor
	journal  domain.CommandJournal
	deviceID string
	interval time.Duration

	lastPoll atomic.Int64
}

// NewPoller creates a poll loop. journal may be nil; outcomes are then not
// recorded locally.
func NewPoller(control ControlPlane, executor CommandExecutor, journal domain.CommandJournal, deviceID string, interval time.Duration) *Poller {
	return &Poller{
		control:  control,
		executor: executor,
		journal:  journal,
		deviceID: deviceID,
		interval: interval,
	}
}

// LastPoll reports when the most recent cycle completed, or the zero time
// before the first one. Safe for concurrent use with Run.
func (p *Poller) LastPoll() time.Time {
	s := p.lastPoll.Load()
	if s == 0 {
		return time.Time{}
	}
	return time.Unix(s, 0)
}

// Run executes poll cycles until ctx is cancelled. Cancellation is honored
// between cycles only, never mid-cycle, so a command is never left executed
// but unreported.
func (p *Poller) Run(ctx context.Context) {
	slog.Info("poll loop started", "device_id", p.deviceID, "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.RunOnce(ctx)
		p.lastPoll.Store(time.Now().Unix())

		select {
		case <-ctx.Done():
			slog.Info("poll loop stopping")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single fetch-execute-report cycle. Fetch failures and
// malformed batches are logged and skipped whole; no partial processing.
func (p *Poller) RunOnce(ctx context.Context) {
	commands, err := p.control.Fetch(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedBatch) {
			slog.Error("skipping malformed command batch", "err", err)
		} else {
			slog.Error("failed to fetch commands", "err", err)
		}
		return
	}
	if len(commands) == 0 {
		return
	}

	// The server does not guarantee ordering within a batch.
	sort.Slice(commands, func(i, j int) bool { return commands[i].ID < commands[j].ID })

	for _, cmd := range commands {
		slog.Info("processing command", "command_id", cmd.ID, "type", cmd.Type)
		result := p.executor.Execute(ctx, cmd)
		if err := p.control.Report(ctx, cmd.ID, result); err != nil {
			slog.Error("failed to report command status", "command_id", cmd.ID, "err", err)
		}
		p.record(ctx, cmd, result)
	}
}

func (p *Poller) record(ctx context.Context, cmd domain.Command, result domain.CommandResult) {
	if p.journal == nil {
		return
	}
	entry := domain.JournalEntry{
		CommandID: cmd.ID,
		Type:      cmd.Type,
		Status:    result.Status,
		Message:   result.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.journal.Append(ctx, entry); err != nil {
		slog.Warn("journal append failed", "command_id", cmd.ID, "err", err)
	}
}
