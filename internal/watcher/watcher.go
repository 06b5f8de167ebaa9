// Package watcher polls the league transaction feed, detects newly completed
// trades exactly once per process run, values both sides, and hands the
// resulting trade events to the notification boundary.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"traderaven/internal/domain"
	"traderaven/internal/platform/sleeper"
)

// TransactionSource provides the weekly transaction feed and the global
// player directory.
type TransactionSource interface {
	Transactions(ctx context.Context, week int) ([]sleeper.Transaction, error)
	PlayerDirectory(ctx context.Context) (map[string]string, error)
}

// AssetResolver maps a display name to a market value and its canonical form.
type AssetResolver interface {
	Resolve(ctx context.Context, name string) (float64, string)
}

// WeekSource provides the last computed league week.
type WeekSource interface {
	CurrentWeek() int
}

// TeamNamer maps roster ids to display team names.
type TeamNamer interface {
	TeamName(rosterID int) string
}

// Announcer hands a trade event to the notification boundary. A returned
// error means the hand-off was not accepted; the watcher will retry the trade
// on a later cycle.
type Announcer interface {
	Announce(ctx context.Context, event domain.TradeEvent) error
}

// ErrPollInProgress is returned by Poll when another cycle is still running.
var ErrPollInProgress = errors.New("poll cycle already in progress")

// Watcher runs the trade-detection cycle: fetch, filter, resolve, judge,
// announce. The set of announced transaction ids lives for the process only
// and never shrinks; it is recorded after the announce attempt succeeds, so
// delivery to the boundary is at-least-once.
type Watcher struct {
	feed      TransactionSource
	directory domain.DirectoryCache
	resolver  AssetResolver
	weeks     WeekSource
	teams     TeamNamer
	announcer Announcer
	band      float64
	logger    *slog.Logger
	now       func() time.Time

	// cycle serializes Poll so a manual trigger can never overlap the
	// scheduled loop; both would pass the Known check before either records.
	cycle sync.Mutex

	mu    sync.Mutex
	known map[string]struct{}
}

// New creates a Watcher. directory may be nil, in which case the player
// directory is fetched live every cycle.
func New(
	feed TransactionSource,
	directory domain.DirectoryCache,
	resolver AssetResolver,
	weeks WeekSource,
	teams TeamNamer,
	announcer Announcer,
	fairnessBand float64,
	logger *slog.Logger,
) *Watcher {
	return &Watcher{
		feed:      feed,
		directory: directory,
		resolver:  resolver,
		weeks:     weeks,
		teams:     teams,
		announcer: announcer,
		band:      fairnessBand,
		logger:    logger.With(slog.String("component", "watcher")),
		now:       func() time.Time { return time.Now().UTC() },
		known:     make(map[string]struct{}),
	}
}

// Poll executes one full cycle against the current week. At most one cycle
// runs at a time; a call that arrives while another is active returns
// ErrPollInProgress. A feed failure aborts the cycle; failures on individual
// transactions skip only that transaction.
func (w *Watcher) Poll(ctx context.Context) error {
	if !w.cycle.TryLock() {
		return ErrPollInProgress
	}
	defer w.cycle.Unlock()

	week := w.weeks.CurrentWeek()

	txns, err := w.feed.Transactions(ctx, week)
	if err != nil {
		return fmt.Errorf("fetch transactions: %w", err)
	}

	directory, err := w.playerDirectory(ctx)
	if err != nil {
		return fmt.Errorf("fetch player directory: %w", err)
	}

	w.logger.DebugContext(ctx, "fetched transactions",
		slog.Int("week", week),
		slog.Int("count", len(txns)),
	)

	for _, txn := range txns {
		if err := w.process(ctx, week, txn, directory); err != nil {
			w.logger.WarnContext(ctx, "transaction skipped",
				slog.String("transaction_id", txn.TransactionID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// process filters and, when the transaction qualifies, values and announces
// one trade.
func (w *Watcher) process(ctx context.Context, week int, txn sleeper.Transaction, directory map[string]string) error {
	if txn.Type != "trade" || txn.Status != "complete" {
		return nil
	}
	if w.Known(txn.TransactionID) {
		return nil
	}

	if len(txn.RosterIDs) < 2 {
		return errors.New("fewer than two rosters in trade")
	}
	if len(txn.RosterIDs) > 2 {
		// Only the first two listed rosters are considered.
		w.logger.WarnContext(ctx, "trade involves more than two rosters, truncating",
			slog.String("transaction_id", txn.TransactionID),
			slog.Int("rosters", len(txn.RosterIDs)),
		)
	}

	sideA := w.buildSide(ctx, txn, txn.RosterIDs[0], directory)
	sideB := w.buildSide(ctx, txn, txn.RosterIDs[1], directory)

	event := domain.TradeEvent{
		TransactionID: txn.TransactionID,
		Week:          week,
		SideA:         sideA,
		SideB:         sideB,
		Verdict:       domain.JudgeFairness(sideA, sideB, w.band),
		DetectedAt:    w.now(),
	}

	if err := w.announcer.Announce(ctx, event); err != nil {
		// Not recorded as known: the trade is retried next cycle.
		return fmt.Errorf("announce trade: %w", err)
	}
	w.record(txn.TransactionID)

	w.logger.InfoContext(ctx, "trade announced",
		slog.String("transaction_id", txn.TransactionID),
		slog.Int("week", week),
		slog.String("verdict", event.Verdict.String()),
	)
	return nil
}

// buildSide collects the assets the given roster received, maps player ids to
// display names (raw id when the directory has no entry), and sums their
// resolved values.
func (w *Watcher) buildSide(ctx context.Context, txn sleeper.Transaction, rosterID int, directory map[string]string) domain.TradeSide {
	var ids []string
	for pid, rid := range txn.Adds {
		if rid == rosterID {
			ids = append(ids, pid)
		}
	}
	sort.Strings(ids)

	side := domain.TradeSide{
		RosterID: rosterID,
		Team:     w.teams.TeamName(rosterID),
	}
	for _, pid := range ids {
		name, ok := directory[pid]
		if !ok {
			name = pid
		}
		value, _ := w.resolver.Resolve(ctx, name)
		side.Assets = append(side.Assets, name)
		side.Value += value
	}
	return side
}

// playerDirectory returns the id-to-name directory, preferring the cache. A
// cache read or write failure never fails the cycle; only a live fetch on a
// cache miss can.
func (w *Watcher) playerDirectory(ctx context.Context) (map[string]string, error) {
	if w.directory != nil {
		cached, err := w.directory.Get(ctx)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			w.logger.WarnContext(ctx, "directory cache read failed", slog.String("error", err.Error()))
		}
	}

	directory, err := w.feed.PlayerDirectory(ctx)
	if err != nil {
		return nil, err
	}

	if w.directory != nil {
		if err := w.directory.Set(ctx, directory); err != nil {
			w.logger.WarnContext(ctx, "directory cache write failed", slog.String("error", err.Error()))
		}
	}
	return directory, nil
}

// Known reports whether the transaction id has already been announced this
// process run.
func (w *Watcher) Known(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.known[id]
	return ok
}

// KnownCount returns the size of the announced set.
func (w *Watcher) KnownCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.known)
}

func (w *Watcher) record(id string) {
	w.mu.Lock()
	w.known[id] = struct{}{}
	w.mu.Unlock()
}

// RunLoop polls on a repeating interval until the context is cancelled. Each
// cycle runs to completion before the next tick is consumed; a slow cycle
// delays the next poll rather than overlapping it.
func (w *Watcher) RunLoop(ctx context.Context, interval time.Duration) error {
	// Run immediately on start.
	if err := w.Poll(ctx); err != nil {
		w.logger.Error("trade poll failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("trade poll loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := w.Poll(ctx); err != nil {
				w.logger.Error("trade poll failed", slog.String("error", err.Error()))
			}
		}
	}
}
