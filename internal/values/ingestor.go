package values

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"traderaven/internal/domain"
)

// BulkSource provides the external bulk value dataset. FetchValues may
// return an empty map; the ingestor treats that as a failed refresh.
type BulkSource interface {
	FetchValues(ctx context.Context) (map[string]float64, error)
	SourceLabel() string
}

// Ingestor refreshes the in-memory value table from the bulk source and
// writes every pair through the persistent store. A refresh is
// replace-all-or-nothing: a failed or empty fetch leaves both the table and
// the store untouched, so a truncated feed can never produce a partially
// correct table.
type Ingestor struct {
	source BulkSource
	table  *Table
	store  domain.ValueStore
	logger *slog.Logger

	mu         sync.Mutex
	sourceUsed string
	refreshed  time.Time
}

// NewIngestor creates an Ingestor.
func NewIngestor(source BulkSource, table *Table, store domain.ValueStore, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		source:     source,
		table:      table,
		store:      store,
		logger:     logger.With(slog.String("component", "ingestor")),
		sourceUsed: "unknown",
	}
}

// Seed loads every persisted record into the table. Called once at startup so
// resolution works before the first refresh completes.
func (i *Ingestor) Seed(ctx context.Context) error {
	records, err := i.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("seed value table: %w", err)
	}
	i.table.Seed(records)
	i.logger.InfoContext(ctx, "seeded value table from store", slog.Int("records", len(records)))
	return nil
}

// Refresh fetches the bulk dataset, replaces the table, and writes through
// the store. Callers on the scheduled loop log the returned error; the manual
// trigger propagates it, including store unavailability, to the operator.
func (i *Ingestor) Refresh(ctx context.Context) error {
	fetched, err := i.source.FetchValues(ctx)
	if err != nil {
		return fmt.Errorf("fetch bulk values: %w", err)
	}
	// Guard here, not just in the source: no BulkSource may wipe the table.
	if len(fetched) == 0 {
		return fmt.Errorf("fetch bulk values: %w", domain.ErrEmptyDataset)
	}

	i.table.ReplaceAll(fetched)

	i.mu.Lock()
	i.sourceUsed = i.source.SourceLabel()
	i.refreshed = time.Now().UTC()
	i.mu.Unlock()

	if err := i.store.UpsertAll(ctx, fetched); err != nil {
		return fmt.Errorf("persist bulk values: %w", err)
	}

	i.logger.InfoContext(ctx, "value table refreshed",
		slog.Int("players", len(fetched)),
		slog.String("source", i.source.SourceLabel()),
	)
	return nil
}

// SourceLabel reports which source last refreshed the table, or "unknown"
// before the first successful refresh.
func (i *Ingestor) SourceLabel() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sourceUsed
}

// LastRefreshed returns the time of the last successful refresh, zero before
// the first one.
func (i *Ingestor) LastRefreshed() time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.refreshed
}

// RunLoop refreshes on a repeating interval until the context is cancelled.
// Failures abort only the current cycle.
func (i *Ingestor) RunLoop(ctx context.Context, interval time.Duration) error {
	// Run immediately on start.
	if err := i.Refresh(ctx); err != nil {
		i.logger.Error("value refresh failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			i.logger.Info("value refresh loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := i.Refresh(ctx); err != nil {
				i.logger.Error("value refresh failed", slog.String("error", err.Error()))
			}
		}
	}
}
