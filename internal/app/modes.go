package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"traderaven/internal/league"
	"traderaven/internal/notify"
	"traderaven/internal/server"
	"traderaven/internal/server/handler"
	"traderaven/internal/values"
	"traderaven/internal/watcher"
)

// core holds the domain services shared by every operating mode.
type core struct {
	resolver *values.Resolver
	ingestor *values.Ingestor
	weeks    *league.WeekClock
	rosters  *league.RosterDirectory
	watcher  *watcher.Watcher
}

// buildCore constructs the domain services on top of the wired dependencies
// and runs the startup sequence: seed the value table from the store, fetch a
// fresh dataset, and map rosters to team names. Seed and roster failures are
// logged and tolerated; the services degrade to their fallbacks.
func (a *App) buildCore(ctx context.Context, deps *Dependencies) *core {
	logger := slog.Default()

	table := values.NewTable()
	resolver := values.NewResolver(
		table,
		a.cfg.Values.Overrides,
		a.cfg.Values.FuzzyCutoff,
		deps.ValueStore,
		logger,
	)
	ingestor := values.NewIngestor(deps.Values, table, deps.ValueStore, logger)

	if err := ingestor.Seed(ctx); err != nil {
		a.logger.WarnContext(ctx, "seeding value table from store failed",
			slog.String("error", err.Error()),
		)
	}
	if err := ingestor.Refresh(ctx); err != nil {
		a.logger.WarnContext(ctx, "initial value refresh failed, continuing with seeded values",
			slog.String("error", err.Error()),
		)
	}

	weeks := league.NewWeekClock(a.cfg.Week.Week2Start.Time, logger)

	rosters := league.NewRosterDirectory(deps.Sleeper, logger)
	if err := rosters.Refresh(ctx); err != nil {
		a.logger.WarnContext(ctx, "roster mapping failed, using roster id fallback names",
			slog.String("error", err.Error()),
		)
	}

	announcer := notify.NewTradeAnnouncer(deps.Notifier)
	w := watcher.New(
		deps.Sleeper,
		deps.DirectoryCache,
		resolver,
		weeks,
		rosters,
		announcer,
		a.cfg.Watcher.FairnessBand,
		logger,
	)

	return &core{
		resolver: resolver,
		ingestor: ingestor,
		weeks:    weeks,
		rosters:  rosters,
		watcher:  w,
	}
}

// WatchMode runs the trade watcher with its supporting refresh loops and no
// HTTP surface.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode")

	c := a.buildCore(ctx, deps)
	g, ctx := errgroup.WithContext(ctx)
	a.startLoops(ctx, g, c)
	return g.Wait()
}

// ServeMode runs the HTTP control API. Trade polling and value refreshes
// happen on demand through the API endpoints, but the week recompute loop
// still runs so the cached week tracks wall clock and a manual override
// stays non-sticky.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	c := a.buildCore(ctx, deps)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.weeks.RunLoop(ctx, a.cfg.Week.RecomputeInterval.Duration)
	})
	a.startServer(ctx, g, c)
	return g.Wait()
}

// FullMode runs the watcher loops and the HTTP control API together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	c := a.buildCore(ctx, deps)
	g, ctx := errgroup.WithContext(ctx)
	a.startLoops(ctx, g, c)
	if a.cfg.Server.Enabled {
		a.startServer(ctx, g, c)
	}
	return g.Wait()
}

// startLoops launches the periodic goroutines: trade polling, dataset
// refresh, and week recompute.
func (a *App) startLoops(ctx context.Context, g *errgroup.Group, c *core) {
	g.Go(func() error {
		return c.watcher.RunLoop(ctx, a.cfg.Watcher.PollInterval.Duration)
	})
	g.Go(func() error {
		return c.ingestor.RunLoop(ctx, a.cfg.Values.RefreshInterval.Duration)
	})
	g.Go(func() error {
		return c.weeks.RunLoop(ctx, a.cfg.Week.RecomputeInterval.Duration)
	})
}

// startServer launches the HTTP control API and a companion goroutine that
// shuts it down when the context is cancelled.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, c *core) {
	srv := server.NewServer(
		server.Config{Port: a.cfg.Server.Port},
		server.Handlers{
			Health:  handler.NewHealthHandler(),
			Week:    handler.NewWeekHandler(c.weeks),
			Values:  handler.NewValuesHandler(c.ingestor, c.resolver),
			Rosters: handler.NewRostersHandler(c.rosters),
			Trades:  handler.NewTradesHandler(c.watcher),
		},
		slog.Default(),
	)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
