// Package league derives league-scoped session state: the current week number
// and the roster-to-team-name directory.
package league

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// WeekClock derives the current league week from wall clock and the
// configured start of week 2, recomputing on a fixed interval. Readers always
// get the last computed value; nothing recomputes inline on the read path.
type WeekClock struct {
	week2Start time.Time
	now        func() time.Time
	logger     *slog.Logger

	mu      sync.RWMutex
	current int
}

// NewWeekClock creates a WeekClock and computes the initial week.
func NewWeekClock(week2Start time.Time, logger *slog.Logger) *WeekClock {
	c := &WeekClock{
		week2Start: week2Start,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.With(slog.String("component", "weekclock")),
	}
	c.Recompute()
	return c
}

// WeekAt derives the week number for an arbitrary instant: week 1 before the
// week-2 threshold, then one more for every complete 7-day period since.
func (c *WeekClock) WeekAt(now time.Time) int {
	if now.Before(c.week2Start) {
		return 1
	}
	days := int(now.Sub(c.week2Start) / (24 * time.Hour))
	return 2 + days/7
}

// CurrentWeek returns the last computed (or overridden) week number.
func (c *WeekClock) CurrentWeek() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Recompute derives the week from wall clock and caches it, wiping any manual
// override. Returns the new value.
func (c *WeekClock) Recompute() int {
	week := c.WeekAt(c.now())
	c.mu.Lock()
	c.current = week
	c.mu.Unlock()
	return week
}

// Override replaces the cached week until the next scheduled recomputation,
// which recomputes from wall clock. Overrides are not sticky across
// recomputation cycles.
func (c *WeekClock) Override(week int) {
	c.mu.Lock()
	c.current = week
	c.mu.Unlock()
	c.logger.Info("week manually overridden", slog.Int("week", week))
}

// RunLoop recomputes the week on a repeating interval until the context is
// cancelled.
func (c *WeekClock) RunLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("week recompute loop stopped")
			return ctx.Err()
		case <-ticker.C:
			week := c.Recompute()
			c.logger.Info("week recomputed", slog.Int("week", week))
		}
	}
}
