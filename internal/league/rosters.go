package league

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"traderaven/internal/platform/sleeper"
)

// MembershipSource provides league users and rosters.
type MembershipSource interface {
	LeagueUsers(ctx context.Context) ([]sleeper.User, error)
	LeagueRosters(ctx context.Context) ([]sleeper.Roster, error)
}

// RosterDirectory maps roster ids to display team names. It is built once per
// session and read-only afterwards except through an explicit Refresh.
type RosterDirectory struct {
	source MembershipSource
	logger *slog.Logger

	mu    sync.RWMutex
	teams map[int]string
}

// NewRosterDirectory creates an empty directory; call Refresh to populate it.
func NewRosterDirectory(source MembershipSource, logger *slog.Logger) *RosterDirectory {
	return &RosterDirectory{
		source: source,
		logger: logger.With(slog.String("component", "rosters")),
		teams:  make(map[int]string),
	}
}

// Refresh rebuilds the roster-to-team map from league membership data. The
// custom team name wins over the owner's display name; rosters whose owner is
// unknown keep the "Team N" fallback applied at read time.
func (d *RosterDirectory) Refresh(ctx context.Context) error {
	users, err := d.source.LeagueUsers(ctx)
	if err != nil {
		return fmt.Errorf("refresh rosters: %w", err)
	}
	rosters, err := d.source.LeagueRosters(ctx)
	if err != nil {
		return fmt.Errorf("refresh rosters: %w", err)
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		name := u.Metadata.TeamName
		if name == "" {
			name = u.DisplayName
		}
		names[u.UserID] = name
	}

	teams := make(map[int]string, len(rosters))
	for _, r := range rosters {
		if r.OwnerID == "" || r.RosterID == 0 {
			continue
		}
		if name, ok := names[r.OwnerID]; ok && name != "" {
			teams[r.RosterID] = name
		}
	}

	d.mu.Lock()
	d.teams = teams
	d.mu.Unlock()

	d.logger.InfoContext(ctx, "mapped rosters to team names", slog.Int("rosters", len(teams)))
	return nil
}

// TeamName returns the display name for a roster, falling back to "Team N".
func (d *RosterDirectory) TeamName(rosterID int) string {
	d.mu.RLock()
	name, ok := d.teams[rosterID]
	d.mu.RUnlock()
	if !ok || name == "" {
		return fmt.Sprintf("Team %d", rosterID)
	}
	return name
}

// Teams returns a copy of the roster-to-team map.
func (d *RosterDirectory) Teams() map[int]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[int]string, len(d.teams))
	for id, name := range d.teams {
		out[id] = name
	}
	return out
}

// Len returns the number of mapped rosters.
func (d *RosterDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.teams)
}
