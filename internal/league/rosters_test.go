package league

import (
	"context"
	"errors"
	"testing"

	"traderaven/internal/platform/sleeper"
)

type fakeMembership struct {
	users      []sleeper.User
	rosters    []sleeper.Roster
	usersErr   error
	rostersErr error
}

func (f *fakeMembership) LeagueUsers(context.Context) ([]sleeper.User, error) {
	return f.users, f.usersErr
}

func (f *fakeMembership) LeagueRosters(context.Context) ([]sleeper.Roster, error) {
	return f.rosters, f.rostersErr
}

func TestRosterDirectory_TeamNamePrefersCustomName(t *testing.T) {
	src := &fakeMembership{
		users: []sleeper.User{
			{UserID: "u1", DisplayName: "alice", Metadata: sleeper.UserMetadata{TeamName: "Gridiron Gang"}},
			{UserID: "u2", DisplayName: "bob"},
		},
		rosters: []sleeper.Roster{
			{RosterID: 1, OwnerID: "u1"},
			{RosterID: 2, OwnerID: "u2"},
		},
	}
	d := NewRosterDirectory(src, discardLogger())
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if got := d.TeamName(1); got != "Gridiron Gang" {
		t.Errorf("TeamName(1) = %q, want custom team name", got)
	}
	if got := d.TeamName(2); got != "bob" {
		t.Errorf("TeamName(2) = %q, want display name fallback", got)
	}
	if d.Len() != 2 {
		t.Errorf("Len = %d, want 2", d.Len())
	}
}

func TestRosterDirectory_UnknownRosterGetsNumberedFallback(t *testing.T) {
	d := NewRosterDirectory(&fakeMembership{}, discardLogger())

	if got := d.TeamName(7); got != "Team 7" {
		t.Errorf("TeamName(7) = %q, want Team 7", got)
	}
}

func TestRosterDirectory_OrphanRosterSkipped(t *testing.T) {
	src := &fakeMembership{
		users: []sleeper.User{
			{UserID: "u1", DisplayName: "alice"},
		},
		rosters: []sleeper.Roster{
			{RosterID: 1, OwnerID: "u1"},
			{RosterID: 2, OwnerID: ""},       // no owner
			{RosterID: 3, OwnerID: "u-gone"}, // owner not in users
		},
	}
	d := NewRosterDirectory(src, discardLogger())
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if d.Len() != 1 {
		t.Errorf("Len = %d, want 1", d.Len())
	}
	if got := d.TeamName(2); got != "Team 2" {
		t.Errorf("TeamName(2) = %q, want fallback", got)
	}
	if got := d.TeamName(3); got != "Team 3" {
		t.Errorf("TeamName(3) = %q, want fallback", got)
	}
}

func TestRosterDirectory_RefreshFailureKeepsOldMapping(t *testing.T) {
	src := &fakeMembership{
		users:   []sleeper.User{{UserID: "u1", DisplayName: "alice"}},
		rosters: []sleeper.Roster{{RosterID: 1, OwnerID: "u1"}},
	}
	d := NewRosterDirectory(src, discardLogger())
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	src.usersErr = errors.New("api down")
	if err := d.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := d.TeamName(1); got != "alice" {
		t.Errorf("mapping lost on failed refresh, got %q", got)
	}
}

func TestRosterDirectory_TeamsReturnsCopy(t *testing.T) {
	src := &fakeMembership{
		users:   []sleeper.User{{UserID: "u1", DisplayName: "alice"}},
		rosters: []sleeper.Roster{{RosterID: 1, OwnerID: "u1"}},
	}
	d := NewRosterDirectory(src, discardLogger())
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	teams := d.Teams()
	teams[1] = "mutated"
	if got := d.TeamName(1); got != "alice" {
		t.Errorf("Teams snapshot aliased internal map, got %q", got)
	}
}
