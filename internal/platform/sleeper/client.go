// Package sleeper is the REST client for the Sleeper fantasy-football API:
// league membership, rosters, weekly transaction feeds, and the global player
// directory. All endpoints are unauthenticated GETs.
package sleeper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the REST client for the Sleeper API.
type Client struct {
	baseURL    string
	leagueID   string
	httpClient *http.Client
}

// NewClient creates a Sleeper client for one league.
//
// baseURL is the API root, e.g. "https://api.sleeper.app/v1".
func NewClient(baseURL, leagueID string) *Client {
	return &Client{
		baseURL:  baseURL,
		leagueID: leagueID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// LeagueUsers returns every member of the league.
func (c *Client) LeagueUsers(ctx context.Context) ([]User, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("/league/%s/users", c.leagueID))
	if err != nil {
		return nil, fmt.Errorf("sleeper: get league users: %w", err)
	}

	var users []User
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("sleeper: decode league users: %w", err)
	}
	return users, nil
}

// LeagueRosters returns every roster in the league.
func (c *Client) LeagueRosters(ctx context.Context) ([]Roster, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("/league/%s/rosters", c.leagueID))
	if err != nil {
		return nil, fmt.Errorf("sleeper: get league rosters: %w", err)
	}

	var rosters []Roster
	if err := json.Unmarshal(body, &rosters); err != nil {
		return nil, fmt.Errorf("sleeper: decode league rosters: %w", err)
	}
	return rosters, nil
}

// Transactions returns the league transaction feed for the given week.
func (c *Client) Transactions(ctx context.Context, week int) ([]Transaction, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("/league/%s/transactions/%d", c.leagueID, week))
	if err != nil {
		return nil, fmt.Errorf("sleeper: get transactions week %d: %w", week, err)
	}

	var txns []Transaction
	if err := json.Unmarshal(body, &txns); err != nil {
		return nil, fmt.Errorf("sleeper: decode transactions week %d: %w", week, err)
	}
	return txns, nil
}

// PlayerDirectory returns the global player-id to display-name map. Entries
// without a full name are dropped. The underlying payload is several
// megabytes; callers are expected to cache the result between poll cycles.
func (c *Client) PlayerDirectory(ctx context.Context) (map[string]string, error) {
	body, err := c.doGet(ctx, "/players/nfl")
	if err != nil {
		return nil, fmt.Errorf("sleeper: get player directory: %w", err)
	}

	var players map[string]Player
	if err := json.Unmarshal(body, &players); err != nil {
		return nil, fmt.Errorf("sleeper: decode player directory: %w", err)
	}

	directory := make(map[string]string, len(players))
	for id, p := range players {
		if p.FullName != "" {
			directory[id] = p.FullName
		}
	}
	return directory, nil
}

// doGet sends a GET request and returns the response body on 2xx.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
