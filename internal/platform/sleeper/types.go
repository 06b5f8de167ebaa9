package sleeper

// User is a league member as returned by /league/{id}/users.
type User struct {
	UserID      string       `json:"user_id"`
	DisplayName string       `json:"display_name"`
	Username    string       `json:"username"`
	Metadata    UserMetadata `json:"metadata"`
}

// UserMetadata carries the optional custom team name.
type UserMetadata struct {
	TeamName string `json:"team_name"`
}

// Roster links a roster slot to its owning user, as returned by
// /league/{id}/rosters.
type Roster struct {
	RosterID int      `json:"roster_id"`
	OwnerID  string   `json:"owner_id"`
	Players  []string `json:"players"`
}

// Transaction is one entry of the weekly transaction feed. Adds maps a player
// id to the roster id that received that player. RosterIDs lists the rosters
// involved, in feed order.
type Transaction struct {
	TransactionID string         `json:"transaction_id"`
	Type          string         `json:"type"`
	Status        string         `json:"status"`
	Adds          map[string]int `json:"adds"`
	RosterIDs     []int          `json:"roster_ids"`
}

// Player is one entry of the global player directory. Only FullName is used;
// entries without it (team defenses, etc.) are dropped from the name map.
type Player struct {
	FullName string `json:"full_name"`
}
