package handler

import (
	"context"
	"net/http"
	"strconv"
)

// RosterService exposes the roster-to-team map to the control API.
type RosterService interface {
	Refresh(ctx context.Context) error
	Teams() map[int]string
}

// RostersHandler serves league roster endpoints.
type RostersHandler struct {
	rosters RosterService
}

// NewRostersHandler creates a RostersHandler.
func NewRostersHandler(rosters RosterService) *RostersHandler {
	return &RostersHandler{rosters: rosters}
}

// ListRosters returns the current roster-to-team mapping.
func (h *RostersHandler) ListRosters(w http.ResponseWriter, r *http.Request) {
	teams := h.rosters.Teams()
	out := make(map[string]string, len(teams))
	for id, name := range teams {
		out[strconv.Itoa(id)] = name
	}
	writeJSON(w, http.StatusOK, map[string]any{"rosters": out})
}

// RefreshRosters rebuilds the mapping from live league membership data.
func (h *RostersHandler) RefreshRosters(w http.ResponseWriter, r *http.Request) {
	if err := h.rosters.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rosters": len(h.rosters.Teams())})
}
