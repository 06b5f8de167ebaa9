package handler

import (
	"encoding/json"
	"net/http"
)

// WeekSource exposes week reads and manual overrides.
type WeekSource interface {
	CurrentWeek() int
	Override(week int)
}

// WeekHandler serves league-week endpoints.
type WeekHandler struct {
	weeks WeekSource
}

// NewWeekHandler creates a WeekHandler.
func NewWeekHandler(weeks WeekSource) *WeekHandler {
	return &WeekHandler{weeks: weeks}
}

// GetWeek returns the week currently used for transaction polling.
func (h *WeekHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"week": h.weeks.CurrentWeek()})
}

// OverrideWeek replaces the current week until the next scheduled recompute.
func (h *WeekHandler) OverrideWeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Week int `json:"week"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Week < 1 {
		writeError(w, http.StatusBadRequest, "week must be >= 1")
		return
	}
	h.weeks.Override(req.Week)
	writeJSON(w, http.StatusOK, map[string]any{"week": req.Week})
}
