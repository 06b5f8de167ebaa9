package handler

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// ValueService exposes the valuation dataset to the control API.
type ValueService interface {
	Refresh(ctx context.Context) error
	SourceLabel() string
	LastRefreshed() time.Time
}

// NameResolver maps free-form player names to values.
type NameResolver interface {
	Resolve(ctx context.Context, name string) (float64, string)
}

// ValuesHandler serves valuation endpoints.
type ValuesHandler struct {
	values   ValueService
	resolver NameResolver
}

// NewValuesHandler creates a ValuesHandler.
func NewValuesHandler(values ValueService, resolver NameResolver) *ValuesHandler {
	return &ValuesHandler{values: values, resolver: resolver}
}

// RefreshValues triggers an immediate dataset refresh.
func (h *ValuesHandler) RefreshValues(w http.ResponseWriter, r *http.Request) {
	if err := h.values.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":    h.values.SourceLabel(),
		"refreshed": h.values.LastRefreshed(),
	})
}

// GetSource reports which dataset backs the current value table.
func (h *ValuesHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"source": h.values.SourceLabel()}
	if ts := h.values.LastRefreshed(); !ts.IsZero() {
		resp["refreshed"] = ts
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPlayer resolves a single player name to its value.
func (h *ValuesHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name parameter")
		return
	}
	value, matched := h.resolver.Resolve(r.Context(), name)
	if matched == "" {
		writeError(w, http.StatusNotFound, "no value found for "+name)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"input":   name,
		"matched": matched,
		"value":   value,
	})
}

// ComparePlayers resolves a comma-separated list of names side by side.
func (h *ValuesHandler) ComparePlayers(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("names")
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, "missing names parameter")
		return
	}

	type entry struct {
		Input   string  `json:"input"`
		Matched string  `json:"matched,omitempty"`
		Value   float64 `json:"value"`
		Found   bool    `json:"found"`
	}
	var results []entry
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		value, matched := h.resolver.Resolve(r.Context(), name)
		results = append(results, entry{
			Input:   name,
			Matched: matched,
			Value:   value,
			Found:   matched != "",
		})
	}
	if len(results) == 0 {
		writeError(w, http.StatusBadRequest, "no names provided")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"players": results})
}
