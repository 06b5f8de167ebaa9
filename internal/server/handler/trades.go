package handler

import (
	"context"
	"errors"
	"net/http"

	"traderaven/internal/watcher"
)

// TradeMonitor exposes watcher state and manual poll control.
type TradeMonitor interface {
	Poll(ctx context.Context) error
	KnownCount() int
}

// TradesHandler serves trade-watcher endpoints.
type TradesHandler struct {
	monitor TradeMonitor
}

// NewTradesHandler creates a TradesHandler.
func NewTradesHandler(monitor TradeMonitor) *TradesHandler {
	return &TradesHandler{monitor: monitor}
}

// GetStatus reports how many trades have been announced this session.
func (h *TradesHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"announced": h.monitor.KnownCount()})
}

// TriggerPoll runs one polling cycle immediately.
func (h *TradesHandler) TriggerPoll(w http.ResponseWriter, r *http.Request) {
	if err := h.monitor.Poll(r.Context()); err != nil {
		if errors.Is(err, watcher.ErrPollInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"announced": h.monitor.KnownCount()})
}
