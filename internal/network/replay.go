package network

import (
	"encoding/json"
	"net/http"
	"strconv"

	"microcity/server/internal/events"
	"microcity/server/internal/platform/logger"
)

// ReplayHandler serves the retained event history as JSON, for observer UIs
// that join late or poll instead of holding a socket open.
type ReplayHandler struct {
	eventLog *events.Log
	logger   *logger.Logger
}

// NewReplayHandler creates the replay endpoint over the event log.
func NewReplayHandler(el *events.Log, log *logger.Logger) *ReplayHandler {
	return &ReplayHandler{eventLog: el, logger: log}
}

// replayResponse is the JSON envelope of a replay page.
type replayResponse struct {
	Events []events.Event `json:"events"`
	Cursor uint64         `json:"cursor"`
}

// Handler returns the HTTP handler. Query parameters: "since" is the sequence
// cursor from a previous page (0 for the oldest retained), "type" filters by
// event type.
func (h *ReplayHandler) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var since uint64
		if raw := r.URL.Query().Get("since"); raw != "" {
			parsed, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				http.Error(w, "Invalid since cursor", http.StatusBadRequest)
				return
			}
			since = parsed
		}

		batch, cursor := h.eventLog.ReplaySince(since)

		if typeFilter := r.URL.Query().Get("type"); typeFilter != "" {
			filtered := batch[:0]
			for _, e := range batch {
				if string(e.Type) == typeFilter {
					filtered = append(filtered, e)
				}
			}
			batch = filtered
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(replayResponse{Events: batch, Cursor: cursor}); err != nil {
			h.logger.Errorf("Failed to encode replay response: %v", err)
		}
	}
}
