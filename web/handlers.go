package web

import (
	"encoding/json"
	"net/http"

	"relloyd/focustrack/models"
)

// writeJSON encodes v with the JSON content type; encoding failures are
// logged and answered with a 500.
func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Errorf("Error encoding response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// stateHandler returns the current tracker state.
func (h *Handler) stateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, h.tracker.State())
}

// pauseHandler toggles tracking and returns the new paused flag.
func (h *Handler) pauseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}
	paused := h.tracker.TogglePause()
	h.writeJSON(w, models.PauseResponse{Paused: paused})
}

// todayHandler returns the cheap today stats computed straight from stored
// records.
func (h *Handler) todayHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}
	stats, err := h.tracker.TodayStats()
	if err != nil {
		h.logger.Errorf("Error computing today stats: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, stats)
}

// summaryHandler aggregates today's records into the full daily summary.
func (h *Handler) summaryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	day := models.DayKey(h.nowFunc())
	var records []models.ActivityRecord
	if _, err := h.store.Get(models.ActivitiesKey(day), &records); err != nil {
		h.logger.Errorf("Error reading records for %s: %v", day, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, h.summarizer.Aggregate(day, records))
}

// syncHandler reports sync status on GET and forces a sync on POST.
func (h *Handler) syncHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.writeJSON(w, h.syncer.Status())
		return
	}

	if r.Method == http.MethodPost {
		if err := h.syncer.SyncNow(r.Context()); err != nil {
			h.logger.Errorf("Error running manual sync: %v", err)
			http.Error(w, "Sync failed", http.StatusBadGateway)
			return
		}
		h.writeJSON(w, h.syncer.Status())
		return
	}

	http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
}
