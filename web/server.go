package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"relloyd/focustrack/config"
	"relloyd/focustrack/models"
)

// TrackerAPI is what the control surface needs from the activity tracker.
type TrackerAPI interface {
	State() models.TrackerState
	TogglePause() bool
	TodayStats() (models.TodayStats, error)
}

// SyncAPI is what the control surface needs from the sync dispatcher.
type SyncAPI interface {
	Status() models.SyncStatus
	SyncNow(ctx context.Context) error
}

// Summarizer produces the full daily summary for the report endpoint.
type Summarizer interface {
	Aggregate(date string, records []models.ActivityRecord) models.DailySummary
}

type Handler struct {
	logger     *zap.SugaredLogger
	startTime  time.Time
	tracker    TrackerAPI
	syncer     SyncAPI
	summarizer Summarizer
	store      models.Store
	nowFunc    func() time.Time
}

// NewServer builds the control-surface server. events, when non-nil, is the
// host event ingress mounted at /events.
func NewServer(logger *zap.SugaredLogger, tracker TrackerAPI, syncer SyncAPI, summarizer Summarizer, st models.Store, events http.Handler) *http.Server {
	h := Handler{
		logger:     logger,
		startTime:  time.Now(),
		tracker:    tracker,
		syncer:     syncer,
		summarizer: summarizer,
		store:      st,
		nowFunc:    time.Now,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/state", h.stateHandler)
	mux.HandleFunc("/pause", h.pauseHandler)
	mux.HandleFunc("/today", h.todayHandler)
	mux.HandleFunc("/summary", h.summaryHandler)
	mux.HandleFunc("/sync", h.syncHandler)
	if events != nil {
		mux.Handle("/events", events)
	}

	return &http.Server{
		Addr:                         fmt.Sprintf(":%d", config.AppCfg.WebConfig.WebPort),
		Handler:                      mux,
		DisableGeneralOptionsHandler: false,
		TLSConfig:                    nil,
		ReadTimeout:                  30 * time.Second, // Maximum duration for reading the request body
		ReadHeaderTimeout:            5 * time.Second,  // Time to read headers before timing out
		WriteTimeout:                 30 * time.Second, // Maximum duration for writing the response
		IdleTimeout:                  30 * time.Second, // Maximum amount of time to keep idle connections alive
		MaxHeaderBytes:               1 << 20,          // Maximum size of request headers (1 MB)
	}
}
