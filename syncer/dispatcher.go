// Package syncer periodically pushes the day's aggregated activity to the
// remote collector. Failed batches stay unmarked and are resent in full on a
// later tick, so the collector sees at-least-once delivery of a growing
// record set rather than partial days.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"relloyd/focustrack/models"
)

// HTTPClient interface for mocking
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Summarizer turns a day's records into a summary. Implemented by
// aggregator.Aggregator.
type Summarizer interface {
	Aggregate(date string, records []models.ActivityRecord) models.DailySummary
}

type Dispatcher struct {
	logger      *zap.SugaredLogger
	cfg         *models.SyncConfig
	store       models.Store
	summarizer  Summarizer
	client      HTTPClient
	nowFunc     func() time.Time // Function to get the current time (defaults to time.Now)
	mu          sync.Mutex
	inFlight    bool
	failures    int
	nextAttempt time.Time
}

// NewDispatcher builds a Dispatcher. All arguments are required.
func NewDispatcher(logger *zap.SugaredLogger, cfg *models.SyncConfig, st models.Store, summarizer Summarizer) (*Dispatcher, error) {
	if logger == nil || cfg == nil || st == nil || summarizer == nil {
		return nil, fmt.Errorf("logger, config, store and summarizer must be provided")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("sync interval must be positive")
	}

	return &Dispatcher{
		logger:     logger,
		cfg:        cfg,
		store:      st,
		summarizer: summarizer,
		client:     &http.Client{Timeout: 30 * time.Second},
		nowFunc:    time.Now, // Default to time.Now
	}, nil
}

// Run syncs once immediately and then on every interval tick until the
// context is cancelled. Intended to be run as a goroutine.
func (d *Dispatcher) Run(ctx context.Context) {
	d.tick(ctx)

	ticker := time.NewTicker(d.cfg.Interval)
	for {
		select {
		case <-ctx.Done(): // Exit if the context is cancelled.
			ticker.Stop()
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

// SyncNow forces a sync attempt regardless of the failure backoff. Used by
// the control surface. It still refuses to overlap a running sync.
func (d *Dispatcher) SyncNow(ctx context.Context) error {
	if !d.begin(true) {
		return fmt.Errorf("a sync is already in progress")
	}
	err := d.syncOnce(ctx)
	d.finish(err)
	return err
}

// Status reports the last successful sync time and whether today's batch has
// been marked synced.
func (d *Dispatcher) Status() models.SyncStatus {
	var status models.SyncStatus
	if _, err := d.store.Get(models.KeyLastSyncTime, &status.LastSyncTime); err != nil {
		d.logger.Errorf("Failed to read last sync time: %v", err)
	}
	day := models.DayKey(d.nowFunc())
	if _, err := d.store.Get(models.SyncedKey(day), &status.TodaySynced); err != nil {
		d.logger.Errorf("Failed to read synced flag for %s: %v", day, err)
	}
	return status
}

// tick runs one guarded sync attempt.
func (d *Dispatcher) tick(ctx context.Context) {
	if !d.begin(false) {
		return
	}
	err := d.syncOnce(ctx)
	d.finish(err)
	if err != nil {
		d.logger.Errorf("Sync failed (attempt %d): %v", d.failureCount(), err)
	}
}

// begin claims the in-flight slot. With force unset it also honours the
// failure backoff window. Returns false when the attempt should be skipped.
func (d *Dispatcher) begin(force bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight {
		d.logger.Debugf("Sync already in flight, skipping")
		return false
	}
	if !force && d.nowFunc().Before(d.nextAttempt) {
		d.logger.Debugf("Backing off until %v, skipping", d.nextAttempt)
		return false
	}
	d.inFlight = true
	return true
}

// finish releases the in-flight slot and updates the capped exponential
// backoff: each consecutive failure doubles the delay from the base
// interval; a success resets it.
func (d *Dispatcher) finish(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight = false
	if err == nil {
		d.failures = 0
		d.nextAttempt = time.Time{}
		return
	}
	d.failures++
	delay := d.cfg.Interval
	for i := 1; i < d.failures && delay < d.cfg.MaxBackoff; i++ {
		delay *= 2
	}
	if d.cfg.MaxBackoff > 0 && delay > d.cfg.MaxBackoff {
		delay = d.cfg.MaxBackoff
	}
	d.nextAttempt = d.nowFunc().Add(delay)
}

func (d *Dispatcher) failureCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failures
}

// syncOnce reads today's records, aggregates them and posts the payload.
// An empty day is a silent no-op, not a network call.
func (d *Dispatcher) syncOnce(ctx context.Context) error {
	now := d.nowFunc()
	day := models.DayKey(now)

	var records []models.ActivityRecord
	if _, err := d.store.Get(models.ActivitiesKey(day), &records); err != nil {
		return fmt.Errorf("failed to read records for %s: %w", day, err)
	}
	if len(records) == 0 {
		d.logger.Debugf("No activity for %s, nothing to sync", day)
		return nil
	}

	payload := models.SyncPayload{
		UserID:     d.userID(),
		Summary:    d.summarizer.Aggregate(day, records),
		Activities: make([]models.SyncActivity, 0, len(records)),
	}
	for _, r := range records {
		payload.Activities = append(payload.Activities, models.NewSyncActivity(r))
	}

	if err := d.post(ctx, payload); err != nil {
		return err
	}

	// Mark the batch synced. A failed marker write only costs a redundant
	// resend on a later tick.
	if err := d.store.Set(models.SyncedKey(day), true); err != nil {
		d.logger.Errorf("Failed to mark %s synced: %v", day, err)
	}
	if err := d.store.Set(models.KeyLastSyncTime, now); err != nil {
		d.logger.Errorf("Failed to record sync time: %v", err)
	}
	d.logger.Infof("Synced %d records for %s", len(records), day)
	return nil
}

// post sends the payload to the collector. Any non-2xx status is a failure
// for this tick.
func (d *Dispatcher) post(ctx context.Context, payload models.SyncPayload) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal sync payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.Endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("failed to create sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sync request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector returned status %d", resp.StatusCode)
	}
	return nil
}

// userID resolves the payload identity from the store, falling back to the
// configured stub identifier.
func (d *Dispatcher) userID() string {
	var id string
	if ok, err := d.store.Get(models.KeyUserID, &id); err != nil {
		d.logger.Errorf("Failed to read user ID: %v", err)
	} else if ok && id != "" {
		return id
	}
	return d.cfg.DefaultUserID
}
