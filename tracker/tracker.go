// Package tracker holds the activity state machine. It consumes host browser
// events (tabs, window focus, idle state), attributes wall-clock time to the
// domain being looked at, and emits closed activity records into the store.
package tracker

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"relloyd/focustrack/models"
	"relloyd/focustrack/rules"
)

// WindowIDNone is the host's "no window focused" sentinel.
const WindowIDNone = -1

// Idle state names delivered by the host's idle callback.
const (
	IdleStateActive = "active"
	IdleStateIdle   = "idle"
	IdleStateLocked = "locked"
)

type Tracker struct {
	logger     *zap.SugaredLogger
	cfg        *models.TrackerConfig
	store      models.Store
	classifier models.Classifier
	resolver   models.TabResolver
	mu         sync.Mutex
	state      models.TrackerState
	nowFunc    func() time.Time // Function to get the current time (defaults to time.Now)
}

// NewTracker restores the tracker state from the store, merged over defaults
// so missing fields fall back. All arguments are required.
func NewTracker(logger *zap.SugaredLogger, cfg *models.TrackerConfig, st models.Store, classifier models.Classifier, resolver models.TabResolver) (*Tracker, error) {
	if logger == nil || cfg == nil || st == nil || classifier == nil || resolver == nil {
		return nil, fmt.Errorf("logger, config, store, classifier and resolver must be provided")
	}

	t := &Tracker{
		logger:     logger,
		cfg:        cfg,
		store:      st,
		classifier: classifier,
		resolver:   resolver,
		state:      models.NewTrackerState(),
		nowFunc:    time.Now, // Default to time.Now
	}

	// Restore persisted state over the defaults. A read failure is
	// recoverable; we start from defaults and overwrite on the next save.
	if ok, err := st.Get(models.KeyTrackerState, &t.state); err != nil {
		logger.Errorf("Failed to restore tracker state, using defaults: %v", err)
		t.state = models.NewTrackerState()
	} else if ok {
		logger.Infof("Tracker state restored (paused=%v, active=%v)", t.state.IsPaused, t.state.IsActive)
	}

	// The two open-interval fields must be nil together; a torn restore is
	// normalised here rather than trusted.
	if t.state.CurrentDomain == nil || t.state.CurrentStartTime == nil {
		t.state.CurrentDomain = nil
		t.state.CurrentStartTime = nil
	}

	return t, nil
}

// TabActivated handles the host's tab-activated event.
func (t *Tracker) TabActivated(tabID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handleTabLocked(tabID, t.nowFunc())
	t.saveStateLocked()
}

// TabUpdated handles the host's tab-URL-updated event. Updates for
// background tabs are ignored; only the tab being looked at earns time.
func (t *Tracker) TabUpdated(tabID int, active bool) {
	if !active {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handleTabLocked(tabID, t.nowFunc())
	t.saveStateLocked()
}

// WindowFocusChanged handles the host's window-focus event. Losing focus
// (the WindowIDNone sentinel) closes the current interval; gaining focus
// re-resolves that window's active tab and treats it as a tab activation.
func (t *Tracker) WindowFocusChanged(windowID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.nowFunc()

	if windowID == WindowIDNone {
		t.stopCurrentLocked(now)
		t.saveStateLocked()
		return
	}

	tabID, err := t.resolver.ActiveTab(windowID)
	if err != nil {
		t.logger.Debugf("No active tab for window %d: %v", windowID, err)
		t.stopCurrentLocked(now)
		t.saveStateLocked()
		return
	}
	t.handleTabLocked(tabID, now)
	t.saveStateLocked()
}

// IdleStateChanged handles the host's idle callback. Going idle or locked
// closes the current interval; becoming active only marks presence - the
// next tab or window event reopens an interval.
func (t *Tracker) IdleStateChanged(state string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.nowFunc()

	if state == IdleStateActive {
		t.state.IsActive = true
		t.state.LastActivityTime = now
	} else {
		t.state.IsActive = false
		t.stopCurrentLocked(now)
	}
	t.saveStateLocked()
}

// Ping handles a liveness ping from foreground content. It refreshes the
// diagnostic last-activity time only; no domain transition happens.
func (t *Tracker) Ping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.LastActivityTime = t.nowFunc()
	t.saveStateLocked()
}

// TogglePause flips the user-requested pause flag and returns the new value.
// Pausing closes the current interval; unpausing stays idle until the next
// domain-determining event.
func (t *Tracker) TogglePause() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.IsPaused = !t.state.IsPaused
	if t.state.IsPaused {
		t.stopCurrentLocked(t.nowFunc())
	}
	t.saveStateLocked()
	t.logger.Infof("Tracking paused=%v", t.state.IsPaused)
	return t.state.IsPaused
}

// State returns a copy of the current tracker state.
func (t *Tracker) State() models.TrackerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// TodayStats sums today's stored records directly, independent of the full
// aggregator. Used by the control surface.
func (t *Tracker) TodayStats() (models.TodayStats, error) {
	day := models.DayKey(t.nowFunc())

	var records []models.ActivityRecord
	if _, err := t.store.Get(models.ActivitiesKey(day), &records); err != nil {
		return models.TodayStats{}, fmt.Errorf("failed to read today's records: %w", err)
	}

	stats := models.TodayStats{ActivityCount: len(records)}
	for _, r := range records {
		stats.TotalSeconds += r.DurationSeconds
	}
	return stats, nil
}

// Stop closes any open interval, e.g. on shutdown. Safe to call when
// nothing is being tracked.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopCurrentLocked(t.nowFunc())
	t.saveStateLocked()
}

// handleTabLocked resolves a tab and performs the domain transition for it.
// Callers must hold t.mu.
func (t *Tracker) handleTabLocked(tabID int, now time.Time) {
	if t.state.IsPaused { // if tracking is paused, no transitions open new intervals...
		return
	}

	info, err := t.resolver.Tab(tabID)
	if err != nil {
		// Missing tab: close the current interval and stay idle.
		t.logger.Debugf("Failed to resolve tab %d: %v", tabID, err)
		t.stopCurrentLocked(now)
		return
	}

	if info.Incognito || rules.IsInternalURL(info.URL) {
		t.stopCurrentLocked(now)
		return
	}

	domain := rules.ExtractDomain(info.URL)
	if t.state.CurrentDomain != nil && *t.state.CurrentDomain == domain {
		// Same domain: never emits a record and never resets the start time.
		return
	}

	t.stopCurrentLocked(now)
	t.state = openInterval(t.state, domain, now)
	t.logger.Debugf("Tracking %q from %v", domain, now)
}

// stopCurrentLocked is the single choke point that creates activity records.
// Idempotent when no interval is open. Callers must hold t.mu.
func (t *Tracker) stopCurrentLocked(now time.Time) {
	st, rec := closeInterval(t.state, now, t.cfg.MinDuration, func(d models.Domain) models.Category {
		return t.classifier.Classify(string(d))
	})
	t.state = st
	if rec == nil {
		return
	}
	t.appendRecordLocked(*rec)
}

// appendRecordLocked appends a record to its day's collection. The day key
// is derived at close time, so an interval closed after midnight is
// attributed wholly to the new day.
func (t *Tracker) appendRecordLocked(rec models.ActivityRecord) {
	key := models.ActivitiesKey(models.DayKey(rec.EndTime))

	var records []models.ActivityRecord
	if _, err := t.store.Get(key, &records); err != nil {
		// Unreadable day list: log and append to an empty one. Losing the
		// unreadable records beats dropping the new one.
		t.logger.Errorf("Failed to read day records for %q: %v", key, err)
		records = nil
	}
	records = append(records, rec)

	if err := t.store.Set(key, records); err != nil {
		t.logger.Errorf("Failed to persist record for %q: %v", rec.Domain, err)
		return
	}
	t.logger.Debugf("Recorded %ds on %q (%s)", rec.DurationSeconds, rec.Domain, rec.Category)
}

// saveStateLocked persists the tracker state. Write failures are logged and
// survived; in-memory state stays authoritative and the next transition
// retries. Callers must hold t.mu.
func (t *Tracker) saveStateLocked() {
	if err := t.store.Set(models.KeyTrackerState, t.state); err != nil {
		t.logger.Errorf("Failed to save tracker state: %v", err)
	}
}
