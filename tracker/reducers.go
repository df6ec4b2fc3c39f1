package tracker

import (
	"time"

	"relloyd/focustrack/models"
)

// The transition core is kept as pure functions over a value-typed state so
// the state machine can be tested without a live store or host surface. The
// Tracker wraps them with locking, classification and persistence.

// closeInterval closes the open interval, if any. It returns the new state
// and the record to persist, or nil when no interval was open or the
// interval was shorter than minDuration. Calling it with no open interval is
// a no-op, so double closes are safe.
func closeInterval(st models.TrackerState, now time.Time, minDuration time.Duration, classify func(models.Domain) models.Category) (models.TrackerState, *models.ActivityRecord) {
	if st.CurrentDomain == nil || st.CurrentStartTime == nil {
		// Normalise a half-open state rather than erroring; the two fields
		// must be nil together.
		st.CurrentDomain = nil
		st.CurrentStartTime = nil
		return st, nil
	}

	domain := *st.CurrentDomain
	start := *st.CurrentStartTime
	st.CurrentDomain = nil
	st.CurrentStartTime = nil

	if now.Before(start) {
		return st, nil
	}
	seconds := int64(now.Sub(start) / time.Second)
	if now.Sub(start) < minDuration {
		// Sub-threshold activity is discarded, never stored.
		return st, nil
	}

	return st, &models.ActivityRecord{
		Domain:          domain,
		Category:        classify(domain),
		StartTime:       start,
		EndTime:         now,
		DurationSeconds: seconds,
	}
}

// openInterval starts attributing time to a domain from now.
func openInterval(st models.TrackerState, domain models.Domain, now time.Time) models.TrackerState {
	st.CurrentDomain = &domain
	st.CurrentStartTime = &now
	st.LastActivityTime = now
	return st
}
