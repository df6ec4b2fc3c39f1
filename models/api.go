package models

import (
	"time"
)

// SyncActivity is the flattened record shape sent to the collector.
type SyncActivity struct {
	Domain          Domain   `json:"domain"`
	Category        Category `json:"category"`
	DurationSeconds int64    `json:"durationSeconds"`
	Timestamp       string   `json:"timestamp"` // ISO-8601, record start time
}

// SyncPayload is the body posted to the collector endpoint.
type SyncPayload struct {
	UserID     string         `json:"userId"`
	Summary    DailySummary   `json:"summary"`
	Activities []SyncActivity `json:"activities"`
}

// TodayStats is returned by the control surface. It is computed directly
// from today's stored records, independent of the full aggregator.
type TodayStats struct {
	TotalSeconds  int64 `json:"totalSeconds"`
	ActivityCount int   `json:"activityCount"`
}

// PauseResponse is returned by the pause toggle endpoint.
type PauseResponse struct {
	Paused bool `json:"paused"`
}

// SyncStatus is returned by the sync status endpoint.
type SyncStatus struct {
	LastSyncTime time.Time `json:"lastSyncTime"`
	TodaySynced  bool      `json:"todaySynced"`
}

// NewSyncActivity flattens an ActivityRecord for the wire.
func NewSyncActivity(r ActivityRecord) SyncActivity {
	return SyncActivity{
		Domain:          r.Domain,
		Category:        r.Category,
		DurationSeconds: r.DurationSeconds,
		Timestamp:       r.StartTime.Format(time.RFC3339),
	}
}
