package models

import (
	"strings"
	"time"
)

// Singleton store keys. The per-day keys are built by ActivitiesKey and
// SyncedKey.
const (
	KeyTrackerState = "trackerState"
	KeyLastSyncTime = "lastSyncTime"
	KeyUserID       = "userId"
)

// DayKey returns the storage key date for a point in time, using the local
// calendar date.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// ActivitiesKey returns the store key holding the record list for a day.
func ActivitiesKey(day string) string {
	return "activities-" + day
}

// SyncedKey returns the store key holding the synced flag for a day.
func SyncedKey(day string) string {
	return "synced-" + day
}

// NewDomain normalises a hostname into a Domain: lower-cased with a single
// leading "www." stripped.
func NewDomain(host string) Domain {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	return Domain(host)
}

// NewTrackerState returns the default state used before anything has been
// restored from storage.
func NewTrackerState() TrackerState {
	return TrackerState{IsActive: true}
}

// NewCategoryTotals returns a totals map with every category present.
func NewCategoryTotals() map[Category]int64 {
	m := make(map[Category]int64, len(Categories))
	for _, c := range Categories {
		m[c] = 0
	}
	return m
}
