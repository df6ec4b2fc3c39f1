package models

import (
	"time"
)

type Domain string
type Category string

const (
	CategoryCommunication Category = "communication"
	CategoryBuilding      Category = "building"
	CategoryResearch      Category = "research"
	CategoryMeetings      Category = "meetings"
	CategoryAdmin         Category = "admin"
)

// Categories is the fixed set of activity categories. Every summary carries a
// total for each of them, zero or not.
var Categories = []Category{
	CategoryCommunication,
	CategoryBuilding,
	CategoryResearch,
	CategoryMeetings,
	CategoryAdmin,
}

// DefaultCategory is assigned when no rule list matches a domain.
const DefaultCategory = CategoryResearch

// UnknownDomain is the sentinel returned for URLs that cannot be parsed.
const UnknownDomain Domain = "unknown"

// ActivityRecord is a closed interval of attention on one domain. It is
// created exactly once, when the tracker transitions away from the domain,
// and never mutated afterwards.
type ActivityRecord struct {
	Domain          Domain    `json:"domain"`
	Category        Category  `json:"category"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationSeconds int64     `json:"durationSeconds"`
}

// TrackerState is the singleton mutable state of the activity tracker.
// Invariant: CurrentDomain is nil iff CurrentStartTime is nil.
type TrackerState struct {
	CurrentDomain    *Domain    `json:"currentDomain"`
	CurrentStartTime *time.Time `json:"currentStartTime"`
	IsActive         bool       `json:"isActive"`
	IsPaused         bool       `json:"isPaused"`
	LastActivityTime time.Time  `json:"lastActivityTime"`
}

// FocusWindow is the longest span of near-contiguous activity in a day.
type FocusWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DomainSeconds pairs a domain with its accumulated active seconds.
type DomainSeconds struct {
	Domain  Domain `json:"domain"`
	Seconds int64  `json:"seconds"`
}

// DailySummary is derived from one day's activity records. It is recomputed
// on demand and never persisted as a mutable entity.
type DailySummary struct {
	Date               string             `json:"date"`
	TotalActiveSeconds int64              `json:"totalActiveSeconds"`
	CategoryTotals     map[Category]int64 `json:"categoryTotals"`
	TopDomains         []DomainSeconds    `json:"topDomains"`
	FocusWindow        *FocusWindow       `json:"focusWindow"`
	ContextSwitchCount int                `json:"contextSwitchCount"`
}

// MapCategoryDomains holds the curated rule lists keyed by category.
type MapCategoryDomains map[Category][]Domain

// TabInfo is the subset of host tab data the tracker needs.
type TabInfo struct {
	URL       string
	Incognito bool
}

// TrackerConfig contains the configuration for the activity tracker.
type TrackerConfig struct {
	// MinDuration is the threshold below which closed intervals are discarded.
	MinDuration time.Duration `envconfig:"MIN_DURATION" default:"5s"`
	// StoreFilePath is the file the key-value store persists to.
	StoreFilePath string `envconfig:"STORE_FILE_PATH" default:"activity-store.json"`
}

// AggregatorConfig contains the configuration for the daily aggregator.
type AggregatorConfig struct {
	// GapThreshold is the tolerance used to merge near-contiguous records
	// into one focus window.
	GapThreshold time.Duration `envconfig:"GAP_THRESHOLD" default:"2m"`
	// TopDomains is the number of entries kept in the top-domains list.
	TopDomains int `envconfig:"TOP_DOMAINS" default:"5"`
}

// SyncConfig contains the configuration for the sync dispatcher.
type SyncConfig struct {
	// Endpoint is the remote collector the daily summary is posted to.
	Endpoint string `envconfig:"ENDPOINT" default:"http://localhost:8080/sync"`
	// Interval is the period between sync attempts.
	Interval time.Duration `envconfig:"INTERVAL" default:"5m"`
	// MaxBackoff caps the failure backoff between attempts.
	MaxBackoff time.Duration `envconfig:"MAX_BACKOFF" default:"40m"`
	// DefaultUserID is attached to payloads when no user ID is stored.
	DefaultUserID string `envconfig:"DEFAULT_USER_ID" default:"anonymous"`
}
