package models

import "errors"

// ErrTabNotFound is returned by a TabResolver when the host no longer knows
// the requested tab.
var ErrTabNotFound = errors.New("tab not found")

// Store is the persistent key-value blob the tracker and dispatcher share.
// Get reports whether the key existed.
type Store interface {
	Get(key string, out any) (bool, error)
	Set(key string, v any) error
}

// TabResolver looks up host tab data by ID. Supplied by the embedding host
// adapter; the tracker core has no runtime dependency of its own.
type TabResolver interface {
	Tab(tabID int) (TabInfo, error)
	ActiveTab(windowID int) (tabID int, err error)
}

// Classifier maps a hostname to a category.
type Classifier interface {
	Classify(hostname string) Category
}
