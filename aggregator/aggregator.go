// Package aggregator rolls one day's activity records into a daily summary:
// category totals, top domains, context-switch count and the longest
// continuous focus window.
package aggregator

import (
	"sort"
	"time"

	"relloyd/focustrack/models"
)

const (
	defaultGapThreshold = 2 * time.Minute
	defaultTopDomains   = 5
)

type Aggregator struct {
	gapThreshold time.Duration
	topDomains   int
}

// NewAggregator builds an Aggregator, filling zero config values with the
// defaults. A nil config uses defaults throughout.
func NewAggregator(cfg *models.AggregatorConfig) *Aggregator {
	a := &Aggregator{
		gapThreshold: defaultGapThreshold,
		topDomains:   defaultTopDomains,
	}
	if cfg != nil {
		if cfg.GapThreshold > 0 {
			a.gapThreshold = cfg.GapThreshold
		}
		if cfg.TopDomains > 0 {
			a.topDomains = cfg.TopDomains
		}
	}
	return a
}

// Aggregate computes the summary for one day's records. Pure: a single pass
// for the totals plus one sort each for the top domains and the focus
// window. The input slice is not modified.
func (a *Aggregator) Aggregate(date string, records []models.ActivityRecord) models.DailySummary {
	summary := models.DailySummary{
		Date:               date,
		CategoryTotals:     models.NewCategoryTotals(),
		TopDomains:         []models.DomainSeconds{},
		ContextSwitchCount: len(records),
	}

	domainSeconds := make(map[models.Domain]int64)
	var domainOrder []models.Domain // first-encountered order, for stable ties
	for _, r := range records {
		summary.TotalActiveSeconds += r.DurationSeconds
		summary.CategoryTotals[r.Category] += r.DurationSeconds
		if _, seen := domainSeconds[r.Domain]; !seen {
			domainOrder = append(domainOrder, r.Domain)
		}
		domainSeconds[r.Domain] += r.DurationSeconds
	}

	for _, d := range domainOrder {
		summary.TopDomains = append(summary.TopDomains, models.DomainSeconds{Domain: d, Seconds: domainSeconds[d]})
	}
	sort.SliceStable(summary.TopDomains, func(i, j int) bool {
		return summary.TopDomains[i].Seconds > summary.TopDomains[j].Seconds
	})
	if len(summary.TopDomains) > a.topDomains {
		summary.TopDomains = summary.TopDomains[:a.topDomains]
	}

	summary.FocusWindow = a.focusWindow(records)

	return summary
}

// focusWindow finds the longest span where consecutive records are separated
// by no more than the gap threshold. Records are re-sorted by start time, so
// storage insertion order does not matter.
func (a *Aggregator) focusWindow(records []models.ActivityRecord) *models.FocusWindow {
	if len(records) == 0 {
		return nil
	}

	sorted := make([]models.ActivityRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	// A record without an end time counts as a zero-width point at its start.
	endOf := func(r models.ActivityRecord) time.Time {
		if r.EndTime.IsZero() {
			return r.StartTime
		}
		return r.EndTime
	}

	best := models.FocusWindow{Start: sorted[0].StartTime, End: endOf(sorted[0])}
	current := best

	for _, r := range sorted[1:] {
		if r.StartTime.Sub(current.End) <= a.gapThreshold {
			current.End = endOf(r)
			continue
		}
		// Window broken: keep the longer of the two.
		if current.End.Sub(current.Start) > best.End.Sub(best.Start) {
			best = current
		}
		current = models.FocusWindow{Start: r.StartTime, End: endOf(r)}
	}
	// The last open window is only evaluated here.
	if current.End.Sub(current.Start) > best.End.Sub(best.Start) {
		best = current
	}

	return &best
}
