package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"relloyd/focustrack/models"
)

var day0 = time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)

// rec builds a record spanning [startOffset, startOffset+duration) from day0.
func rec(domain models.Domain, cat models.Category, startOffset, duration time.Duration) models.ActivityRecord {
	start := day0.Add(startOffset)
	return models.ActivityRecord{
		Domain:          domain,
		Category:        cat,
		StartTime:       start,
		EndTime:         start.Add(duration),
		DurationSeconds: int64(duration / time.Second),
	}
}

func TestAggregateEmpty(t *testing.T) {
	a := NewAggregator(nil)
	s := a.Aggregate("2026-03-09", nil)

	assert.Equal(t, "2026-03-09", s.Date)
	assert.Zero(t, s.TotalActiveSeconds)
	assert.Zero(t, s.ContextSwitchCount)
	assert.Empty(t, s.TopDomains)
	assert.Nil(t, s.FocusWindow, "empty input must yield a nil focus window")
	assert.Len(t, s.CategoryTotals, len(models.Categories), "all categories must be present")
	for _, c := range models.Categories {
		assert.Zero(t, s.CategoryTotals[c], "category %s should default to 0", c)
	}
}

func TestAggregateTotalsConservation(t *testing.T) {
	records := []models.ActivityRecord{
		rec("github.com", models.CategoryBuilding, 0, 90*time.Second),
		rec("slack.com", models.CategoryCommunication, 2*time.Minute, 30*time.Second),
		rec("github.com", models.CategoryBuilding, 10*time.Minute, 60*time.Second),
		rec("wikipedia.org", models.CategoryResearch, 20*time.Minute, 300*time.Second),
	}

	s := NewAggregator(nil).Aggregate("2026-03-09", records)

	var fromRecords, fromCategories int64
	for _, r := range records {
		fromRecords += r.DurationSeconds
	}
	for _, v := range s.CategoryTotals {
		fromCategories += v
	}
	assert.Equal(t, fromRecords, s.TotalActiveSeconds, "total must equal the sum of record durations")
	assert.Equal(t, fromRecords, fromCategories, "category totals must conserve the total")
	assert.Equal(t, int64(150), s.CategoryTotals[models.CategoryBuilding])
	assert.Equal(t, 4, s.ContextSwitchCount, "context switches are raw record count, not deduplicated")
}

func TestTopDomainsTruncation(t *testing.T) {
	// 7 distinct domains with distinct totals, deliberately unsorted.
	records := []models.ActivityRecord{
		rec("d4.example", models.CategoryResearch, 0, 40*time.Second),
		rec("d7.example", models.CategoryResearch, 1*time.Minute, 70*time.Second),
		rec("d1.example", models.CategoryResearch, 3*time.Minute, 10*time.Second),
		rec("d6.example", models.CategoryResearch, 5*time.Minute, 60*time.Second),
		rec("d2.example", models.CategoryResearch, 7*time.Minute, 20*time.Second),
		rec("d5.example", models.CategoryResearch, 9*time.Minute, 50*time.Second),
		rec("d3.example", models.CategoryResearch, 11*time.Minute, 30*time.Second),
	}

	s := NewAggregator(nil).Aggregate("2026-03-09", records)

	require.Len(t, s.TopDomains, 5, "top domains must be truncated to 5")
	expected := []models.DomainSeconds{
		{Domain: "d7.example", Seconds: 70},
		{Domain: "d6.example", Seconds: 60},
		{Domain: "d5.example", Seconds: 50},
		{Domain: "d4.example", Seconds: 40},
		{Domain: "d3.example", Seconds: 30},
	}
	assert.Equal(t, expected, s.TopDomains, "top domains must be the 5 largest, sorted descending")
}

func TestTopDomainsTieStability(t *testing.T) {
	records := []models.ActivityRecord{
		rec("first.example", models.CategoryResearch, 0, 30*time.Second),
		rec("second.example", models.CategoryResearch, 1*time.Minute, 30*time.Second),
	}

	s := NewAggregator(nil).Aggregate("2026-03-09", records)

	require.Len(t, s.TopDomains, 2)
	assert.Equal(t, models.Domain("first.example"), s.TopDomains[0].Domain, "ties must keep first-encountered order")
}

func TestFocusWindowMerging(t *testing.T) {
	// A: 0-100s, gap 60s, B: 160-300s, gap 200s, C: 500-520s. With a 120s
	// threshold A and B merge into [0,300); C stands alone.
	records := []models.ActivityRecord{
		rec("a.example", models.CategoryResearch, 0, 100*time.Second),
		rec("b.example", models.CategoryResearch, 160*time.Second, 140*time.Second),
		rec("c.example", models.CategoryResearch, 500*time.Second, 20*time.Second),
	}

	a := NewAggregator(&models.AggregatorConfig{GapThreshold: 120 * time.Second})
	s := a.Aggregate("2026-03-09", records)

	require.NotNil(t, s.FocusWindow, "focus window missing")
	assert.Equal(t, day0, s.FocusWindow.Start)
	assert.Equal(t, day0.Add(300*time.Second), s.FocusWindow.End)
	assert.Equal(t, 300*time.Second, s.FocusWindow.End.Sub(s.FocusWindow.Start), "longest window should be 300s")
}

func TestFocusWindowLastWindowWins(t *testing.T) {
	// The final window is longer and is only evaluated after the loop.
	records := []models.ActivityRecord{
		rec("a.example", models.CategoryResearch, 0, 30*time.Second),
		rec("b.example", models.CategoryResearch, 10*time.Minute, 10*time.Minute),
	}

	s := NewAggregator(nil).Aggregate("2026-03-09", records)

	require.NotNil(t, s.FocusWindow)
	assert.Equal(t, day0.Add(10*time.Minute), s.FocusWindow.Start, "the trailing window should win")
}

func TestFocusWindowUnsortedInput(t *testing.T) {
	// Records arrive out of start-time order; the aggregator re-sorts.
	records := []models.ActivityRecord{
		rec("b.example", models.CategoryResearch, 90*time.Second, 60*time.Second),
		rec("a.example", models.CategoryResearch, 0, 30*time.Second),
	}

	s := NewAggregator(nil).Aggregate("2026-03-09", records)

	require.NotNil(t, s.FocusWindow)
	assert.Equal(t, day0, s.FocusWindow.Start, "window should start at the earliest record")
	assert.Equal(t, day0.Add(150*time.Second), s.FocusWindow.End, "gap of 60s is within the 2m threshold")
}

func TestFocusWindowZeroWidthEndTime(t *testing.T) {
	open := models.ActivityRecord{
		Domain:    "a.example",
		Category:  models.CategoryResearch,
		StartTime: day0,
		// EndTime deliberately zero.
	}
	records := []models.ActivityRecord{
		open,
		rec("b.example", models.CategoryResearch, 60*time.Second, 120*time.Second),
	}

	s := NewAggregator(nil).Aggregate("2026-03-09", records)

	require.NotNil(t, s.FocusWindow)
	assert.Equal(t, day0, s.FocusWindow.Start, "zero-width record still anchors the window")
	assert.Equal(t, day0.Add(180*time.Second), s.FocusWindow.End)
}

func TestFocusWindowSingleRecord(t *testing.T) {
	records := []models.ActivityRecord{
		rec("a.example", models.CategoryResearch, 0, 45*time.Second),
	}

	s := NewAggregator(nil).Aggregate("2026-03-09", records)

	require.NotNil(t, s.FocusWindow)
	assert.Equal(t, day0, s.FocusWindow.Start)
	assert.Equal(t, day0.Add(45*time.Second), s.FocusWindow.End)
}
