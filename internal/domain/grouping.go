package domain

import (
	"time"
)

// DayKeyLayout is the calendar-day key used for grouping.
const DayKeyLayout = "2006-01-02"

// DayGroup holds the entries that started on one calendar day.
type DayGroup struct {
	Date    string      `json:"date"`
	Entries []TimeEntry `json:"entries"`
	TotalMs int64       `json:"totalMs"`
}

// GroupByDay buckets entries by the calendar date of their start time in loc.
// Groups keep the order in which their first entry appears; running entries
// contribute their live duration at now.
func GroupByDay(entries []TimeEntry, now time.Time, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.UTC
	}

	var groups []DayGroup
	index := make(map[string]int)
	for _, entry := range entries {
		key := entry.StartTime.In(loc).Format(DayKeyLayout)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Date: key})
		}
		groups[i].Entries = append(groups[i].Entries, entry)
		groups[i].TotalMs += entry.ElapsedMs(now)
	}
	return groups
}

// DayTotals is GroupByDay keyed by date.
func DayTotals(entries []TimeEntry, now time.Time, loc *time.Location) map[string]DayGroup {
	groups := GroupByDay(entries, now, loc)
	totals := make(map[string]DayGroup, len(groups))
	for _, g := range groups {
		totals[g.Date] = g
	}
	return totals
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay returns the last millisecond of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// StartOfMonth returns midnight of the first day of t's month in loc.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	y, m, _ := t.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}

// EndOfMonth returns the last millisecond of t's month in loc.
func EndOfMonth(t time.Time, loc *time.Location) time.Time {
	return StartOfMonth(t, loc).AddDate(0, 1, 0).Add(-time.Millisecond)
}
