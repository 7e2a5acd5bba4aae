package core

import "time"

// DailyTotals sums entry amounts per day of the given month. Days without
// entries are absent from the map; amounts are non-negative, so absent and
// zero are equivalent for callers.
func DailyTotals(entries []Entry, year, month int) map[int]int64 {
	totals := make(map[int]int64)
	for _, e := range entries {
		if e.Date.InMonth(year, month) {
			totals[e.Date.Day()] += e.Amount
		}
	}
	return totals
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LeadingPadding returns the number of empty leading cells in a 7-column
// month grid whose week starts on Monday: a month starting on Monday needs
// no padding, one starting on Sunday needs six cells.
func LeadingPadding(year, month int) int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return (int(first.Weekday()) + 6) % 7
}
