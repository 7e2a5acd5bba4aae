package core

// Summary is the derived view of spending against the monthly budget.
// It is recomputed from the full entry set on every read and never persisted;
// personal-finance datasets are small enough that this stays cheap.
type Summary struct {
	DailyTotal       int64              `json:"dailyTotal"`
	MonthlyTotal     int64              `json:"monthlyTotal"`
	MonthlyBudget    int64              `json:"monthlyBudget"`
	RemainingBalance int64              `json:"remainingBalance"`
	ByCategory       map[Category]int64 `json:"byCategory"`
}

// ComputeSummary aggregates entries against budget for the given day.
// DailyTotal sums entries dated exactly today; MonthlyTotal and ByCategory
// cover today's year-month. Categories with zero spend are omitted from
// ByCategory. RemainingBalance may go negative; a negative value signals
// over-budget and is deliberately not clamped.
func ComputeSummary(entries []Entry, budget int64, today Date) Summary {
	s := Summary{
		MonthlyBudget: budget,
		ByCategory:    make(map[Category]int64),
	}
	year, month := today.Year(), int(today.Month())
	for _, e := range entries {
		if !e.Date.InMonth(year, month) {
			continue
		}
		s.MonthlyTotal += e.Amount
		s.ByCategory[e.Category] += e.Amount
		if e.Date.SameDay(today) {
			s.DailyTotal += e.Amount
		}
	}
	s.RemainingBalance = budget - s.MonthlyTotal
	return s
}
