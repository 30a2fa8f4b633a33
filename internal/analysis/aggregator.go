// Package analysis implements the computation engines: category aggregation,
// subscription detection, savings-goal analysis, net-worth projection, and the
// financial priorities planner. Every entry point is a pure function of its
// inputs; nothing here holds state between calls.
package analysis

import (
	"sort"
	"strings"
	"time"

	"fincoach/internal/core"
)

// CategoryTotal is the aggregate for one category inside a window.
type CategoryTotal struct {
	Category     string  `json:"category"`
	TotalAmount  float64 `json:"total_amount"` // absolute spend, positive
	Transactions int     `json:"transaction_count"`
	Share        float64 `json:"share_pct"` // of total spend in the window
}

// Summary holds the scalar roll-ups for a window.
type Summary struct {
	TotalTransactions int     `json:"total_transactions"`
	IncomeCount       int     `json:"income_transactions"`
	SpendCount        int     `json:"spending_transactions"`
	UniqueCategories  int     `json:"unique_categories"`
	TotalIncome       float64 `json:"total_income"`
	TotalExpenses     float64 `json:"total_expenses"` // positive
	NetAmount         float64 `json:"net_amount"`
	AverageAmount     float64 `json:"average_transaction"`
	LargestAmount     float64 `json:"largest_transaction"`
	SmallestAmount    float64 `json:"smallest_transaction"`
	MeanConfidence    float64 `json:"mean_confidence"`
}

// DateRange describes the span of dates actually present in the window.
type DateRange struct {
	Start       time.Time `json:"start_date"`
	End         time.Time `json:"end_date"`
	DaysCovered int       `json:"days_covered"`
}

// Aggregation is the full output of Aggregate.
type Aggregation struct {
	Window        core.Window     `json:"window"`
	Categories    []CategoryTotal `json:"categories"`
	Summary       Summary         `json:"summary"`
	DateRange     DateRange       `json:"date_range"`
	MonthlyCounts map[string]int  `json:"transactions_by_month"`
	ExcludedCount int             `json:"excluded_transactions"`
}

// SpendingProfile is the trailing-window view consumed by the savings
// analyzer, the priorities planner, and the optimized projection: average
// monthly income, expenses, and per-category spend.
type SpendingProfile struct {
	MonthlyIncome   float64            `json:"monthly_income"`
	MonthlyExpenses float64            `json:"monthly_expenses"` // positive
	MonthlySavings  float64            `json:"monthly_savings"`
	CategoryMonthly map[string]float64 `json:"category_monthly"`
}

// Aggregate groups transactions by category over the given window, excluding
// any category named in excluded (case-insensitive). An empty window yields
// all-zero totals, not an error. Totals sum exactly to the sum of the
// included transaction amounts.
func Aggregate(transactions []core.Transaction, window core.Window, excluded []string) Aggregation {
	agg := Aggregation{
		Window:        window,
		Categories:    []CategoryTotal{},
		MonthlyCounts: map[string]int{},
	}

	skip := make(map[string]struct{}, len(excluded))
	for _, c := range excluded {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			skip[c] = struct{}{}
		}
	}

	included := filterWindow(transactions, window)

	type bucket struct {
		total float64
		count int
	}
	byCategory := map[string]*bucket{}
	categoriesSeen := map[string]struct{}{}

	var (
		confidenceSum float64
		amountSum     float64
		first, last   time.Time
	)
	for _, t := range included {
		if _, drop := skip[strings.ToLower(strings.TrimSpace(t.Category))]; drop {
			agg.ExcludedCount++
			continue
		}

		agg.Summary.TotalTransactions++
		amountSum += t.Amount
		confidenceSum += t.Confidence
		categoriesSeen[t.Category] = struct{}{}

		if first.IsZero() || t.Date.Before(first) {
			first = t.Date
		}
		if t.Date.After(last) {
			last = t.Date
		}
		agg.MonthlyCounts[t.Date.Format("2006-01")]++

		switch {
		case t.IsIncome():
			agg.Summary.IncomeCount++
			agg.Summary.TotalIncome += t.Amount
		case t.IsSpend():
			agg.Summary.SpendCount++
			agg.Summary.TotalExpenses += -t.Amount
			b, ok := byCategory[t.Category]
			if !ok {
				b = &bucket{}
				byCategory[t.Category] = b
			}
			b.total += -t.Amount
			b.count++
		}

		if agg.Summary.TotalTransactions == 1 {
			agg.Summary.LargestAmount = t.Amount
			agg.Summary.SmallestAmount = t.Amount
		} else {
			if t.Amount > agg.Summary.LargestAmount {
				agg.Summary.LargestAmount = t.Amount
			}
			if t.Amount < agg.Summary.SmallestAmount {
				agg.Summary.SmallestAmount = t.Amount
			}
		}
	}

	agg.Summary.NetAmount = amountSum
	agg.Summary.UniqueCategories = len(categoriesSeen)
	if n := agg.Summary.TotalTransactions; n > 0 {
		agg.Summary.AverageAmount = amountSum / float64(n)
		agg.Summary.MeanConfidence = confidenceSum / float64(n)
	}
	if !first.IsZero() {
		agg.DateRange = DateRange{
			Start:       first,
			End:         last,
			DaysCovered: int(last.Sub(first).Hours() / 24),
		}
	}

	for category, b := range byCategory {
		ct := CategoryTotal{
			Category:     category,
			TotalAmount:  b.total,
			Transactions: b.count,
		}
		if agg.Summary.TotalExpenses > 0 {
			ct.Share = b.total / agg.Summary.TotalExpenses * 100
		}
		agg.Categories = append(agg.Categories, ct)
	}
	sort.Slice(agg.Categories, func(i, j int) bool {
		if agg.Categories[i].TotalAmount != agg.Categories[j].TotalAmount {
			return agg.Categories[i].TotalAmount > agg.Categories[j].TotalAmount
		}
		return agg.Categories[i].Category < agg.Categories[j].Category
	})

	return agg
}

// Profile derives average monthly income, expenses, and per-category spend
// over the trailing 90-day window, anchored at the newest transaction.
func Profile(transactions []core.Transaction) SpendingProfile {
	profile := SpendingProfile{CategoryMonthly: map[string]float64{}}

	included := filterWindow(transactions, core.Window90Days)
	if len(included) == 0 {
		return profile
	}

	// 90 days ~ 3 months of averages.
	const months = 3.0
	for _, t := range included {
		switch {
		case t.IsIncome():
			profile.MonthlyIncome += t.Amount / months
		case t.IsSpend():
			profile.MonthlyExpenses += -t.Amount / months
			profile.CategoryMonthly[t.Category] += -t.Amount / months
		}
	}
	profile.MonthlySavings = profile.MonthlyIncome - profile.MonthlyExpenses
	return profile
}

// TopSpendingCategories returns up to n categories from the profile, highest
// monthly spend first.
func TopSpendingCategories(profile SpendingProfile, n int) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(profile.CategoryMonthly))
	for category, monthly := range profile.CategoryMonthly {
		out = append(out, CategoryTotal{Category: category, TotalAmount: monthly})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].Category < out[j].Category
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// filterWindow keeps transactions within the trailing window, anchored at the
// newest transaction date in the set.
func filterWindow(transactions []core.Transaction, window core.Window) []core.Transaction {
	days := window.Days()
	if days == 0 || len(transactions) == 0 {
		return transactions
	}

	var newest time.Time
	for _, t := range transactions {
		if t.Date.After(newest) {
			newest = t.Date
		}
	}
	cutoff := newest.AddDate(0, 0, -days)

	out := make([]core.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if !t.Date.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out
}
