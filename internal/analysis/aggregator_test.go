package analysis

import (
	"math"
	"testing"
	"time"

	"fincoach/internal/core"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func tx(date, merchant string, amount float64, category string) core.Transaction {
	return core.Transaction{
		Date:       day(date),
		Merchant:   merchant,
		Amount:     amount,
		Category:   category,
		Confidence: 0.9,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateTotalsSumExactly(t *testing.T) {
	transactions := []core.Transaction{
		tx("2024-03-01", "Acme Corp", 3000, "income"),
		tx("2024-03-02", "Kroger", -120.50, "groceries"),
		tx("2024-03-05", "Netflix", -15.99, "entertainment"),
		tx("2024-03-10", "Shell", -45.25, "transportation"),
		tx("2024-03-12", "Kroger", -80.25, "groceries"),
	}

	agg := Aggregate(transactions, core.WindowAll, nil)

	var want float64
	for _, tr := range transactions {
		want += tr.Amount
	}
	if !almostEqual(agg.Summary.NetAmount, want) {
		t.Errorf("NetAmount = %.4f, want %.4f", agg.Summary.NetAmount, want)
	}

	var catSum float64
	for _, c := range agg.Categories {
		catSum += c.TotalAmount
	}
	if !almostEqual(catSum, agg.Summary.TotalExpenses) {
		t.Errorf("category totals sum to %.4f, want TotalExpenses %.4f", catSum, agg.Summary.TotalExpenses)
	}
	if !almostEqual(agg.Summary.TotalIncome-agg.Summary.TotalExpenses, agg.Summary.NetAmount) {
		t.Errorf("income %.2f - expenses %.2f != net %.2f",
			agg.Summary.TotalIncome, agg.Summary.TotalExpenses, agg.Summary.NetAmount)
	}

	if agg.Summary.TotalTransactions != 5 {
		t.Errorf("TotalTransactions = %d, want 5", agg.Summary.TotalTransactions)
	}
	if agg.Summary.IncomeCount != 1 || agg.Summary.SpendCount != 4 {
		t.Errorf("counts = %d income / %d spend, want 1/4", agg.Summary.IncomeCount, agg.Summary.SpendCount)
	}
}

func TestAggregateCategoryOrdering(t *testing.T) {
	transactions := []core.Transaction{
		tx("2024-03-02", "Kroger", -200, "groceries"),
		tx("2024-03-05", "Netflix", -50, "entertainment"),
		tx("2024-03-10", "Shell", -50, "transportation"),
	}

	agg := Aggregate(transactions, core.WindowAll, nil)
	if len(agg.Categories) != 3 {
		t.Fatalf("got %d categories, want 3", len(agg.Categories))
	}
	if agg.Categories[0].Category != "groceries" {
		t.Errorf("top category = %q, want groceries", agg.Categories[0].Category)
	}
	// Equal totals break ties by name.
	if agg.Categories[1].Category != "entertainment" || agg.Categories[2].Category != "transportation" {
		t.Errorf("tie order = %q, %q, want entertainment, transportation",
			agg.Categories[1].Category, agg.Categories[2].Category)
	}
	if !almostEqual(agg.Categories[0].Share, 200.0/300.0*100) {
		t.Errorf("Share = %.4f, want %.4f", agg.Categories[0].Share, 200.0/300.0*100)
	}
}

func TestAggregateWindowAnchoredAtNewest(t *testing.T) {
	transactions := []core.Transaction{
		tx("2024-01-01", "Old Shop", -100, "shopping"),
		tx("2024-03-20", "Kroger", -50, "groceries"),
		tx("2024-03-25", "Netflix", -15, "entertainment"),
	}

	agg := Aggregate(transactions, core.Window30Days, nil)
	if agg.Summary.TotalTransactions != 2 {
		t.Fatalf("TotalTransactions = %d, want 2 inside the trailing 30 days", agg.Summary.TotalTransactions)
	}
	for _, c := range agg.Categories {
		if c.Category == "shopping" {
			t.Error("transaction outside the window was aggregated")
		}
	}
}

func TestAggregateExcludesCategories(t *testing.T) {
	transactions := []core.Transaction{
		tx("2024-03-01", "Landlord", -1500, "Rent"),
		tx("2024-03-02", "Kroger", -100, "groceries"),
	}

	agg := Aggregate(transactions, core.WindowAll, []string{" rent "})
	if agg.ExcludedCount != 1 {
		t.Errorf("ExcludedCount = %d, want 1", agg.ExcludedCount)
	}
	if agg.Summary.TotalTransactions != 1 {
		t.Errorf("TotalTransactions = %d, want 1", agg.Summary.TotalTransactions)
	}
	if !almostEqual(agg.Summary.TotalExpenses, 100) {
		t.Errorf("TotalExpenses = %.2f, want 100.00", agg.Summary.TotalExpenses)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := Aggregate(nil, core.WindowAll, nil)
	if agg.Summary.TotalTransactions != 0 {
		t.Errorf("TotalTransactions = %d, want 0", agg.Summary.TotalTransactions)
	}
	if len(agg.Categories) != 0 {
		t.Errorf("got %d categories, want 0", len(agg.Categories))
	}
	if agg.Summary.NetAmount != 0 || agg.Summary.AverageAmount != 0 {
		t.Error("empty input should yield zero totals, not NaN")
	}
}

func TestProfile(t *testing.T) {
	// Three months of identical flows inside the trailing 90 days.
	transactions := []core.Transaction{
		tx("2024-01-15", "Acme Corp", 3000, "income"),
		tx("2024-01-20", "Kroger", -600, "groceries"),
		tx("2024-02-15", "Acme Corp", 3000, "income"),
		tx("2024-02-20", "Kroger", -600, "groceries"),
		tx("2024-03-15", "Acme Corp", 3000, "income"),
		tx("2024-03-20", "Kroger", -600, "groceries"),
	}

	p := Profile(transactions)
	if !almostEqual(p.MonthlyIncome, 3000) {
		t.Errorf("MonthlyIncome = %.2f, want 3000.00", p.MonthlyIncome)
	}
	if !almostEqual(p.MonthlyExpenses, 600) {
		t.Errorf("MonthlyExpenses = %.2f, want 600.00", p.MonthlyExpenses)
	}
	if !almostEqual(p.MonthlySavings, 2400) {
		t.Errorf("MonthlySavings = %.2f, want 2400.00", p.MonthlySavings)
	}
	if !almostEqual(p.CategoryMonthly["groceries"], 600) {
		t.Errorf("CategoryMonthly[groceries] = %.2f, want 600.00", p.CategoryMonthly["groceries"])
	}
}

func TestTopSpendingCategories(t *testing.T) {
	profile := SpendingProfile{CategoryMonthly: map[string]float64{
		"groceries":     400,
		"entertainment": 150,
		"dining":        300,
		"utilities":     120,
	}}

	top := TopSpendingCategories(profile, 3)
	if len(top) != 3 {
		t.Fatalf("got %d categories, want 3", len(top))
	}
	want := []string{"groceries", "dining", "entertainment"}
	for i, w := range want {
		if top[i].Category != w {
			t.Errorf("top[%d] = %q, want %q", i, top[i].Category, w)
		}
	}
}
