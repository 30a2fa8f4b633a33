package analysis

import (
	"math"
	"testing"

	"fincoach/internal/core"
)

type staticLookup map[string]string

func (s staticLookup) Lookup(merchant string) string { return s[merchant] }

func TestNormalizeMerchant(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Netflix.com", "NETFLIXCOM"},
		{"NETFLIX  COM ", "NETFLIX COM"},
		{"spotify*premium", "SPOTIFYPREMIUM"},
		{"AT&T Wireless", "AT&T WIRELESS"},
		{"apple+ tv", "APPLE+ TV"},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeMerchant(tt.input); got != tt.want {
				t.Fatalf("NormalizeMerchant(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetectSubscriptionsRegularCharges(t *testing.T) {
	// Six $400 charges exactly 30 days apart.
	transactions := make([]core.Transaction, 0, 6)
	start := day("2024-01-05")
	for i := 0; i < 6; i++ {
		transactions = append(transactions, core.Transaction{
			Date:     start.AddDate(0, 0, 30*i),
			Merchant: "Netflix",
			Amount:   -400,
			Category: "entertainment",
		})
	}

	got := DetectSubscriptions(transactions, 0, staticLookup{"NETFLIX": "https://netflix.com/account"})
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}

	c := got[0]
	if c.Merchant != "NETFLIX" {
		t.Errorf("Merchant = %q, want NETFLIX", c.Merchant)
	}
	if c.Score < DefaultSubscriptionThreshold {
		t.Errorf("Score = %.3f, want >= %.2f", c.Score, DefaultSubscriptionThreshold)
	}
	if math.Abs(c.AverageMonthlyCost-400) > 1 {
		t.Errorf("AverageMonthlyCost = %.2f, want ~400", c.AverageMonthlyCost)
	}
	if c.CoverageMonths != 6 {
		t.Errorf("CoverageMonths = %d, want 6", c.CoverageMonths)
	}
	if c.MedianGapDays != 30 {
		t.Errorf("MedianGapDays = %.1f, want 30", c.MedianGapDays)
	}
	if c.GapCV != 0 || c.AmountCV != 0 {
		t.Errorf("CVs = %.3f/%.3f, want 0/0 for identical gaps and amounts", c.GapCV, c.AmountCV)
	}
	if c.ManagementURL != "https://netflix.com/account" {
		t.Errorf("ManagementURL = %q", c.ManagementURL)
	}
}

func TestDetectSubscriptionsRegularScoresAtLeastJittered(t *testing.T) {
	regular := make([]core.Transaction, 0, 6)
	jittered := make([]core.Transaction, 0, 6)
	start := day("2024-01-05")
	offsets := []int{0, 30, 60, 90, 120, 150}
	jitter := []int{0, 25, 63, 88, 124, 149}
	for i := range offsets {
		regular = append(regular, core.Transaction{
			Date: start.AddDate(0, 0, offsets[i]), Merchant: "Gym", Amount: -50,
		})
		jittered = append(jittered, core.Transaction{
			Date: start.AddDate(0, 0, jitter[i]), Merchant: "Gym", Amount: -50,
		})
	}

	a := DetectSubscriptions(regular, 0.01, nil)
	b := DetectSubscriptions(jittered, 0.01, nil)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("got %d/%d candidates, want 1/1", len(a), len(b))
	}
	if a[0].Score < b[0].Score {
		t.Errorf("regular cadence scored %.4f below jittered %.4f", a[0].Score, b[0].Score)
	}
}

func TestDetectSubscriptionsGrouping(t *testing.T) {
	// Spelling variants of the same merchant must group together.
	transactions := []core.Transaction{
		{Date: day("2024-01-10"), Merchant: "Spotify.com", Amount: -9.99},
		{Date: day("2024-02-09"), Merchant: "SPOTIFY COM", Amount: -9.99},
		{Date: day("2024-03-10"), Merchant: "spotify com", Amount: -9.99},
	}

	got := DetectSubscriptions(transactions, 0, nil)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1 after merchant normalization", len(got))
	}
	if len(got[0].Charges) != 3 {
		t.Errorf("got %d charges, want 3", len(got[0].Charges))
	}
}

func TestDetectSubscriptionsSkipsSparseAndIncome(t *testing.T) {
	transactions := []core.Transaction{
		// Single charge: insufficient data.
		{Date: day("2024-01-10"), Merchant: "One Off Shop", Amount: -20},
		// Income is never a subscription.
		{Date: day("2024-01-15"), Merchant: "Acme Corp", Amount: 3000},
		{Date: day("2024-02-15"), Merchant: "Acme Corp", Amount: 3000},
	}

	if got := DetectSubscriptions(transactions, 0, nil); len(got) != 0 {
		t.Fatalf("got %d candidates, want 0", len(got))
	}
}

func TestDetectSubscriptionsThresholdFilters(t *testing.T) {
	// Wildly irregular gaps and amounts should fall below a strict threshold.
	transactions := []core.Transaction{
		{Date: day("2024-01-02"), Merchant: "Corner Store", Amount: -5},
		{Date: day("2024-01-04"), Merchant: "Corner Store", Amount: -90},
		{Date: day("2024-03-28"), Merchant: "Corner Store", Amount: -12},
		{Date: day("2024-04-02"), Merchant: "Corner Store", Amount: -63},
	}

	strict := DetectSubscriptions(transactions, 0.9, nil)
	if len(strict) != 0 {
		t.Fatalf("irregular merchant passed threshold 0.9 with score %.3f", strict[0].Score)
	}
}

func TestDetectSubscriptionsSortedByMonthlyCost(t *testing.T) {
	transactions := []core.Transaction{}
	start := day("2024-01-01")
	for i := 0; i < 4; i++ {
		transactions = append(transactions,
			core.Transaction{Date: start.AddDate(0, 0, 30*i), Merchant: "Cheap", Amount: -10},
			core.Transaction{Date: start.AddDate(0, 0, 30*i), Merchant: "Pricey", Amount: -99},
		)
	}

	got := DetectSubscriptions(transactions, 0, nil)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].Merchant != "PRICEY" {
		t.Errorf("first candidate = %q, want PRICEY", got[0].Merchant)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{1, 2, 3, 4}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.values); got != tt.want {
				t.Fatalf("median(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	if got := coefficientOfVariation([]float64{30}); got != 0 {
		t.Errorf("single value CV = %v, want 0", got)
	}
	if got := coefficientOfVariation([]float64{30, 30, 30}); got != 0 {
		t.Errorf("identical values CV = %v, want 0", got)
	}
	if got := coefficientOfVariation([]float64{-1, 1}); got != 0 {
		t.Errorf("zero-mean CV = %v, want 0", got)
	}
	spread := coefficientOfVariation([]float64{10, 50})
	tight := coefficientOfVariation([]float64{28, 32})
	if spread <= tight {
		t.Errorf("spread CV %.3f should exceed tight CV %.3f", spread, tight)
	}
}
