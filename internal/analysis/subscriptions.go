package analysis

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"fincoach/internal/core"
)

// DefaultSubscriptionThreshold is the score below which a merchant is not
// reported as a subscription.
const DefaultSubscriptionThreshold = 0.5

// Charge is one occurrence of a merchant's recurring billing.
type Charge struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"` // absolute value
}

// SubscriptionCandidate is one merchant whose charges look recurring.
type SubscriptionCandidate struct {
	Merchant           string   `json:"merchant"`
	Charges            []Charge `json:"charges"`
	MedianGapDays      float64  `json:"median_gap_days"`
	GapCV              float64  `json:"gap_cv"`
	AmountCV           float64  `json:"amount_cv"`
	CoverageMonths     int      `json:"coverage_months"`
	Score              float64  `json:"subscription_score"`
	AverageMonthlyCost float64  `json:"average_monthly_cost"`
	ManagementURL      string   `json:"management_url,omitempty"`
}

// WebsiteLookup resolves a merchant name to a management-portal URL. It may
// return "" when no mapping exists.
type WebsiteLookup interface {
	Lookup(merchant string) string
}

var (
	merchantStrip    = regexp.MustCompile(`[^A-Z0-9&+ ]`)
	merchantCollapse = regexp.MustCompile(`\s+`)
)

// NormalizeMerchant upper-cases and strips punctuation and repeated
// whitespace so "Netflix.com " and "NETFLIX COM" group together.
func NormalizeMerchant(s string) string {
	s = strings.ToUpper(s)
	s = merchantStrip.ReplaceAllString(s, "")
	s = merchantCollapse.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// DetectSubscriptions finds recurring merchant charges from gap statistics.
// Merchants with fewer than two spend charges are skipped (insufficient data,
// not an error); candidates scoring below threshold are dropped. The result
// is sorted descending by average monthly cost. sites may be nil.
func DetectSubscriptions(transactions []core.Transaction, threshold float64, sites WebsiteLookup) []SubscriptionCandidate {
	if threshold <= 0 {
		threshold = DefaultSubscriptionThreshold
	}

	grouped := map[string][]Charge{}
	for _, t := range transactions {
		if !t.IsSpend() {
			continue
		}
		m := NormalizeMerchant(t.Merchant)
		if m == "" {
			continue
		}
		grouped[m] = append(grouped[m], Charge{Date: t.Date, Amount: -t.Amount})
	}

	out := []SubscriptionCandidate{}
	for merchant, charges := range grouped {
		if len(charges) < 2 {
			continue
		}
		sort.Slice(charges, func(i, j int) bool { return charges[i].Date.Before(charges[j].Date) })

		c := scoreCandidate(merchant, charges)
		if c.Score < threshold {
			continue
		}
		if sites != nil {
			c.ManagementURL = sites.Lookup(merchant)
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageMonthlyCost != out[j].AverageMonthlyCost {
			return out[i].AverageMonthlyCost > out[j].AverageMonthlyCost
		}
		return out[i].Merchant < out[j].Merchant
	})
	return out
}

// scoreCandidate computes the gap and amount statistics for one merchant.
// The score is a weighted combination, clipped to [0,1]:
//
//	0.5 * 1/(1+gapCV)  (tighter gap clustering scores higher)
//	0.3 * 1/(1+amtCV)  (more similar amounts score higher)
//	0.2 * min(1, n/6)  (more occurrences score higher)
//
// Each term is monotonic in its input, which keeps the whole score monotonic
// in gap regularity, amount similarity, and charge count.
func scoreCandidate(merchant string, charges []Charge) SubscriptionCandidate {
	gaps := make([]float64, 0, len(charges)-1)
	for i := 1; i < len(charges); i++ {
		gaps = append(gaps, charges[i].Date.Sub(charges[i-1].Date).Hours()/24)
	}

	medianGap := median(gaps)
	gapCV := coefficientOfVariation(gaps)

	amounts := make([]float64, len(charges))
	var amountSum float64
	for i, c := range charges {
		amounts[i] = c.Amount
		amountSum += c.Amount
	}
	amountMean := amountSum / float64(len(amounts))
	amountCV := coefficientOfVariation(amounts)

	score := 0.5*(1/(1+gapCV)) + 0.3*(1/(1+amountCV)) + 0.2*math.Min(1, float64(len(charges))/6)
	score = math.Min(1, math.Max(0, score))

	avgMonthly := 0.0
	if medianGap > 0 {
		avgMonthly = amountMean * 30 / medianGap
	}

	months := map[string]struct{}{}
	for _, c := range charges {
		months[c.Date.Format("2006-01")] = struct{}{}
	}

	return SubscriptionCandidate{
		Merchant:           merchant,
		Charges:            charges,
		MedianGapDays:      medianGap,
		GapCV:              gapCV,
		AmountCV:           amountCV,
		CoverageMonths:     len(months),
		Score:              score,
		AverageMonthlyCost: avgMonthly,
	}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// coefficientOfVariation returns stddev/|mean|, or 0 for degenerate input.
func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if math.Abs(mean) < 1e-9 {
		return 0
	}
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq/float64(len(values))) / math.Abs(mean)
}
