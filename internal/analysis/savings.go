package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"fincoach/internal/core"
)

// SavingsGoal is the target to save toward.
type SavingsGoal struct {
	TargetAmount  float64 `json:"target_amount"`
	Months        int     `json:"months_to_save"`
	MonthlyTarget float64 `json:"monthly_target"`
}

// SpendingCut is one suggested category reduction.
type SpendingCut struct {
	Category         string  `json:"category"`
	CurrentMonthly   float64 `json:"current_monthly"`
	SuggestedMonthly float64 `json:"suggested_monthly"`
	ReductionAmount  float64 `json:"reduction_amount"`
	ReductionPct     float64 `json:"reduction_percentage"`
	Priority         int     `json:"priority"` // 1 = cut first
}

// SavingsAnalysis is the full result of AnalyzeSavingsGoal.
type SavingsAnalysis struct {
	Goal                  SavingsGoal   `json:"goal"`
	MonthlyIncome         float64       `json:"current_monthly_income"`
	MonthlyExpenses       float64       `json:"current_monthly_expenses"`
	MonthlySavings        float64       `json:"current_monthly_savings"`
	Shortfall             float64       `json:"shortfall"`
	SuggestedCuts         []SpendingCut `json:"suggested_cuts"`
	TotalSuggestedSavings float64       `json:"total_suggested_savings"`
	RemainingShortfall    float64       `json:"remaining_shortfall"`
	CanAchieveGoal        bool          `json:"can_achieve_goal"`
	AlternativeStrategies []string      `json:"alternative_strategies"`
}

// Reduction caps per priority class. Deterministic replacement for the
// original randomized 15-35% cuts: the cap depends only on how discretionary
// the category is, so repeated runs agree.
const (
	maxCutHighPriority   = 0.35
	maxCutMediumPriority = 0.25
	maxCutLowPriority    = 0.15
	maxCutMinimal        = 0.10

	// Cuts below this fraction of the category are noise, not advice.
	minMeaningfulCut = 0.05
)

var (
	highPriorityKeywords = []string{
		"entertainment", "dining", "shopping", "recreation", "hobbies",
		"subscriptions", "luxury", "personal_care", "clothing", "travel",
	}
	mediumPriorityKeywords = []string{
		"utilities", "transportation", "groceries", "healthcare",
		"insurance", "communication", "education",
	}
	lowPriorityKeywords = []string{
		"rent", "mortgage", "debt_payment", "savings", "investment",
		"income", "taxes", "essential",
	}
)

// cutPriority classifies how aggressively a category can be reduced.
// 1 is fully discretionary, 4 is essential-adjacent.
func cutPriority(category string, monthly float64) int {
	lower := strings.ToLower(category)
	for _, kw := range highPriorityKeywords {
		if strings.Contains(lower, kw) {
			return 1
		}
	}
	for _, kw := range mediumPriorityKeywords {
		if strings.Contains(lower, kw) {
			return 2
		}
	}
	for _, kw := range lowPriorityKeywords {
		if strings.Contains(lower, kw) {
			return 3
		}
	}
	switch {
	case monthly > 500:
		return 2
	case monthly > 200:
		return 3
	default:
		return 4
	}
}

func maxCutFor(priority int) float64 {
	switch priority {
	case 1:
		return maxCutHighPriority
	case 2:
		return maxCutMediumPriority
	case 3:
		return maxCutLowPriority
	default:
		return maxCutMinimal
	}
}

// AnalyzeSavingsGoal computes the monthly shortfall toward the goal and, when
// one exists, ranks category cuts until the shortfall is covered or the
// categories run out. Non-positive target or months is an input error; an
// unreachable goal is not (reported via CanAchieveGoal=false plus
// alternatives).
func AnalyzeSavingsGoal(targetAmount float64, months int, transactions []core.Transaction) (SavingsAnalysis, error) {
	if targetAmount <= 0 {
		return SavingsAnalysis{}, fmt.Errorf("%w: target_amount %.2f must be positive", core.ErrInvalidAmount, targetAmount)
	}
	if months <= 0 {
		return SavingsAnalysis{}, fmt.Errorf("%w: months %d must be positive", core.ErrInvalidMonths, months)
	}

	profile := Profile(transactions)
	goal := SavingsGoal{
		TargetAmount:  targetAmount,
		Months:        months,
		MonthlyTarget: targetAmount / float64(months),
	}

	result := SavingsAnalysis{
		Goal:            goal,
		MonthlyIncome:   profile.MonthlyIncome,
		MonthlyExpenses: profile.MonthlyExpenses,
		MonthlySavings:  profile.MonthlySavings,
		SuggestedCuts:   []SpendingCut{},
	}
	result.Shortfall = math.Max(0, goal.MonthlyTarget-profile.MonthlySavings)

	if result.Shortfall > 0 {
		result.SuggestedCuts = suggestCuts(profile.CategoryMonthly, result.Shortfall)
		for _, cut := range result.SuggestedCuts {
			result.TotalSuggestedSavings += cut.ReductionAmount
		}
	}
	result.RemainingShortfall = math.Max(0, result.Shortfall-result.TotalSuggestedSavings)
	result.CanAchieveGoal = result.RemainingShortfall <= 0
	result.AlternativeStrategies = alternativeStrategies(result.RemainingShortfall)

	return result, nil
}

// suggestCuts walks categories in (priority asc, monthly amount desc) order,
// taking the capped reduction from each until the target is covered.
func suggestCuts(categoryMonthly map[string]float64, target float64) []SpendingCut {
	type ranked struct {
		category string
		monthly  float64
		priority int
	}
	order := make([]ranked, 0, len(categoryMonthly))
	for category, monthly := range categoryMonthly {
		if monthly <= 0 {
			continue
		}
		order = append(order, ranked{category, monthly, cutPriority(category, monthly)})
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].priority != order[j].priority {
			return order[i].priority < order[j].priority
		}
		if order[i].monthly != order[j].monthly {
			return order[i].monthly > order[j].monthly
		}
		return order[i].category < order[j].category
	})

	cuts := []SpendingCut{}
	remaining := target
	for _, r := range order {
		if remaining <= 0 {
			break
		}
		pct := math.Min(maxCutFor(r.priority), remaining/r.monthly)
		if pct <= minMeaningfulCut {
			continue
		}
		amount := r.monthly * pct
		cuts = append(cuts, SpendingCut{
			Category:         r.category,
			CurrentMonthly:   r.monthly,
			SuggestedMonthly: r.monthly - amount,
			ReductionAmount:  amount,
			ReductionPct:     pct * 100,
			Priority:         r.priority,
		})
		remaining -= amount
	}
	return cuts
}

// alternativeStrategies returns canned advice scaled to the shortfall that
// cuts alone could not close. Empty when there is nothing left to close.
func alternativeStrategies(remainingShortfall float64) []string {
	if remainingShortfall <= 0 {
		return []string{}
	}

	strategies := []string{}
	if remainingShortfall > 1000 {
		strategies = append(strategies,
			"Consider increasing income through side work or freelancing",
			"Look for higher-paying job opportunities")
	}
	if remainingShortfall > 500 {
		strategies = append(strategies,
			"Sell unused items or assets to generate one-time income",
			"Consider temporary part-time work")
	}
	if remainingShortfall > 200 {
		strategies = append(strategies,
			"Extend the savings timeline to reduce monthly pressure",
			"Look for ways to reduce fixed costs such as utilities and insurance")
	}
	strategies = append(strategies,
		"Consider a more aggressive investment strategy for existing savings",
		"Look for tax benefits or assistance programs you may qualify for")
	return strategies
}
