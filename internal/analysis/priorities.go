package analysis

import (
	"fmt"
	"math"

	"fincoach/internal/core"
)

// Tier statuses. A tier whose target is already met before any funds flow is
// "funded"; one receiving an allocation this plan is "in_progress"; one with
// nothing to fund (no debt, no remaining income) is "not_applicable".
const (
	StatusFunded        = "funded"
	StatusInProgress    = "in_progress"
	StatusNotApplicable = "not_applicable"
)

// Default planning knobs.
const (
	// Months over which accelerated credit-card payoff is targeted.
	defaultPayoffTargetMonths = 12
	// Months over which the emergency fund gap is targeted.
	emergencyFundTargetMonths = 12
	// Doctrine split of whatever remains after the first three tiers.
	growthShare = 0.8
	hysaShare   = 0.2
)

// CreditCardProfile describes the user's revolving debt position.
type CreditCardProfile struct {
	TotalDebt       float64 `json:"total_debt"`
	HighestAPR      float64 `json:"highest_apr"`
	MinimumPayments float64 `json:"minimum_payments"`
	AccountCount    int     `json:"debt_accounts"`
}

// EmergencyFundProfile describes the liquid cushion.
type EmergencyFundProfile struct {
	CurrentBalance float64 `json:"current_emergency_fund"`
}

// RetirementMatchProfile describes the employer match position. Percentages
// are of salary.
type RetirementMatchProfile struct {
	MatchPercentage     float64 `json:"employer_match_percentage"`
	MatchLimit          float64 `json:"match_limit"`
	CurrentContribution float64 `json:"current_contribution"`
	Salary              float64 `json:"salary"`
}

// InvestingProfile carries the stated allocation preferences for tier four.
type InvestingProfile struct {
	RiskTolerance        int     `json:"risk_tolerance"`        // 1..5
	InvestmentExperience int     `json:"investment_experience"` // 1..5
	PreferredAccount     string  `json:"preferred_retirement_account"`
	HYSARate             float64 `json:"hysa_rate"`
}

// FinancialProfile is the full planner input.
type FinancialProfile struct {
	CreditCards   CreditCardProfile      `json:"credit_card_debt"`
	EmergencyFund EmergencyFundProfile   `json:"emergency_fund"`
	Retirement    RetirementMatchProfile `json:"retirement_match"`
	Investing     InvestingProfile       `json:"investing_allocation"`
	// Months to pay off credit cards at the accelerated rate; defaults to 12.
	PayoffTargetMonths int `json:"payoff_target_months,omitempty"`
}

// PriorityTier is one funded rank of the waterfall. MonthsToComplete is nil
// when the tier is ongoing, or when a positive target is unmet but the
// allocation is zero (would be infinite).
type PriorityTier struct {
	Rank              int      `json:"priority"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	CurrentAmount     float64  `json:"current_amount"`
	TargetAmount      float64  `json:"target_amount"`
	MonthlyAllocation float64  `json:"monthly_allocation"`
	MonthsToComplete  *float64 `json:"months_to_complete"`
	Status            string   `json:"status"`
	Recommendations   []string `json:"recommendations"`
}

// PriorityPlan is the full waterfall output. The tiers appear in rank order
// and their allocations sum to at most the discretionary income.
type PriorityPlan struct {
	DiscretionaryIncome float64        `json:"monthly_discretionary_income"`
	SixMonthExpenses    float64        `json:"six_month_expenses"`
	MonthlyExpenses     float64        `json:"monthly_expenses"`
	Tiers               []PriorityTier `json:"priorities"`
	TotalAllocated      float64        `json:"total_allocated"`
	RemainingIncome     float64        `json:"remaining_after_plan"`
	NextSteps           []string       `json:"next_steps"`
}

// PlanPriorities allocates discretionary income across the fixed doctrine:
// (1) credit-card debt at the maximum affordable rate, (2) emergency fund to
// six months of expenses, (3) retirement contributions to the employer match
// ceiling, (4) an 80/20 growth/HYSA split of whatever remains. Tiers are
// funded strictly in rank order; a lower tier is funded to its monthly need
// before the next tier receives anything, and a satisfied tier is never
// back-funded.
func PlanPriorities(profile FinancialProfile, discretionaryIncome, monthlyExpenses float64) (PriorityPlan, error) {
	if discretionaryIncome < 0 {
		return PriorityPlan{}, fmt.Errorf("%w: discretionary income %.2f", core.ErrInvalidAmount, discretionaryIncome)
	}
	if profile.CreditCards.TotalDebt < 0 || profile.EmergencyFund.CurrentBalance < 0 {
		return PriorityPlan{}, fmt.Errorf("%w: balances must be non-negative", core.ErrNegativeValue)
	}

	payoffMonths := profile.PayoffTargetMonths
	if payoffMonths <= 0 {
		payoffMonths = defaultPayoffTargetMonths
	}

	sixMonthExpenses := monthlyExpenses * 6
	remaining := discretionaryIncome

	debtTier := planCreditCards(profile.CreditCards, &remaining, payoffMonths)
	emergencyTier := planEmergencyFund(profile.EmergencyFund, sixMonthExpenses, &remaining)
	retirementTier := planRetirementMatch(profile.Retirement, &remaining)
	investTier := planInvesting(profile.Investing, &remaining)

	plan := PriorityPlan{
		DiscretionaryIncome: discretionaryIncome,
		SixMonthExpenses:    round2(sixMonthExpenses),
		MonthlyExpenses:     round2(monthlyExpenses),
		Tiers:               []PriorityTier{debtTier, emergencyTier, retirementTier, investTier},
		NextSteps: []string{
			"Start with the highest unfinished priority immediately",
			"Set up automatic transfers for each funded tier",
			"Review and adjust monthly as your situation changes",
			"Revisit the plan whenever income or expenses shift",
		},
	}
	for _, tier := range plan.Tiers {
		plan.TotalAllocated += tier.MonthlyAllocation
	}
	plan.TotalAllocated = round2(plan.TotalAllocated)
	plan.RemainingIncome = round2(discretionaryIncome - plan.TotalAllocated)
	return plan, nil
}

func planCreditCards(cc CreditCardProfile, remaining *float64, payoffMonths int) PriorityTier {
	tier := PriorityTier{
		Rank:          1,
		Name:          "Credit Card Debt Payoff",
		CurrentAmount: cc.TotalDebt,
		TargetAmount:  0,
	}

	if cc.TotalDebt <= 0 {
		tier.Status = StatusFunded
		tier.Description = "No credit card debt"
		tier.MonthsToComplete = float64Ptr(0)
		tier.Recommendations = []string{"No credit card debt - keep balances paid in full each month"}
		return tier
	}

	// Maximum affordable payment: minimums plus an accelerated share aimed at
	// clearing the balance within the payoff target.
	needed := cc.MinimumPayments + cc.TotalDebt/float64(payoffMonths)
	allocation := math.Min(*remaining, needed)
	*remaining -= allocation

	tier.Description = fmt.Sprintf("Pay off $%.2f in credit card debt", cc.TotalDebt)
	tier.MonthlyAllocation = round2(allocation)
	tier.Status = StatusInProgress
	if allocation > 0 {
		months := cc.TotalDebt / allocation
		tier.MonthsToComplete = float64Ptr(math.Ceil(months))
	}

	tier.Recommendations = []string{
		fmt.Sprintf("Pay $%.2f monthly toward credit card balances", allocation),
		fmt.Sprintf("Focus on the highest APR card first (%.1f%%)", cc.HighestAPR),
		"Consider a balance transfer to a lower APR if available",
		"Use cash or debit only until the balance is cleared",
	}
	if tier.MonthsToComplete != nil && *tier.MonthsToComplete > 12 {
		tier.Recommendations = append(tier.Recommendations,
			"Consider a debt consolidation loan if its APR is lower")
	}
	return tier
}

func planEmergencyFund(ef EmergencyFundProfile, target float64, remaining *float64) PriorityTier {
	tier := PriorityTier{
		Rank:          2,
		Name:          "Emergency Fund",
		CurrentAmount: ef.CurrentBalance,
		TargetAmount:  round2(target),
	}

	needed := target - ef.CurrentBalance
	if needed <= 0 {
		tier.Status = StatusFunded
		tier.Description = "Emergency fund fully funded"
		tier.MonthsToComplete = float64Ptr(0)
		tier.Recommendations = []string{"Emergency fund is fully funded - keep it in a HYSA"}
		return tier
	}

	allocation := math.Min(*remaining, needed/emergencyFundTargetMonths)
	*remaining -= allocation

	tier.Description = fmt.Sprintf("Build emergency fund to $%.2f", target)
	tier.MonthlyAllocation = round2(allocation)
	tier.Status = StatusInProgress
	if allocation > 0 {
		tier.MonthsToComplete = float64Ptr(math.Ceil(needed / allocation))
	}
	tier.Recommendations = []string{
		fmt.Sprintf("Save $%.2f monthly to the emergency fund", allocation),
		"Keep the fund in a high-yield savings account for easy access",
		"Use it only for true emergencies: job loss, medical, major repairs",
		"Build to a 3-month cushion first, then extend to 6 months",
	}
	return tier
}

func planRetirementMatch(rm RetirementMatchProfile, remaining *float64) PriorityTier {
	required := math.Min(rm.MatchLimit, rm.MatchPercentage)
	tier := PriorityTier{
		Rank:          3,
		Name:          "Retirement Match",
		CurrentAmount: rm.CurrentContribution,
		TargetAmount:  required,
	}

	if required <= 0 {
		tier.Status = StatusNotApplicable
		tier.Description = "No employer match offered"
		tier.Recommendations = []string{"No employer match available - skip to diversified investing"}
		return tier
	}
	if rm.CurrentContribution >= required {
		tier.Status = StatusFunded
		tier.Description = "Already capturing the full employer match"
		tier.MonthsToComplete = float64Ptr(0)
		tier.Recommendations = []string{"Full employer match captured - free money secured"}
		return tier
	}

	additionalPct := required - rm.CurrentContribution
	monthlyNeeded := rm.Salary / 12 * additionalPct / 100
	allocation := math.Min(*remaining, monthlyNeeded)
	*remaining -= allocation

	tier.Description = fmt.Sprintf("Raise contribution to the %.1f%% match ceiling", required)
	tier.MonthlyAllocation = round2(allocation)
	tier.Status = StatusInProgress
	if allocation >= monthlyNeeded && monthlyNeeded > 0 {
		// Contribution changes take effect immediately once affordable.
		tier.MonthsToComplete = float64Ptr(1)
	}
	tier.Recommendations = []string{
		fmt.Sprintf("Increase contribution by %.1f%% of salary to capture the full match", additionalPct),
		fmt.Sprintf("That is $%.2f additional per month", monthlyNeeded),
		"Employer match is an immediate 100% return - never leave it unclaimed",
	}
	return tier
}

func planInvesting(inv InvestingProfile, remaining *float64) PriorityTier {
	allocation := *remaining
	*remaining = 0

	tier := PriorityTier{
		Rank:              4,
		Name:              "Investing Allocation",
		Description:       "80% retirement-linked growth, 20% HYSA",
		TargetAmount:      round2(allocation),
		MonthlyAllocation: round2(allocation),
		MonthsToComplete:  nil, // ongoing
	}
	if allocation <= 0 {
		tier.Status = StatusNotApplicable
		tier.Recommendations = []string{"No income remains after higher priorities this month"}
		return tier
	}

	tier.Status = StatusInProgress
	tier.Recommendations = []string{
		fmt.Sprintf("Invest $%.2f monthly in retirement-linked growth", allocation*growthShare),
		fmt.Sprintf("Save $%.2f monthly in a HYSA (current rate %.2f%%)", allocation*hysaShare, inv.HYSARate),
		"Favor broad-market index funds for the growth portion",
	}
	if inv.RiskTolerance >= 4 && inv.InvestmentExperience >= 3 {
		tier.Recommendations = append(tier.Recommendations,
			"A small high-risk allocation is reasonable given stated tolerance and experience")
	}
	switch inv.PreferredAccount {
	case "401k":
		tier.Recommendations = append(tier.Recommendations, "Maximize 401k contributions first, then an IRA")
	case "ira":
		tier.Recommendations = append(tier.Recommendations, "Focus on IRA contributions, weighing Roth vs Traditional")
	default:
		tier.Recommendations = append(tier.Recommendations, "Balance 401k and IRA contributions based on tax situation")
	}
	return tier
}

func float64Ptr(v float64) *float64 { return &v }
