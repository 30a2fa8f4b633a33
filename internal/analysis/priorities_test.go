package analysis

import (
	"errors"
	"math"
	"testing"

	"fincoach/internal/core"
)

func TestPlanPrioritiesWaterfall(t *testing.T) {
	profile := FinancialProfile{
		CreditCards: CreditCardProfile{
			TotalDebt:       2400,
			HighestAPR:      24.99,
			MinimumPayments: 50,
			AccountCount:    2,
		},
		EmergencyFund: EmergencyFundProfile{CurrentBalance: 12000},
		Retirement: RetirementMatchProfile{
			MatchPercentage:     5,
			MatchLimit:          5,
			CurrentContribution: 2,
			Salary:              60000,
		},
		Investing: InvestingProfile{RiskTolerance: 3, InvestmentExperience: 2, HYSARate: 4.5},
	}

	plan, err := PlanPriorities(profile, 1000, 2000)
	if err != nil {
		t.Fatalf("PlanPriorities() error = %v", err)
	}
	if len(plan.Tiers) != 4 {
		t.Fatalf("got %d tiers, want 4", len(plan.Tiers))
	}

	debt := plan.Tiers[0]
	// Minimums plus debt spread over the 12-month payoff target.
	if want := 50 + 2400.0/12; math.Abs(debt.MonthlyAllocation-want) > 0.01 {
		t.Errorf("debt allocation = %.2f, want %.2f", debt.MonthlyAllocation, want)
	}
	if debt.Status != StatusInProgress {
		t.Errorf("debt status = %q, want in_progress", debt.Status)
	}
	if debt.MonthsToComplete == nil {
		t.Fatal("debt MonthsToComplete is nil, want a finite estimate")
	}
	if *debt.MonthsToComplete != 10 {
		t.Errorf("debt MonthsToComplete = %.0f, want 10 (ceil of 2400/250)", *debt.MonthsToComplete)
	}

	emergency := plan.Tiers[1]
	if emergency.Status != StatusFunded {
		t.Errorf("emergency status = %q, want funded at 6 months of expenses", emergency.Status)
	}
	if emergency.MonthlyAllocation != 0 {
		t.Errorf("funded emergency tier received %.2f, want 0", emergency.MonthlyAllocation)
	}
	if emergency.TargetAmount != 12000 {
		t.Errorf("emergency target = %.2f, want 12000", emergency.TargetAmount)
	}

	retirement := plan.Tiers[2]
	// 3% of a 60000 salary, monthly.
	if want := 60000.0 / 12 * 3 / 100; math.Abs(retirement.MonthlyAllocation-want) > 0.01 {
		t.Errorf("retirement allocation = %.2f, want %.2f", retirement.MonthlyAllocation, want)
	}
	if retirement.Status != StatusInProgress {
		t.Errorf("retirement status = %q, want in_progress", retirement.Status)
	}

	invest := plan.Tiers[3]
	wantInvest := 1000 - debt.MonthlyAllocation - retirement.MonthlyAllocation
	if math.Abs(invest.MonthlyAllocation-wantInvest) > 0.01 {
		t.Errorf("investing allocation = %.2f, want the %.2f remainder", invest.MonthlyAllocation, wantInvest)
	}
	if invest.MonthsToComplete != nil {
		t.Error("ongoing investing tier should have nil MonthsToComplete")
	}

	if math.Abs(plan.TotalAllocated-1000) > 0.01 {
		t.Errorf("TotalAllocated = %.2f, want the full 1000", plan.TotalAllocated)
	}
	if math.Abs(plan.RemainingIncome) > 0.01 {
		t.Errorf("RemainingIncome = %.2f, want 0", plan.RemainingIncome)
	}
	if len(plan.NextSteps) == 0 {
		t.Error("expected next steps")
	}
}

func TestPlanPrioritiesStrictOrder(t *testing.T) {
	// Income covers only part of tier 1: nothing may leak to later tiers.
	profile := FinancialProfile{
		CreditCards: CreditCardProfile{TotalDebt: 2400, MinimumPayments: 50, HighestAPR: 22},
		Retirement: RetirementMatchProfile{
			MatchPercentage: 5, MatchLimit: 5, CurrentContribution: 0, Salary: 50000,
		},
	}

	plan, err := PlanPriorities(profile, 100, 2000)
	if err != nil {
		t.Fatalf("PlanPriorities() error = %v", err)
	}

	debt := plan.Tiers[0]
	if debt.MonthlyAllocation != 100 {
		t.Errorf("debt allocation = %.2f, want all 100 of income", debt.MonthlyAllocation)
	}
	for _, tier := range plan.Tiers[1:] {
		if tier.MonthlyAllocation != 0 {
			t.Errorf("tier %d (%s) received %.2f with tier 1 unfunded", tier.Rank, tier.Name, tier.MonthlyAllocation)
		}
	}

	emergency := plan.Tiers[1]
	if emergency.Status != StatusInProgress {
		t.Errorf("unfunded emergency status = %q, want in_progress", emergency.Status)
	}
	if emergency.MonthsToComplete != nil {
		t.Error("unfunded tier with zero allocation should report nil MonthsToComplete, not infinity")
	}

	invest := plan.Tiers[3]
	if invest.Status != StatusNotApplicable {
		t.Errorf("investing status = %q, want not_applicable with nothing left", invest.Status)
	}
}

func TestPlanPrioritiesNoDebt(t *testing.T) {
	profile := FinancialProfile{
		EmergencyFund: EmergencyFundProfile{CurrentBalance: 1000},
		Retirement: RetirementMatchProfile{
			MatchPercentage: 4, MatchLimit: 4, CurrentContribution: 4, Salary: 80000,
		},
	}

	plan, err := PlanPriorities(profile, 2000, 1500)
	if err != nil {
		t.Fatalf("PlanPriorities() error = %v", err)
	}

	debt := plan.Tiers[0]
	if debt.Status != StatusFunded {
		t.Errorf("no-debt status = %q, want funded", debt.Status)
	}
	if debt.MonthlyAllocation != 0 {
		t.Errorf("no-debt tier received %.2f", debt.MonthlyAllocation)
	}

	retirement := plan.Tiers[2]
	if retirement.Status != StatusFunded {
		t.Errorf("full-match status = %q, want funded", retirement.Status)
	}

	// Everything flows to the emergency fund at its monthly pace, then the
	// split tier.
	emergency := plan.Tiers[1]
	if want := (1500*6 - 1000) / 12.0; math.Abs(emergency.MonthlyAllocation-want) > 0.01 {
		t.Errorf("emergency allocation = %.2f, want %.2f", emergency.MonthlyAllocation, want)
	}

	invest := plan.Tiers[3]
	if invest.Status != StatusInProgress {
		t.Errorf("investing status = %q, want in_progress", invest.Status)
	}
	wantInvest := 2000 - emergency.MonthlyAllocation
	if math.Abs(invest.MonthlyAllocation-wantInvest) > 0.01 {
		t.Errorf("investing allocation = %.2f, want %.2f", invest.MonthlyAllocation, wantInvest)
	}
}

func TestPlanPrioritiesNoEmployerMatch(t *testing.T) {
	plan, err := PlanPriorities(FinancialProfile{}, 500, 1000)
	if err != nil {
		t.Fatalf("PlanPriorities() error = %v", err)
	}
	if got := plan.Tiers[2].Status; got != StatusNotApplicable {
		t.Errorf("no-match retirement status = %q, want not_applicable", got)
	}
}

func TestPlanPrioritiesAllocationsNeverExceedIncome(t *testing.T) {
	profile := FinancialProfile{
		CreditCards: CreditCardProfile{TotalDebt: 50000, MinimumPayments: 800, HighestAPR: 28},
		Retirement: RetirementMatchProfile{
			MatchPercentage: 6, MatchLimit: 6, CurrentContribution: 0, Salary: 120000,
		},
	}

	for _, income := range []float64{0, 100, 1000, 5000, 20000} {
		plan, err := PlanPriorities(profile, income, 3000)
		if err != nil {
			t.Fatalf("PlanPriorities(income=%.0f) error = %v", income, err)
		}
		if plan.TotalAllocated > income+0.01 {
			t.Errorf("income %.0f: allocated %.2f exceeds income", income, plan.TotalAllocated)
		}
		if plan.RemainingIncome < -0.01 {
			t.Errorf("income %.0f: remaining %.2f went negative", income, plan.RemainingIncome)
		}
	}
}

func TestPlanPrioritiesInputErrors(t *testing.T) {
	if _, err := PlanPriorities(FinancialProfile{}, -1, 1000); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative income error = %v, want ErrInvalidAmount", err)
	}

	bad := FinancialProfile{CreditCards: CreditCardProfile{TotalDebt: -5}}
	if _, err := PlanPriorities(bad, 100, 1000); !errors.Is(err, core.ErrNegativeValue) {
		t.Errorf("negative debt error = %v, want ErrNegativeValue", err)
	}
}
