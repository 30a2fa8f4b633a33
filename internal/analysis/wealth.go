package analysis

import (
	"fmt"
	"math"
	"time"

	"fincoach/internal/core"
)

// DefaultCutPercentage is the spending reduction applied by the optimized
// projection when the request does not name one.
const DefaultCutPercentage = 20.0

// optimizedTopCategories is how many spending categories the optimized
// projection reduces.
const optimizedTopCategories = 3

// ProjectionSeries is one simulated horizon: the month-0 starting point plus
// one point per simulated month.
type ProjectionSeries struct {
	Timeframe      core.Timeframe         `json:"timeframe"`
	Months         int                    `json:"months"`
	Points         []core.ProjectionPoint `json:"time_series"`
	FinalNetWorth  float64                `json:"net_worth"`
	NetWorthChange float64                `json:"net_worth_change"`
	ChangePct      float64                `json:"net_worth_change_pct"`
}

// CategoryReduction reports one spending cut applied by the optimized run.
type CategoryReduction struct {
	Category           string  `json:"category"`
	CurrentSpending    float64 `json:"current_spending"`
	SuggestedReduction float64 `json:"suggested_reduction"`
	NewSpending        float64 `json:"new_spending"`
}

// OptimizedProjection pairs the baseline and reduced-spending runs for one
// horizon, with the cuts that produced the difference.
type OptimizedProjection struct {
	Original       ProjectionSeries    `json:"original"`
	Optimized      ProjectionSeries    `json:"optimized"`
	Cuts           []CategoryReduction `json:"top_spending_categories"`
	MonthlySavings float64             `json:"monthly_savings"`
	Improvement    float64             `json:"improvement"`
	ImprovementPct float64             `json:"improvement_pct"`
}

// monthlyRate derives the monthly rate from the canonical annual percentage.
// Nominal compounding: annual/12, recomputed from the annual value at every
// step so no drift accumulates from reusing adjusted rates.
func monthlyRate(annualPct float64) float64 {
	return annualPct / 100 / 12
}

// ProjectNetWorth runs the month-by-month simulation for the given horizon.
// Each month, in order: contributions are added to their asset buckets,
// assets grow (or depreciate) at their monthly rate, liabilities accrue
// interest on the beginning-of-month balance, then payments are applied and
// capped at the outstanding balance. Point 0 is the unmodified snapshot.
func ProjectNetWorth(snapshot core.WealthSnapshot, flows core.MonthlyFlows, timeframe core.Timeframe) (ProjectionSeries, error) {
	if err := snapshot.Validate(); err != nil {
		return ProjectionSeries{}, err
	}
	months, err := timeframe.Months()
	if err != nil {
		return ProjectionSeries{}, err
	}
	return simulate(snapshot, flows, timeframe, months, time.Now()), nil
}

// simulate is the simulation core, parameterized on the start month so tests
// can pin the calendar labels.
func simulate(snapshot core.WealthSnapshot, flows core.MonthlyFlows, timeframe core.Timeframe, months int, start time.Time) ProjectionSeries {
	realEstate := snapshot.Assets.RealEstate.Value
	checking := snapshot.Assets.Checking.Value
	savings := snapshot.Assets.Savings.Value
	retirement := snapshot.Assets.Retirement.Value
	cars := snapshot.Assets.Cars.Value
	otherAssets := snapshot.Assets.OtherAssets.Value

	mortgage := snapshot.Liabilities.RealEstateLoans.Value
	creditCard := snapshot.Liabilities.CreditCardDebt.Value
	personal := snapshot.Liabilities.PersonalLoans.Value
	student := snapshot.Liabilities.StudentLoans.Value
	carLoan := snapshot.Liabilities.CarLoans.Value
	otherDebt := snapshot.Liabilities.OtherDebt.Value

	year, month := start.Year(), int(start.Month())

	series := ProjectionSeries{
		Timeframe: timeframe,
		Months:    months,
		Points:    make([]core.ProjectionPoint, 0, months+1),
	}

	record := func(index int) {
		assetsTotal := realEstate + checking + savings + retirement + cars + otherAssets
		liabilitiesTotal := mortgage + creditCard + personal + student + carLoan + otherDebt
		series.Points = append(series.Points, core.ProjectionPoint{
			MonthIndex:       index,
			Month:            fmt.Sprintf("%04d-%02d", year, month),
			AssetsTotal:      round2(assetsTotal),
			LiabilitiesTotal: round2(liabilitiesTotal),
			NetWorth:         round2(assetsTotal - liabilitiesTotal),
			RealEstate:       round2(realEstate),
			Checking:         round2(checking),
			Savings:          round2(savings),
			Retirement:       round2(retirement),
			Cars:             round2(cars),
			OtherAssets:      round2(otherAssets),
			RealEstateLoans:  round2(mortgage),
			CreditCardDebt:   round2(creditCard),
			PersonalLoans:    round2(personal),
			StudentLoans:     round2(student),
			CarLoans:         round2(carLoan),
			OtherDebt:        round2(otherDebt),
		})
	}

	record(0)

	for i := 1; i <= months; i++ {
		month++
		if month > 12 {
			year++
			month = 1
		}

		// Contributions, before growth.
		checking += flows.Contributions.Checking
		savings += flows.Contributions.Savings
		retirement += flows.Contributions.Retirement

		move := math.Min(flows.Contributions.MoveCheckingToInvest, math.Max(0, checking))
		checking -= move
		retirement += move

		// Asset growth and depreciation, rates derived fresh each month.
		realEstate *= 1 + monthlyRate(snapshot.Assets.RealEstate.Rate)
		checking *= 1 + monthlyRate(snapshot.Assets.Checking.Rate)
		savings *= 1 + monthlyRate(snapshot.Assets.Savings.Rate)
		retirement *= 1 + monthlyRate(snapshot.Assets.Retirement.Rate)
		cars *= 1 + monthlyRate(snapshot.Assets.Cars.Rate)
		otherAssets *= 1 + monthlyRate(snapshot.Assets.OtherAssets.Rate)
		cars = math.Max(0, cars)

		// Interest accrues on the beginning-of-month balance, then payments
		// apply, capped at the outstanding amount.
		mortgage *= 1 + monthlyRate(snapshot.Liabilities.RealEstateLoans.Rate)
		creditCard *= 1 + monthlyRate(snapshot.Liabilities.CreditCardDebt.Rate)
		personal *= 1 + monthlyRate(snapshot.Liabilities.PersonalLoans.Rate)
		student *= 1 + monthlyRate(snapshot.Liabilities.StudentLoans.Rate)
		carLoan *= 1 + monthlyRate(snapshot.Liabilities.CarLoans.Rate)
		otherDebt *= 1 + monthlyRate(snapshot.Liabilities.OtherDebt.Rate)

		mortgage = pay(mortgage, flows.DebtPayments.Mortgage)
		creditCard = pay(creditCard, flows.DebtPayments.CreditCard)
		personal = pay(personal, flows.DebtPayments.Personal)
		student = pay(student, flows.DebtPayments.Student)
		carLoan = pay(carLoan, flows.DebtPayments.Car)
		otherDebt = pay(otherDebt, flows.DebtPayments.OtherDebt)

		record(i)
	}

	start0 := series.Points[0].NetWorth
	final := series.Points[len(series.Points)-1].NetWorth
	series.FinalNetWorth = final
	series.NetWorthChange = round2(final - start0)
	if start0 != 0 {
		series.ChangePct = round2((final - start0) / math.Abs(start0) * 100)
	}
	return series
}

// pay reduces a balance by a payment without going negative. Overpaying is
// clamped, not an error.
func pay(balance, payment float64) float64 {
	if balance <= 0 || payment <= 0 {
		return balance
	}
	return math.Max(0, balance-payment)
}

// ProjectNetWorthOptimized re-runs the simulation with the top spending
// categories from the profile reduced by cutPct percent and the freed cash
// redirected into the named contribution stream. A zero-valued profile (no
// dataset supplied) yields no cuts and two identical series.
func ProjectNetWorthOptimized(snapshot core.WealthSnapshot, flows core.MonthlyFlows, timeframe core.Timeframe, cutPct float64, profile SpendingProfile, redirect core.ContributionStream) (OptimizedProjection, error) {
	if cutPct <= 0 {
		cutPct = DefaultCutPercentage
	}
	if cutPct > 100 {
		return OptimizedProjection{}, fmt.Errorf("%w: cut percentage %.1f exceeds 100", core.ErrInvalidAmount, cutPct)
	}

	original, err := ProjectNetWorth(snapshot, flows, timeframe)
	if err != nil {
		return OptimizedProjection{}, err
	}

	cuts := []CategoryReduction{}
	var freed float64
	for _, top := range TopSpendingCategories(profile, optimizedTopCategories) {
		reduction := top.TotalAmount * cutPct / 100
		cuts = append(cuts, CategoryReduction{
			Category:           top.Category,
			CurrentSpending:    round2(top.TotalAmount),
			SuggestedReduction: round2(reduction),
			NewSpending:        round2(top.TotalAmount - reduction),
		})
		freed += reduction
	}

	boosted := flows
	switch redirect {
	case core.StreamChecking:
		boosted.Contributions.Checking += freed
	case core.StreamSavings:
		boosted.Contributions.Savings += freed
	default:
		boosted.Contributions.Retirement += freed
	}

	optimized, err := ProjectNetWorth(snapshot, boosted, timeframe)
	if err != nil {
		return OptimizedProjection{}, err
	}

	result := OptimizedProjection{
		Original:       original,
		Optimized:      optimized,
		Cuts:           cuts,
		MonthlySavings: round2(freed),
		Improvement:    round2(optimized.FinalNetWorth - original.FinalNetWorth),
	}
	if original.FinalNetWorth != 0 {
		result.ImprovementPct = round2(result.Improvement / math.Abs(original.FinalNetWorth) * 100)
	}
	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
