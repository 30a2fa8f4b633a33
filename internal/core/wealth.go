package core

import (
	"fmt"
	"strings"
)

// Entry is one asset or liability bucket: a current balance and the canonical
// annual rate applied to it. Rates are percentages; negative asset rates model
// depreciation (cars), liability rates are interest charged.
type Entry struct {
	Value float64 `json:"value"`
	Rate  float64 `json:"rate"`
}

// Assets holds the six fixed asset buckets of a net-worth snapshot.
type Assets struct {
	RealEstate  Entry `json:"realEstate"`
	Checking    Entry `json:"checking"`
	Savings     Entry `json:"savings"` // HYSA
	Retirement  Entry `json:"retirement"`
	Cars        Entry `json:"cars"`
	OtherAssets Entry `json:"otherAssets"`
}

// Liabilities holds the six fixed liability buckets.
type Liabilities struct {
	RealEstateLoans Entry `json:"realEstateLoans"`
	CreditCardDebt  Entry `json:"creditCardDebt"`
	PersonalLoans   Entry `json:"personalLoans"`
	StudentLoans    Entry `json:"studentLoans"`
	CarLoans        Entry `json:"carLoans"`
	OtherDebt       Entry `json:"otherDebt"`
}

// WealthSnapshot is the starting position for a projection.
type WealthSnapshot struct {
	Assets      Assets      `json:"assets"`
	Liabilities Liabilities `json:"liabilities"`
}

// Contributions are the four monthly inflow streams, added to their asset
// bucket before growth is applied.
type Contributions struct {
	Checking             float64 `json:"contrib_checking"`
	Savings              float64 `json:"contrib_hysa"`
	Retirement           float64 `json:"contrib_retirement"`
	MoveCheckingToInvest float64 `json:"move_checking_to_invest"`
}

// DebtPayments are the six monthly payment streams, applied after interest
// accrual and capped at the outstanding balance.
type DebtPayments struct {
	Mortgage   float64 `json:"pay_mortgage"`
	CreditCard float64 `json:"pay_cc"`
	Personal   float64 `json:"pay_personal"`
	Student    float64 `json:"pay_student"`
	Car        float64 `json:"pay_car"`
	OtherDebt  float64 `json:"pay_other_debt"`
}

// MonthlyFlows pairs contribution and payment streams with a snapshot.
type MonthlyFlows struct {
	Contributions Contributions `json:"contributions"`
	DebtPayments  DebtPayments  `json:"debtPayments"`
}

// ProjectionPoint is one simulated month. Totals are recomputed from the live
// bucket values each month, never re-derived from history.
type ProjectionPoint struct {
	MonthIndex       int     `json:"month_index"`
	Month            string  `json:"month"` // YYYY-MM
	AssetsTotal      float64 `json:"assets_total"`
	LiabilitiesTotal float64 `json:"liabilities_total"`
	NetWorth         float64 `json:"net_worth"`

	RealEstate  float64 `json:"real_estate"`
	Checking    float64 `json:"checking"`
	Savings     float64 `json:"savings_hysa"`
	Retirement  float64 `json:"retirement_invest"`
	Cars        float64 `json:"cars_value"`
	OtherAssets float64 `json:"other_assets"`

	RealEstateLoans float64 `json:"real_estate_loans"`
	CreditCardDebt  float64 `json:"credit_card_debt"`
	PersonalLoans   float64 `json:"personal_loans"`
	StudentLoans    float64 `json:"student_loans"`
	CarLoans        float64 `json:"car_loans"`
	OtherDebt       float64 `json:"other_debt"`
}

// Timeframe is one of the fixed projection horizons.
type Timeframe string

const (
	Timeframe3Months Timeframe = "3m"
	Timeframe6Months Timeframe = "6m"
	Timeframe1Year   Timeframe = "1y"
	Timeframe2Years  Timeframe = "2y"
	Timeframe5Years  Timeframe = "5y"
	Timeframe10Years Timeframe = "10y"
	Timeframe20Years Timeframe = "20y"
	Timeframe50Years Timeframe = "50y"
)

// AllTimeframes lists every horizon in ascending order.
func AllTimeframes() []Timeframe {
	return []Timeframe{
		Timeframe3Months, Timeframe6Months, Timeframe1Year, Timeframe2Years,
		Timeframe5Years, Timeframe10Years, Timeframe20Years, Timeframe50Years,
	}
}

// Months returns the horizon length, or an error for unknown values.
func (tf Timeframe) Months() (int, error) {
	switch tf {
	case Timeframe3Months:
		return 3, nil
	case Timeframe6Months:
		return 6, nil
	case Timeframe1Year:
		return 12, nil
	case Timeframe2Years:
		return 24, nil
	case Timeframe5Years:
		return 60, nil
	case Timeframe10Years:
		return 120, nil
	case Timeframe20Years:
		return 240, nil
	case Timeframe50Years:
		return 600, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTimeframe, string(tf))
}

func (e Entry) validate(name string) error {
	if e.Value < 0 {
		return fmt.Errorf("%w: %s is %.2f", ErrNegativeValue, name, e.Value)
	}
	return nil
}

// Validate rejects negative starting balances. Rates may be negative
// (depreciation) so they are not range-checked here.
func (s WealthSnapshot) Validate() error {
	checks := []struct {
		name string
		e    Entry
	}{
		{"assets.realEstate", s.Assets.RealEstate},
		{"assets.checking", s.Assets.Checking},
		{"assets.savings", s.Assets.Savings},
		{"assets.retirement", s.Assets.Retirement},
		{"assets.cars", s.Assets.Cars},
		{"assets.otherAssets", s.Assets.OtherAssets},
		{"liabilities.realEstateLoans", s.Liabilities.RealEstateLoans},
		{"liabilities.creditCardDebt", s.Liabilities.CreditCardDebt},
		{"liabilities.personalLoans", s.Liabilities.PersonalLoans},
		{"liabilities.studentLoans", s.Liabilities.StudentLoans},
		{"liabilities.carLoans", s.Liabilities.CarLoans},
		{"liabilities.otherDebt", s.Liabilities.OtherDebt},
	}
	for _, c := range checks {
		if err := c.e.validate(c.name); err != nil {
			return err
		}
	}
	return nil
}

// NetWorth returns assets minus liabilities at the snapshot itself.
func (s WealthSnapshot) NetWorth() float64 {
	assets := s.Assets.RealEstate.Value + s.Assets.Checking.Value + s.Assets.Savings.Value +
		s.Assets.Retirement.Value + s.Assets.Cars.Value + s.Assets.OtherAssets.Value
	debts := s.Liabilities.RealEstateLoans.Value + s.Liabilities.CreditCardDebt.Value +
		s.Liabilities.PersonalLoans.Value + s.Liabilities.StudentLoans.Value +
		s.Liabilities.CarLoans.Value + s.Liabilities.OtherDebt.Value
	return assets - debts
}

// ContributionStream names an asset contribution bucket that freed cash can be
// redirected into by the optimized projection.
type ContributionStream string

const (
	StreamChecking   ContributionStream = "checking"
	StreamSavings    ContributionStream = "savings"
	StreamRetirement ContributionStream = "retirement"
)

// ParseContributionStream defaults to retirement, the doctrine's growth bucket.
func ParseContributionStream(s string) (ContributionStream, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "retirement":
		return StreamRetirement, nil
	case "checking":
		return StreamChecking, nil
	case "savings", "hysa":
		return StreamSavings, nil
	}
	return StreamRetirement, fmt.Errorf("unknown contribution stream %q", s)
}
