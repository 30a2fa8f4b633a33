package core

import (
	"errors"
	"testing"
)

func TestTimeframeMonths(t *testing.T) {
	tests := []struct {
		tf   Timeframe
		want int
	}{
		{Timeframe3Months, 3},
		{Timeframe6Months, 6},
		{Timeframe1Year, 12},
		{Timeframe2Years, 24},
		{Timeframe5Years, 60},
		{Timeframe10Years, 120},
		{Timeframe20Years, 240},
		{Timeframe50Years, 600},
	}
	for _, tt := range tests {
		got, err := tt.tf.Months()
		if err != nil {
			t.Fatalf("%q.Months() error = %v", tt.tf, err)
		}
		if got != tt.want {
			t.Errorf("%q.Months() = %d, want %d", tt.tf, got, tt.want)
		}
	}

	if _, err := Timeframe("4m").Months(); !errors.Is(err, ErrInvalidTimeframe) {
		t.Fatalf("Months() error = %v, want ErrInvalidTimeframe", err)
	}
}

func TestAllTimeframesCoversEveryHorizon(t *testing.T) {
	all := AllTimeframes()
	if len(all) != 8 {
		t.Fatalf("AllTimeframes() returned %d horizons, want 8", len(all))
	}
	prev := 0
	for _, tf := range all {
		months, err := tf.Months()
		if err != nil {
			t.Fatalf("%q.Months() error = %v", tf, err)
		}
		if months <= prev {
			t.Fatalf("horizons not ascending at %q", tf)
		}
		prev = months
	}
}

func TestWealthSnapshotValidate(t *testing.T) {
	valid := WealthSnapshot{
		Assets: Assets{
			Checking: Entry{Value: 1000},
			Cars:     Entry{Value: 20000, Rate: -10}, // depreciation rate is fine
		},
		Liabilities: Liabilities{
			CreditCardDebt: Entry{Value: 500, Rate: 24},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	negative := valid
	negative.Assets.Savings.Value = -1
	if err := negative.Validate(); !errors.Is(err, ErrNegativeValue) {
		t.Fatalf("Validate() = %v, want ErrNegativeValue", err)
	}
}

func TestWealthSnapshotNetWorth(t *testing.T) {
	s := WealthSnapshot{
		Assets: Assets{
			RealEstate: Entry{Value: 300000},
			Checking:   Entry{Value: 5000},
			Savings:    Entry{Value: 20000},
		},
		Liabilities: Liabilities{
			RealEstateLoans: Entry{Value: 250000},
			StudentLoans:    Entry{Value: 15000},
		},
	}
	if got, want := s.NetWorth(), 60000.0; got != want {
		t.Fatalf("NetWorth() = %.2f, want %.2f", got, want)
	}
}

func TestParseContributionStream(t *testing.T) {
	tests := []struct {
		input   string
		want    ContributionStream
		wantErr bool
	}{
		{"", StreamRetirement, false},
		{"retirement", StreamRetirement, false},
		{"checking", StreamChecking, false},
		{"savings", StreamSavings, false},
		{"hysa", StreamSavings, false},
		{" HYSA ", StreamSavings, false},
		{"bonds", StreamRetirement, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseContributionStream(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseContributionStream(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseContributionStream(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
