package core

import (
	"errors"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		tx      Transaction
		wantErr error
	}{
		{
			name: "valid spend",
			tx:   Transaction{Date: date, Merchant: "Netflix", Amount: -15.99, Category: "entertainment", Confidence: 0.9},
		},
		{
			name:    "zero date",
			tx:      Transaction{Merchant: "Netflix", Amount: -15.99},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "blank merchant",
			tx:      Transaction{Date: date, Merchant: "   ", Amount: -15.99},
			wantErr: ErrEmptyMerchant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("confidence out of range", func(t *testing.T) {
		tx := Transaction{Date: date, Merchant: "Netflix", Amount: -15.99, Confidence: 1.5}
		if err := tx.Validate(); err == nil {
			t.Fatal("Validate() = nil, want error")
		}
	})
}

func TestTransactionSign(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	spend := Transaction{Date: date, Merchant: "a", Amount: -10}
	income := Transaction{Date: date, Merchant: "b", Amount: 10}
	zero := Transaction{Date: date, Merchant: "c", Amount: 0}

	if !spend.IsSpend() || spend.IsIncome() {
		t.Error("negative amount should be spend, not income")
	}
	if !income.IsIncome() || income.IsSpend() {
		t.Error("positive amount should be income, not spend")
	}
	if zero.IsSpend() || zero.IsIncome() {
		t.Error("zero amount should be neither spend nor income")
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		input   string
		want    Window
		wantErr bool
	}{
		{"", WindowAll, false},
		{"all", WindowAll, false},
		{"14d", Window14Days, false},
		{"30d", Window30Days, false},
		{"90d", Window90Days, false},
		{"1y", WindowOneYear, false},
		{" 30D ", Window30Days, false},
		{"7d", WindowAll, true},
		{"week", WindowAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWindow(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWindow(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseWindow(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWindowDays(t *testing.T) {
	tests := []struct {
		window Window
		want   int
	}{
		{WindowAll, 0},
		{Window14Days, 14},
		{Window30Days, 30},
		{Window90Days, 90},
		{WindowOneYear, 365},
	}
	for _, tt := range tests {
		if got := tt.window.Days(); got != tt.want {
			t.Errorf("%q.Days() = %d, want %d", tt.window, got, tt.want)
		}
	}
}
