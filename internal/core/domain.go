package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sign convention, fixed once for the whole system: negative amounts are
// spending, positive amounts are income.
type (
	// Transaction is one parsed row of an uploaded statement. Immutable once
	// loaded; lives for the duration of a single analysis request.
	Transaction struct {
		Date       time.Time
		Merchant   string
		Amount     float64
		Category   string  // assigned by the external categorization service
		Confidence float64 // classifier confidence in [0,1], 0 when absent
	}

	// Dataset is an uploaded transaction set kept by a store backend.
	Dataset struct {
		ID           string
		Filename     string
		SHA256       string
		UploadedAt   time.Time
		Transactions []Transaction
	}

	// DatasetInfo is the listing view of a Dataset, without the rows.
	DatasetInfo struct {
		ID         string
		Filename   string
		SHA256     string
		UploadedAt time.Time
		Rows       int
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid target amount")
	ErrInvalidMonths    = errors.New("invalid months")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyMerchant    = errors.New("empty merchant")
	ErrNegativeValue    = errors.New("negative balance value")
	ErrInvalidTimeframe = errors.New("unknown timeframe")
	ErrDatasetNotFound  = errors.New("dataset not found")
)

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Merchant) == "" {
		return ErrEmptyMerchant
	}
	if t.Confidence < 0 || t.Confidence > 1 {
		return fmt.Errorf("confidence %.3f outside [0,1]", t.Confidence)
	}
	return nil
}

// IsSpend reports whether the transaction is an outflow.
func (t Transaction) IsSpend() bool { return t.Amount < 0 }

// IsIncome reports whether the transaction is an inflow.
func (t Transaction) IsIncome() bool { return t.Amount > 0 }

// Window is an analysis time window anchored at the newest transaction date.
type Window string

const (
	WindowAll     Window = "all"
	Window14Days  Window = "14d"
	Window30Days  Window = "30d"
	Window90Days  Window = "90d"
	WindowOneYear Window = "1y"
)

// Days returns the window length in days, or 0 for WindowAll.
func (w Window) Days() int {
	switch w {
	case Window14Days:
		return 14
	case Window30Days:
		return 30
	case Window90Days:
		return 90
	case WindowOneYear:
		return 365
	default:
		return 0
	}
}

func (w Window) IsValid() bool {
	switch w {
	case WindowAll, Window14Days, Window30Days, Window90Days, WindowOneYear:
		return true
	}
	return false
}

// ParseWindow maps a request value onto a Window, defaulting to WindowAll.
func ParseWindow(s string) (Window, error) {
	if strings.TrimSpace(s) == "" {
		return WindowAll, nil
	}
	w := Window(strings.ToLower(strings.TrimSpace(s)))
	if !w.IsValid() {
		return WindowAll, fmt.Errorf("window %q: must be one of 14d, 30d, 90d, 1y", s)
	}
	return w, nil
}
