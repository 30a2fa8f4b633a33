// Package source parses uploaded transaction CSV files into domain rows.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fincoach/internal/core"
)

// ErrNoHeader is returned when the file is empty or has no header row.
var ErrNoHeader = errors.New("csv has no header row")

// ErrNoAmountColumn is returned when no amount-like column can be detected.
var ErrNoAmountColumn = errors.New("csv has no amount column")

// ErrNoDateColumn is returned when no date-like column can be detected.
var ErrNoDateColumn = errors.New("csv has no date column")

// Column keyword sets for header auto-detection, checked in order. The first
// header containing a keyword wins.
var (
	dateKeywords     = []string{"transaction_date", "date", "time"}
	merchantKeywords = []string{"merchant", "description", "payee", "name"}
	amountKeywords   = []string{"amount", "debit", "credit", "value"}
	categoryKeywords = []string{"category", "type"}
)

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
}

// Result is the outcome of parsing one file. Malformed rows are skipped and
// counted, never fatal; only a missing header or missing required columns
// abort the parse.
type Result struct {
	Transactions []core.Transaction
	SkippedRows  int
	TotalRows    int
}

// columnMap holds the detected column indexes. -1 means absent.
type columnMap struct {
	date     int
	merchant int
	amount   int
	category int
	conf     int
}

// Parse reads a transaction CSV from r. The header row is matched
// case-insensitively against known column keywords, so exports from different
// banks map onto the same fields. Amounts keep the upload's sign convention:
// negative is spending, positive is income.
func Parse(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return Result{}, ErrNoHeader
	}
	if err != nil {
		return Result{}, fmt.Errorf("read header: %w", err)
	}

	cols, err := detectColumns(header)
	if err != nil {
		return Result{}, err
	}

	result := Result{Transactions: []core.Transaction{}}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.TotalRows++
			result.SkippedRows++
			continue
		}
		result.TotalRows++

		t, ok := parseRow(record, cols)
		if !ok {
			result.SkippedRows++
			continue
		}
		result.Transactions = append(result.Transactions, t)
	}
	return result, nil
}

func detectColumns(header []string) (columnMap, error) {
	cols := columnMap{date: -1, merchant: -1, amount: -1, category: -1, conf: -1}

	find := func(keywords []string) int {
		for _, kw := range keywords {
			for i, h := range header {
				if strings.Contains(strings.ToLower(strings.TrimSpace(h)), kw) {
					return i
				}
			}
		}
		return -1
	}

	cols.date = find(dateKeywords)
	cols.merchant = find(merchantKeywords)
	cols.amount = find(amountKeywords)
	cols.category = find(categoryKeywords)
	cols.conf = find([]string{"confidence"})

	if cols.amount == -1 {
		return cols, ErrNoAmountColumn
	}
	if cols.date == -1 {
		return cols, ErrNoDateColumn
	}
	return cols, nil
}

func parseRow(record []string, cols columnMap) (core.Transaction, bool) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := parseDate(field(cols.date))
	if err != nil {
		return core.Transaction{}, false
	}
	amount, err := ParseAmount(field(cols.amount))
	if err != nil {
		return core.Transaction{}, false
	}

	t := core.Transaction{
		Date:     date,
		Merchant: field(cols.merchant),
		Amount:   amount,
		Category: normalizeCategory(field(cols.category)),
	}
	if raw := field(cols.conf); raw != "" {
		if c, err := strconv.ParseFloat(raw, 64); err == nil && c >= 0 && c <= 1 {
			t.Confidence = c
		}
	}
	if t.Merchant == "" {
		return core.Transaction{}, false
	}
	return t, true
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, core.ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
}

// ParseAmount strips currency decoration ($, thousands separators,
// accounting-style parentheses for negatives) before converting.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", core.ErrInvalidAmount)
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
	}
	if negative {
		v = -v
	}
	return v, nil
}

// normalizeCategory lower-cases and snake-cases so "Personal Care" and
// "personal_care" aggregate together. Empty stays empty; the caller decides
// the fallback.
func normalizeCategory(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "uncategorized"
	}
	return strings.ReplaceAll(s, " ", "_")
}
