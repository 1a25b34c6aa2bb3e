package utils

import (
	"time"
)

// SplitPrincipal divides amount into terms installments.
// Every installment gets floor(amount/terms) except the last, which absorbs the remainder,
// so the parts always sum to amount exactly.
func SplitPrincipal(amount int64, terms int) []int64 {
	if terms <= 0 {
		return nil
	}

	base := amount / int64(terms)
	parts := make([]int64, terms)
	for i := 0; i < terms-1; i++ {
		parts[i] = base
	}
	parts[terms-1] = amount - base*int64(terms-1)

	return parts
}

// AddMonths advances t by n calendar months.
// The day of month is kept when the target month has it, otherwise it is clamped
// to the last day of that month (Jan 31 + 1 month = Feb 28, or Feb 29 in leap years).
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	first := time.Date(year, month+time.Month(n), 1, hour, min, sec, t.Nanosecond(), t.Location())
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}

	return first.AddDate(0, 0, day-1)
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CalculateDueDate returns the due date of the n-th monthly installment (1-based)
func CalculateDueDate(processedAt time.Time, installment int) time.Time {
	return AddMonths(processedAt, installment)
}

// TruncateToDate drops the clock part, keeping the calendar date in UTC
func TruncateToDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}
