package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPrincipal(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		terms    int
		expected []int64
	}{
		{
			name:     "even split",
			amount:   300000,
			terms:    3,
			expected: []int64{100000, 100000, 100000},
		},
		{
			name:     "last installment absorbs remainder",
			amount:   100,
			terms:    3,
			expected: []int64{33, 33, 34},
		},
		{
			name:     "single term",
			amount:   5000,
			terms:    1,
			expected: []int64{5000},
		},
		{
			name:     "one unit per term",
			amount:   4,
			terms:    4,
			expected: []int64{1, 1, 1, 1},
		},
		{
			name:     "large remainder",
			amount:   5000,
			terms:    6,
			expected: []int64{833, 833, 833, 833, 833, 835},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitPrincipal(tt.amount, tt.terms))
		})
	}
}

func TestSplitPrincipal_SumsToAmount(t *testing.T) {
	for amount := int64(1); amount <= 200; amount++ {
		for terms := 1; int64(terms) <= amount && terms <= 24; terms++ {
			parts := SplitPrincipal(amount, terms)
			require.Len(t, parts, terms)

			var sum int64
			for _, p := range parts {
				sum += p
			}
			require.Equal(t, amount, sum, "amount=%d terms=%d", amount, terms)
		}
	}
}

func TestSplitPrincipal_InvalidTerms(t *testing.T) {
	assert.Nil(t, SplitPrincipal(100, 0))
	assert.Nil(t, SplitPrincipal(100, -1))
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{
			name:     "same day next month",
			start:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "clamped to leap day",
			start:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "clamped to february",
			start:    time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "thirty day month",
			start:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "across year boundary",
			start:    time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
			months:   3,
			expected: time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "day kept when not computed from clamped month",
			start:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   2,
			expected: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "zero months",
			start:    time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC),
			months:   0,
			expected: time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AddMonths(tt.start, tt.months))
		})
	}
}

func TestCalculateDueDate_StrictlyIncreasing(t *testing.T) {
	starts := []time.Time{
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 8, 30, 0, 0, 0, 0, time.UTC),
	}

	for _, start := range starts {
		prev := start
		for i := 1; i <= 36; i++ {
			due := CalculateDueDate(start, i)
			assert.True(t, due.After(prev), "start=%s i=%d", start, i)

			// exactly one calendar month apart
			monthsApart := (due.Year()-prev.Year())*12 + int(due.Month()-prev.Month())
			assert.Equal(t, 1, monthsApart, "start=%s i=%d", start, i)
			prev = due
		}
	}
}

func TestTruncateToDate(t *testing.T) {
	ts := time.Date(2024, 5, 6, 13, 45, 10, 99, time.FixedZone("WIB", 7*3600))
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), TruncateToDate(ts))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2023-02-29")
	assert.Error(t, err)

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}
