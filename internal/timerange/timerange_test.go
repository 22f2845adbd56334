package timerange

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 1, 12, 30, 45, 0, time.UTC)

func TestCalculator_RangeAllWindows(t *testing.T) {
	calc := NewCalculatorWithClock(func() time.Time { return fixedNow })

	for _, w := range Windows {
		t.Run(w.Key, func(t *testing.T) {
			r, err := calc.Range(w.Key)
			require.NoError(t, err)
			require.True(t, r.Start.Before(r.End))
			require.Equal(t, time.Duration(w.Days)*24*time.Hour, r.End.Sub(r.Start))
			require.Equal(t, fixedNow, r.End)
		})
	}
}

func TestCalculator_RangeWallClock(t *testing.T) {
	r, err := NewCalculator().Range("7_days")
	require.NoError(t, err)
	require.Equal(t, 7*24*time.Hour, r.End.Sub(r.Start))
	require.Equal(t, time.UTC, r.End.Location())
}

func TestCalculator_RangeInvalidKey(t *testing.T) {
	_, err := NewCalculator().Range("2_weeks")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidWindow))
}

func TestRange_Format(t *testing.T) {
	calc := NewCalculatorWithClock(func() time.Time { return fixedNow })

	r, err := calc.Range("1_day")
	require.NoError(t, err)
	require.Equal(t, "20240229123045", r.From())
	require.Equal(t, "20240301123045", r.To())

	parsed, err := Parse14(r.To())
	require.NoError(t, err)
	require.True(t, parsed.Equal(fixedNow))
}

func TestResolveIndex(t *testing.T) {
	tests := []struct {
		raw      string
		key      string
		index    int
		fellBack bool
	}{
		{"0", "30_days", 0, false},
		{"3", "1_year", 3, false},
		{" 5 ", "3_months", 5, false},
		{"6", "1_day", DefaultIndex, true},
		{"-1", "1_day", DefaultIndex, true},
		{"abc", "1_day", DefaultIndex, true},
		{"", "1_day", DefaultIndex, true},
	}

	for _, tt := range tests {
		key, index, fellBack := ResolveIndex(tt.raw)
		if key != tt.key || index != tt.index || fellBack != tt.fellBack {
			t.Errorf("ResolveIndex(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tt.raw, key, index, fellBack, tt.key, tt.index, tt.fellBack)
		}
	}
}

func TestKeys_Order(t *testing.T) {
	require.Equal(t, []string{"30_days", "7_days", "1_day", "1_year", "6_months", "3_months"}, Keys())
}
