// Package timerange maps named relative windows to absolute capture timestamps.
package timerange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidWindow is returned for a window key outside the fixed set.
var ErrInvalidWindow = errors.New("invalid time window")

// Layout is the 14-digit CDX timestamp layout.
const Layout = "20060102150405"

// DefaultIndex is used when the numeric selector cannot be resolved.
const DefaultIndex = 2

// Window is a named look-back period.
type Window struct {
	Key  string
	Days int
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return time.Duration(w.Days) * 24 * time.Hour
}

// Windows is the selector table. Its order defines the TIME_FRAME index.
var Windows = []Window{
	{Key: "30_days", Days: 30},
	{Key: "7_days", Days: 7},
	{Key: "1_day", Days: 1},
	{Key: "1_year", Days: 365},
	{Key: "6_months", Days: 180},
	{Key: "3_months", Days: 90},
}

// Keys lists the window keys in selector order.
func Keys() []string {
	keys := make([]string, len(Windows))
	for i, w := range Windows {
		keys[i] = w.Key
	}

	return keys
}

// Lookup finds a window by key.
func Lookup(key string) (Window, error) {
	for _, w := range Windows {
		if w.Key == key {
			return w, nil
		}
	}

	return Window{}, fmt.Errorf("%w: %q (choose from: %s)", ErrInvalidWindow, key, strings.Join(Keys(), ", "))
}

// ResolveIndex turns the raw selector into a window key. Anything that is not
// an in-range integer resolves to DefaultIndex and reports fellBack.
func ResolveIndex(raw string) (key string, index int, fellBack bool) {
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || index < 0 || index >= len(Windows) {
		return Windows[DefaultIndex].Key, DefaultIndex, true
	}

	return Windows[index].Key, index, false
}

// Range is an absolute [Start, End] interval.
type Range struct {
	Start time.Time
	End   time.Time
}

// From returns Start as a 14-digit timestamp.
func (r Range) From() string {
	return Format14(r.Start)
}

// To returns End as a 14-digit timestamp.
func (r Range) To() string {
	return Format14(r.End)
}

// Format14 renders t in UTC as YYYYMMDDHHMMSS.
func Format14(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse14 parses a YYYYMMDDHHMMSS timestamp as UTC.
func Parse14(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, time.UTC)
}

// Calculator computes ranges relative to its clock.
type Calculator struct {
	now func() time.Time
}

// NewCalculator creates a calculator using the wall clock.
func NewCalculator() *Calculator {
	return &Calculator{now: time.Now}
}

// NewCalculatorWithClock creates a calculator with an injected clock.
func NewCalculatorWithClock(now func() time.Time) *Calculator {
	return &Calculator{now: now}
}

// Range returns the window ending now.
func (c *Calculator) Range(key string) (Range, error) {
	w, err := Lookup(key)
	if err != nil {
		return Range{}, err
	}

	end := c.now().UTC()

	return Range{Start: end.Add(-w.Duration()), End: end}, nil
}
