// internal/cadence/clock_test.go
//
// Unit-tests for the Tuesday week-anchor arithmetic.
//
// Run: go test ./internal/cadence -v

package cadence

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNextTuesday(t *testing.T) {
	cases := []struct {
		name string
		from string
		want string
	}{
		{"monday rolls forward one day", "2026-03-02", "2026-03-03"},
		{"tuesday is its own next tuesday", "2026-03-03", "2026-03-03"},
		{"wednesday rolls to next week", "2026-03-04", "2026-03-10"},
		{"sunday rolls forward two days", "2026-03-08", "2026-03-10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextTuesday(day(tc.from))
			if !got.Equal(day(tc.want)) {
				t.Fatalf("NextTuesday(%s) = %s, want %s",
					tc.from, got.Format("2006-01-02"), tc.want)
			}
		})
	}
}

func TestNextTuesdayIgnoresTimeOfDay(t *testing.T) {
	late := day("2026-03-03").Add(23 * time.Hour)
	got := NextTuesday(late)
	if !got.Equal(day("2026-03-03")) {
		t.Fatalf("late Tuesday should still anchor on itself, got %s",
			got.Format("2006-01-02"))
	}
}

func TestThisTuesday(t *testing.T) {
	cases := []struct {
		name string
		from string
		want string
	}{
		{"tuesday is itself", "2026-03-03", "2026-03-03"},
		{"wednesday looks back one day", "2026-03-04", "2026-03-03"},
		{"monday looks back six days", "2026-03-02", "2026-02-24"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ThisTuesday(day(tc.from))
			if !got.Equal(day(tc.want)) {
				t.Fatalf("ThisTuesday(%s) = %s, want %s",
					tc.from, got.Format("2006-01-02"), tc.want)
			}
		})
	}
}
