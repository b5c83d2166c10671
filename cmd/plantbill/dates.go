package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	naturaldate "github.com/tj/go-naturaldate"

	"github.com/christopherklint97/plantbill/internal/eph"
)

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", `First billing date: YYYY-MM-DD or natural language like "last monday" (default: first of this month)`)
	cmd.Flags().String("to", "", `Last billing date (default: today)`)
}

func rangeFromFlags(cmd *cobra.Command, now time.Time) (eph.DateRange, error) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	return parseRange(from, to, now)
}

func parseRange(from, to string, now time.Time) (eph.DateRange, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := now
	var err error

	if from != "" {
		if start, err = parseDate(from, now); err != nil {
			return eph.DateRange{}, fmt.Errorf("--from: %w", err)
		}
	}
	if to != "" {
		if end, err = parseDate(to, now); err != nil {
			return eph.DateRange{}, fmt.Errorf("--to: %w", err)
		}
	}
	return eph.RangeOf(start, end)
}

// parseDate accepts an ISO date or a natural language expression, which is
// read as a date in the past relative to now.
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := naturaldate.Parse(s, now, naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

func parseISODate(s string) (string, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t.Format(time.DateOnly), nil
}
