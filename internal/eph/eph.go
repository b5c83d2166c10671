// Package eph builds Equipment Plant Hours records: per-entity actual and
// billable hour totals over a billing period, bucketed by day type.
package eph

import (
	"errors"
	"fmt"
	"time"

	"github.com/christopherklint97/plantbill/internal/billing"
	"github.com/christopherklint97/plantbill/internal/timesheet"
)

// ErrInvalidDateRange is returned when a range starts after it ends.
var ErrInvalidDateRange = errors.New("invalid date range")

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange parses two YYYY-MM-DD dates.
func NewDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start %q: %v", ErrInvalidDateRange, start, err)
	}
	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end %q: %v", ErrInvalidDateRange, end, err)
	}
	r := DateRange{Start: s, End: e}
	return r, r.Validate()
}

// RangeOf truncates two instants to their calendar dates.
func RangeOf(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: dateOf(start), End: dateOf(end)}
	return r, r.Validate()
}

func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: missing start or end", ErrInvalidDateRange)
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidDateRange, r.StartDate(), r.EndDate())
	}
	return nil
}

func (r DateRange) StartDate() string { return r.Start.Format(time.DateOnly) }
func (r DateRange) EndDate() string   { return r.End.Format(time.DateOnly) }

// Dates lists every date in the range as YYYY-MM-DD.
func (r DateRange) Dates() []string {
	var out []string
	for d := dateOf(r.Start); !d.After(dateOf(r.End)); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(time.DateOnly))
	}
	return out
}

// Contains reports whether date (YYYY-MM-DD) falls inside the range.
func (r DateRange) Contains(date string) bool {
	return date >= r.StartDate() && date <= r.EndDate()
}

func (r DateRange) String() string {
	return r.StartDate() + ".." + r.EndDate()
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Rates are the configured hire rates of an entity. Any may be unset.
type Rates struct {
	DryRate   *float64 `json:"dryRate,omitempty"`
	WetRate   *float64 `json:"wetRate,omitempty"`
	DailyRate *float64 `json:"dailyRate,omitempty"`
}

// Resolve returns the dry rate if set, else the wet rate, else the daily
// rate, else 0.
func (r Rates) Resolve() float64 {
	for _, p := range []*float64{r.DryRate, r.WetRate, r.DailyRate} {
		if p != nil {
			return *p
		}
	}
	return 0
}

// Bucket sums the hours of one day type.
type Bucket struct {
	ActualHours   float64 `json:"actualHours"`
	BillableHours float64 `json:"billableHours"`
	Days          int     `json:"days"`
}

// Buckets holds one Bucket per day type.
type Buckets struct {
	Normal        Bucket `json:"normal"`
	Saturday      Bucket `json:"saturday"`
	Sunday        Bucket `json:"sunday"`
	PublicHoliday Bucket `json:"publicHoliday"`
	Breakdown     Bucket `json:"breakdown"`
	RainDay       Bucket `json:"rainDay"`
	StrikeDay     Bucket `json:"strikeDay"`
}

// For returns the bucket for day type d.
func (b *Buckets) For(d billing.DayType) *Bucket {
	switch d {
	case billing.Saturday:
		return &b.Saturday
	case billing.Sunday:
		return &b.Sunday
	case billing.PublicHoliday:
		return &b.PublicHoliday
	case billing.Breakdown:
		return &b.Breakdown
	case billing.RainDay:
		return &b.RainDay
	case billing.StrikeDay:
		return &b.StrikeDay
	default:
		return &b.Normal
	}
}

// Entry is the resolved record of one date with its billing result.
type Entry struct {
	Date   string           `json:"date"`
	Record timesheet.Record `json:"record"`
	Result billing.Result   `json:"result"`
}

// Record is the EPH result for one entity over one date range.
type Record struct {
	EntityID           string    `json:"entityId"`
	Range              DateRange `json:"range"`
	Buckets            Buckets   `json:"buckets"`
	TotalActualHours   float64   `json:"totalActualHours"`
	TotalBillableHours float64   `json:"totalBillableHours"`
	Rate               float64   `json:"rate"`
	EstimatedCost      float64   `json:"estimatedCost"`
	ResolvedEntries    []Entry   `json:"resolvedEntries"`
	MissingDates       []string  `json:"missingDates"`
}
