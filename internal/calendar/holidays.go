// Package calendar reads public holidays from iCalendar feeds.
package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"

	"github.com/christopherklint97/plantbill/internal/eph"
	"github.com/christopherklint97/plantbill/internal/timesheet"
)

// Holidays maps a YYYY-MM-DD date to the holiday name.
type Holidays map[string]string

// Add records a holiday. An existing name for the date is kept.
func (h Holidays) Add(date, name string) {
	if _, ok := h[date]; ok {
		return
	}
	h[date] = name
}

// Has reports whether date is a holiday.
func (h Holidays) Has(date string) bool {
	_, ok := h[date]
	return ok
}

// Dates returns the holiday dates in ascending order.
func (h Holidays) Dates() []string {
	out := make([]string, 0, len(h))
	for d := range h {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Apply returns copies of records with IsPublicHoliday set on holiday dates.
// A flag already set on a record is never cleared.
func (h Holidays) Apply(records []timesheet.Record) []timesheet.Record {
	out := make([]timesheet.Record, len(records))
	for i, r := range records {
		if h.Has(r.Date) {
			r.IsPublicHoliday = true
		}
		out[i] = r
	}
	return out
}

// FetchHolidays reads an iCalendar feed from a URL or file path. Every day
// covered by an event and inside rng becomes a holiday.
func FetchHolidays(ctx context.Context, source string, rng eph.DateRange) (Holidays, error) {
	r, err := open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return parse(r, rng)
}

func open(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching holidays: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("holiday fetch returned status %d", resp.StatusCode)
		}
		return resp.Body, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("opening holiday file: %w", err)
	}
	return f, nil
}

func parse(r io.Reader, rng eph.DateRange) (Holidays, error) {
	holidays := Holidays{}
	dec := ical.NewDecoder(r)

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing holidays: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: component}

			start, err := event.DateTimeStart(time.UTC)
			if err != nil || start.IsZero() {
				continue // skip malformed events
			}
			end, err := event.DateTimeEnd(time.UTC)
			if err != nil {
				continue
			}
			summary, _ := event.Props.Text(ical.PropSummary)

			for _, date := range coveredDates(start, end) {
				if rng.Contains(date) {
					holidays.Add(date, summary)
				}
			}
		}
	}

	return holidays, nil
}

// coveredDates lists the dates from start up to, but not including, end.
// An event without a usable end covers its start date only.
func coveredDates(start, end time.Time) []string {
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	if !end.After(start) {
		return []string{first.Format(time.DateOnly)}
	}

	var out []string
	for d := first; d.Before(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(time.DateOnly))
	}
	return out
}
