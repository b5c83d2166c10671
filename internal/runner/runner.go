// Package runner wires the reconciliation pipeline: load documents,
// normalise, dedupe, mark holidays, resolve and aggregate per entity.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/christopherklint97/plantbill/internal/billing"
	"github.com/christopherklint97/plantbill/internal/calendar"
	"github.com/christopherklint97/plantbill/internal/eph"
	"github.com/christopherklint97/plantbill/internal/timesheet"
)

// Source supplies stored documents and asset rates.
type Source interface {
	ListDocuments(ctx context.Context, entityID, from, to string) ([]timesheet.Document, error)
	ListEntities(ctx context.Context, from, to string) ([]string, error)
	Rates(ctx context.Context, entityID string) (eph.Rates, error)
}

type Options struct {
	Range     eph.DateRange
	EntityIDs []string // empty means every entity with documents in range
	Billing   billing.Config
	Holidays  calendar.Holidays
	Workers   int
}

// Result is one calculation run.
type Result struct {
	Range       eph.DateRange  `json:"range"`
	Billing     billing.Config `json:"billing"`
	Holidays    []string       `json:"holidays"`
	Documents   int            `json:"documents"`
	Records     []eph.Record   `json:"records"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

type Runner struct {
	src    Source
	logger *slog.Logger
	now    func() time.Time
}

func New(src Source, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{src: src, logger: logger, now: time.Now}
}

// Run calculates EPH records for every requested entity over one billing
// config value.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Range.Validate(); err != nil {
		return nil, err
	}
	from, to := opts.Range.StartDate(), opts.Range.EndDate()
	start := r.now()

	entities := opts.EntityIDs
	if len(entities) == 0 {
		ids, err := r.src.ListEntities(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("listing entities: %w", err)
		}
		entities = ids
	}

	var docs []timesheet.Document
	for _, id := range entities {
		d, err := r.src.ListDocuments(ctx, id, from, to)
		if err != nil {
			return nil, fmt.Errorf("loading documents for %s: %w", id, err)
		}
		docs = append(docs, d...)
	}

	records := timesheet.Dedupe(timesheet.NormalizeAll(docs))
	if len(opts.Holidays) > 0 {
		records = opts.Holidays.Apply(records)
	}
	resolved := timesheet.Resolve(records)

	r.logger.Debug("resolved timesheets",
		"range", opts.Range.String(),
		"entities", len(entities),
		"documents", len(docs),
		"records", len(records),
		"resolved", len(resolved))

	out, err := eph.AggregateAll(ctx, entities, opts.Range, resolved, opts.Billing, r.src.Rates, opts.Workers)
	if err != nil {
		return nil, err
	}

	holidays := []string{}
	for _, d := range opts.Holidays.Dates() {
		if opts.Range.Contains(d) {
			holidays = append(holidays, d)
		}
	}

	r.logger.Info("calculation complete", "range", opts.Range.String(), "entities", len(out), "elapsed", time.Since(start))

	return &Result{
		Range:       opts.Range,
		Billing:     opts.Billing,
		Holidays:    holidays,
		Documents:   len(docs),
		Records:     out,
		GeneratedAt: start.UTC(),
	}, nil
}
