package eph

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/christopherklint97/plantbill/internal/billing"
	"github.com/christopherklint97/plantbill/internal/timesheet"
)

// RateLookup returns the rates of an entity.
type RateLookup func(ctx context.Context, entityID string) (Rates, error)

type sum struct {
	actual, billable decimal.Decimal
	days             int
}

func (s *sum) add(res billing.Result) {
	s.actual = s.actual.Add(decimal.NewFromFloat(res.ActualHours))
	s.billable = s.billable.Add(decimal.NewFromFloat(res.BillableHours))
	s.days++
}

func (s sum) bucket() Bucket {
	return Bucket{
		ActualHours:   s.actual.InexactFloat64(),
		BillableHours: s.billable.InexactFloat64(),
		Days:          s.days,
	}
}

// Aggregate builds the EPH record of entityID over rng from resolved
// records. Dates without a resolved record are skipped, not billed as zero.
func Aggregate(entityID string, rng DateRange, resolved map[timesheet.Key]timesheet.Record, cfg billing.Config, rates Rates) (Record, error) {
	if err := rng.Validate(); err != nil {
		return Record{}, err
	}

	out := Record{
		EntityID:        entityID,
		Range:           rng,
		Rate:            rates.Resolve(),
		ResolvedEntries: []Entry{},
		MissingDates:    []string{},
	}

	sums := make(map[billing.DayType]*sum, len(billing.DayTypes))
	for _, d := range billing.DayTypes {
		sums[d] = &sum{actual: decimal.Zero, billable: decimal.Zero}
	}
	var total sum

	for _, date := range rng.Dates() {
		rec, ok := resolved[timesheet.Key{Date: date, EntityID: entityID}]
		if !ok {
			out.MissingDates = append(out.MissingDates, date)
			continue
		}

		// One classification drives both the rule and the bucket.
		dt := billing.Classify(rec)
		res := billing.Apply(dt, rec.TotalHours, cfg)

		sums[dt].add(res)
		total.add(res)
		out.ResolvedEntries = append(out.ResolvedEntries, Entry{Date: date, Record: rec, Result: res})
	}

	for _, d := range billing.DayTypes {
		*out.Buckets.For(d) = sums[d].bucket()
	}
	out.TotalActualHours = total.actual.InexactFloat64()
	out.TotalBillableHours = total.billable.InexactFloat64()
	out.EstimatedCost = total.billable.Mul(decimal.NewFromFloat(out.Rate)).Round(2).InexactFloat64()

	return out, nil
}

// AggregateAll aggregates every entity concurrently over the same config
// value. Results keep the order of entityIDs. workers <= 0 means no limit.
func AggregateAll(ctx context.Context, entityIDs []string, rng DateRange, resolved map[timesheet.Key]timesheet.Record, cfg billing.Config, rates RateLookup, workers int) ([]Record, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	out := make([]Record, len(entityIDs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, id := range entityIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := Rates{}
			if rates != nil {
				var err error
				if r, err = rates(ctx, id); err != nil {
					return fmt.Errorf("looking up rates for %s: %w", id, err)
				}
			}
			rec, err := Aggregate(id, rng, resolved, cfg, r)
			if err != nil {
				return fmt.Errorf("aggregating %s: %w", id, err)
			}
			out[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
