package eph

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/plantbill/internal/billing"
	"github.com/christopherklint97/plantbill/internal/timesheet"
)

func ptr(f float64) *float64 { return &f }

func scenarioConfig() billing.Config {
	cfg := billing.DefaultConfig()
	cfg.Saturday = billing.DayTypeConfig{Enabled: true, BillingMethod: billing.MinimumBilling, MinHours: 8, RateMultiplier: 1.5}
	cfg.PublicHoliday = billing.DayTypeConfig{Enabled: true, BillingMethod: billing.MinimumBilling, MinHours: 8, RateMultiplier: 2}
	cfg.RainDay = billing.RainDayConfig{Enabled: true, MinHours: 4.5, ThresholdHours: 1}
	cfg.Breakdown = billing.BreakdownConfig{Enabled: true}
	return cfg
}

func scenarioRecords() []timesheet.Record {
	return []timesheet.Record{
		{ID: "mon", Date: "2026-03-02", EntityID: "EXC-01", TotalHours: 8},
		{ID: "brk", Date: "2026-03-03", EntityID: "EXC-01", TotalHours: 6, IsBreakdown: true},
		{ID: "rain", Date: "2026-03-04", EntityID: "EXC-01", TotalHours: 0.5, IsRainDay: true},
		{ID: "hol", Date: "2026-03-05", EntityID: "EXC-01", TotalHours: 5, IsPublicHoliday: true},
		{ID: "sat", Date: "2026-03-07", EntityID: "EXC-01", TotalHours: 3},
		{ID: "other", Date: "2026-03-02", EntityID: "EXC-02", TotalHours: 4},
	}
}

func mustRange(t *testing.T, start, end string) DateRange {
	t.Helper()
	rng, err := NewDateRange(start, end)
	require.NoError(t, err)
	return rng
}

func TestAggregate_EndToEndScenario(t *testing.T) {
	rng := mustRange(t, "2026-03-02", "2026-03-08")
	resolved := timesheet.Resolve(scenarioRecords())

	got, err := Aggregate("EXC-01", rng, resolved, scenarioConfig(), Rates{DryRate: ptr(100)})
	require.NoError(t, err)

	assert.Equal(t, 22.5, got.TotalActualHours)
	assert.Equal(t, 42.5, got.TotalBillableHours)
	assert.Equal(t, 100.0, got.Rate)
	assert.Equal(t, 4250.0, got.EstimatedCost)

	assert.Equal(t, Bucket{ActualHours: 8, BillableHours: 8, Days: 1}, got.Buckets.Normal)
	assert.Equal(t, Bucket{ActualHours: 3, BillableHours: 12, Days: 1}, got.Buckets.Saturday)
	assert.Equal(t, Bucket{ActualHours: 6, BillableHours: 6, Days: 1}, got.Buckets.Breakdown)
	assert.Equal(t, Bucket{ActualHours: 0.5, BillableHours: 0.5, Days: 1}, got.Buckets.RainDay)
	assert.Equal(t, Bucket{ActualHours: 5, BillableHours: 16, Days: 1}, got.Buckets.PublicHoliday)
	assert.Equal(t, Bucket{}, got.Buckets.Sunday)
	assert.Equal(t, Bucket{}, got.Buckets.StrikeDay)

	rules := make([]billing.Rule, len(got.ResolvedEntries))
	for i, e := range got.ResolvedEntries {
		rules[i] = e.Result.AppliedRule
	}
	assert.Equal(t, []billing.Rule{
		"weekday_per_hour",
		"breakdown_actual",
		"rain_day_below_threshold",
		"public_holiday_minimum_billing",
		"saturday_minimum_billing",
	}, rules)
	assert.Equal(t, []string{"2026-03-06", "2026-03-08"}, got.MissingDates)
}

func TestAggregate_AbsenceVersusZero(t *testing.T) {
	rng := mustRange(t, "2026-03-02", "2026-03-04")
	cfg := billing.DefaultConfig()
	cfg.Weekday = billing.DayTypeConfig{Enabled: true, BillingMethod: billing.MinimumBilling, MinHours: 4, RateMultiplier: 1}

	resolved := timesheet.Resolve([]timesheet.Record{
		{ID: "zero", Date: "2026-03-03", EntityID: "EXC-01", TotalHours: 0},
	})

	got, err := Aggregate("EXC-01", rng, resolved, cfg, Rates{})
	require.NoError(t, err)

	require.Len(t, got.ResolvedEntries, 1)
	assert.Equal(t, "2026-03-03", got.ResolvedEntries[0].Date)
	assert.Equal(t, 0.0, got.ResolvedEntries[0].Result.ActualHours)
	assert.Equal(t, 4.0, got.ResolvedEntries[0].Result.BillableHours)
	assert.Equal(t, []string{"2026-03-02", "2026-03-04"}, got.MissingDates)
	assert.Equal(t, 0.0, got.TotalActualHours)
	assert.Equal(t, 4.0, got.TotalBillableHours)
}

func TestAggregate_InvalidRange(t *testing.T) {
	_, err := NewDateRange("2026-03-09", "2026-03-02")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = Aggregate("EXC-01", DateRange{}, nil, billing.DefaultConfig(), Rates{})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestAggregate_NoRate(t *testing.T) {
	rng := mustRange(t, "2026-03-02", "2026-03-02")
	resolved := timesheet.Resolve(scenarioRecords())

	got, err := Aggregate("EXC-01", rng, resolved, billing.DefaultConfig(), Rates{})
	require.NoError(t, err)
	assert.Equal(t, 8.0, got.TotalBillableHours)
	assert.Equal(t, 0.0, got.Rate)
	assert.Equal(t, 0.0, got.EstimatedCost)
}

func TestRates_Resolve(t *testing.T) {
	assert.Equal(t, 10.0, Rates{DryRate: ptr(10), WetRate: ptr(20), DailyRate: ptr(30)}.Resolve())
	assert.Equal(t, 20.0, Rates{WetRate: ptr(20), DailyRate: ptr(30)}.Resolve())
	assert.Equal(t, 30.0, Rates{DailyRate: ptr(30)}.Resolve())
	assert.Equal(t, 0.0, Rates{DryRate: ptr(0), WetRate: ptr(20)}.Resolve())
	assert.Equal(t, 0.0, Rates{}.Resolve())
}

func TestAggregate_DeterministicAcrossInputOrder(t *testing.T) {
	rng := mustRange(t, "2026-03-02", "2026-03-08")
	cfg := scenarioConfig()
	input := scenarioRecords()
	input = append(input,
		timesheet.Record{ID: "pm", Date: "2026-03-02", EntityID: "EXC-01", TotalHours: 7, OverriddenBy: timesheet.OverridePlantManager},
		timesheet.Record{ID: "ad", Date: "2026-03-07", EntityID: "EXC-01", TotalHours: 2, OverriddenBy: timesheet.OverrideAdmin},
	)

	want, err := Aggregate("EXC-01", rng, timesheet.Resolve(input), cfg, Rates{WetRate: ptr(55.5)})
	require.NoError(t, err)
	wantJSON, err := json.Marshal(want)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 25; i++ {
		shuffled := append([]timesheet.Record(nil), input...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := Aggregate("EXC-01", rng, timesheet.Resolve(shuffled), cfg, Rates{WetRate: ptr(55.5)})
		require.NoError(t, err)
		gotJSON, err := json.Marshal(got)
		require.NoError(t, err)
		assert.JSONEq(t, string(wantJSON), string(gotJSON))
	}
}

func TestAggregateAll(t *testing.T) {
	rng := mustRange(t, "2026-03-02", "2026-03-08")
	resolved := timesheet.Resolve(scenarioRecords())

	var mu sync.Mutex
	looked := map[string]int{}
	lookup := func(_ context.Context, id string) (Rates, error) {
		mu.Lock()
		defer mu.Unlock()
		looked[id]++
		if id == "EXC-02" {
			return Rates{DailyRate: ptr(10)}, nil
		}
		return Rates{}, nil
	}

	got, err := AggregateAll(context.Background(), []string{"EXC-02", "EXC-01", "EXC-03"}, rng, resolved, scenarioConfig(), lookup, 2)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "EXC-02", got[0].EntityID)
	assert.Equal(t, 4.0, got[0].TotalBillableHours)
	assert.Equal(t, 40.0, got[0].EstimatedCost)
	assert.Equal(t, "EXC-01", got[1].EntityID)
	assert.Equal(t, 42.5, got[1].TotalBillableHours)
	assert.Equal(t, "EXC-03", got[2].EntityID)
	assert.Empty(t, got[2].ResolvedEntries)
	assert.Len(t, got[2].MissingDates, 7)
	assert.Equal(t, map[string]int{"EXC-01": 1, "EXC-02": 1, "EXC-03": 1}, looked)
}

func TestAggregateAll_LookupError(t *testing.T) {
	rng := mustRange(t, "2026-03-02", "2026-03-02")
	boom := errors.New("boom")
	lookup := func(context.Context, string) (Rates, error) { return Rates{}, boom }

	_, err := AggregateAll(context.Background(), []string{"EXC-01"}, rng, nil, billing.DefaultConfig(), lookup, 0)
	assert.ErrorIs(t, err, boom)
}

func TestDateRange(t *testing.T) {
	rng := mustRange(t, "2026-02-27", "2026-03-02")
	assert.Equal(t, []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"}, rng.Dates())
	assert.True(t, rng.Contains("2026-03-01"))
	assert.False(t, rng.Contains("2026-03-03"))
	assert.Equal(t, "2026-02-27..2026-03-02", rng.String())
}
