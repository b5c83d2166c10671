package billing

import (
	"testing"

	"github.com/christopherklint97/plantbill/internal/timesheet"
	"github.com/stretchr/testify/assert"
)

func day(date string, hours float64) timesheet.Record {
	return timesheet.Record{ID: date, Date: date, EntityID: "EXC-01", TotalHours: hours}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		rec  timesheet.Record
		want DayType
	}{
		{"monday", day("2026-03-02", 8), Weekday},
		{"saturday", day("2026-03-07", 8), Saturday},
		{"sunday", day("2026-03-08", 8), Sunday},
		{"bad date", day("someday", 8), Weekday},
		{"holiday on saturday", timesheet.Record{Date: "2026-03-07", IsPublicHoliday: true}, PublicHoliday},
		{"strike beats holiday", timesheet.Record{Date: "2026-03-02", IsStrikeDay: true, IsPublicHoliday: true}, StrikeDay},
		{"rain beats strike", timesheet.Record{Date: "2026-03-02", IsRainDay: true, IsStrikeDay: true}, RainDay},
		{"breakdown beats everything", timesheet.Record{Date: "2026-03-08", IsBreakdown: true, IsRainDay: true, IsStrikeDay: true, IsPublicHoliday: true}, Breakdown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.rec))
		})
	}
}

func TestApply_MinimumBillingMultipliesFlooredHours(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Saturday = DayTypeConfig{Enabled: true, BillingMethod: MinimumBilling, MinHours: 8, RateMultiplier: 1.5}

	got := Calculate(day("2026-03-07", 3), cfg)
	assert.Equal(t, 3.0, got.ActualHours)
	assert.Equal(t, 12.0, got.BillableHours)
	assert.Equal(t, Rule("saturday_minimum_billing"), got.AppliedRule)

	got = Calculate(day("2026-03-07", 10), cfg)
	assert.Equal(t, 15.0, got.BillableHours)
}

func TestApply_PerHour(t *testing.T) {
	cfg := DefaultConfig()
	got := Calculate(day("2026-03-02", 9.5), cfg)
	assert.Equal(t, 9.5, got.BillableHours)
	assert.Equal(t, Rule("weekday_per_hour"), got.AppliedRule)

	cfg.Sunday = DayTypeConfig{Enabled: true, BillingMethod: PerHour, MinHours: 8, RateMultiplier: 2}
	got = Calculate(day("2026-03-08", 3), cfg)
	assert.Equal(t, 6.0, got.BillableHours)
	assert.Equal(t, Rule("sunday_per_hour"), got.AppliedRule)
}

func TestApply_DisabledDayType(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PublicHoliday.Enabled = false

	got := Apply(PublicHoliday, 7, cfg)
	assert.Equal(t, 7.0, got.ActualHours)
	assert.Equal(t, 0.0, got.BillableHours)
	assert.Equal(t, Rule("public_holiday_disabled"), got.AppliedRule)
}

func TestApply_Breakdown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weekday = DayTypeConfig{Enabled: true, BillingMethod: MinimumBilling, MinHours: 8, RateMultiplier: 3}

	for _, hours := range []float64{0, 2, 6, 11} {
		cfg.Breakdown.Enabled = true
		got := Apply(Breakdown, hours, cfg)
		assert.Equal(t, hours, got.BillableHours)
		assert.Equal(t, RuleBreakdownActual, got.AppliedRule)

		cfg.Breakdown.Enabled = false
		got = Apply(Breakdown, hours, cfg)
		assert.Equal(t, 0.0, got.BillableHours)
		assert.Equal(t, hours, got.ActualHours)
		assert.Equal(t, RuleBreakdownNoCharge, got.AppliedRule)
	}
}

func TestApply_RainDayThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RainDay = RainDayConfig{Enabled: true, MinHours: 4.5, ThresholdHours: 1}

	tests := []struct {
		actual   float64
		billable float64
		rule     Rule
	}{
		{0.5, 0.5, RuleRainDayBelowThreshold},
		{1.0, 1.0, RuleRainDayBelowThreshold},
		{1.01, 4.5, RuleRainDayMinimum},
		{6, 6, RuleRainDayMinimum},
	}
	for _, tt := range tests {
		got := Apply(RainDay, tt.actual, cfg)
		assert.Equal(t, tt.billable, got.BillableHours, "actual %v", tt.actual)
		assert.Equal(t, tt.rule, got.AppliedRule, "actual %v", tt.actual)
	}

	cfg.RainDay.Enabled = false
	got := Apply(RainDay, 2, cfg)
	assert.Equal(t, 2.0, got.BillableHours)
	assert.Equal(t, RuleRainDayDisabled, got.AppliedRule)
}

func TestApply_StrikeDayIgnoresConfig(t *testing.T) {
	cfg := ApplyMethodToAllDayTypes(DefaultConfig(), MinimumBilling)
	cfg.Weekday.MinHours = 8
	cfg.Weekday.RateMultiplier = 2

	got := Calculate(timesheet.Record{Date: "2026-03-02", IsStrikeDay: true, TotalHours: 3}, cfg)
	assert.Equal(t, 3.0, got.BillableHours)
	assert.Equal(t, RuleStrikeDayActual, got.AppliedRule)
}

func TestApply_NegativeHoursClamped(t *testing.T) {
	got := Apply(Weekday, -4, DefaultConfig())
	assert.Equal(t, 0.0, got.ActualHours)
	assert.Equal(t, 0.0, got.BillableHours)
}

func TestApply_UsesTotalHoursOnly(t *testing.T) {
	r := timesheet.Record{Date: "2026-03-02", OpenTime: 7, CloseTime: 17, TotalHours: 4}
	assert.Equal(t, 4.0, Calculate(r, DefaultConfig()).ActualHours)
}
