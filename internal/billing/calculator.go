package billing

import (
	"math"
	"time"

	"github.com/christopherklint97/plantbill/internal/timesheet"
)

// DayType is the billing classification of a resolved record.
type DayType string

const (
	Weekday       DayType = "weekday"
	Saturday      DayType = "saturday"
	Sunday        DayType = "sunday"
	PublicHoliday DayType = "public_holiday"
	Breakdown     DayType = "breakdown"
	RainDay       DayType = "rain_day"
	StrikeDay     DayType = "strike_day"
)

// DayTypes lists every classification in bucket order.
var DayTypes = []DayType{Weekday, Saturday, Sunday, PublicHoliday, Breakdown, RainDay, StrikeDay}

// Rule names the policy branch that produced a Result. The values are shown
// on reports and must stay stable.
type Rule string

const (
	RuleRainDayDisabled       Rule = "rain_day_disabled"
	RuleRainDayMinimum        Rule = "rain_day_minimum"
	RuleRainDayBelowThreshold Rule = "rain_day_below_threshold"
	RuleBreakdownNoCharge     Rule = "breakdown_no_charge"
	RuleBreakdownActual       Rule = "breakdown_actual"
	RuleStrikeDayActual       Rule = "strike_day_actual"
)

// DayTypeRule builds the rule name for a calendar day type branch, for
// example saturday_minimum_billing.
func DayTypeRule(d DayType, branch string) Rule {
	return Rule(string(d) + "_" + branch)
}

// Result is the billable outcome for one resolved record.
type Result struct {
	DayType       DayType `json:"dayType"`
	ActualHours   float64 `json:"actualHours"`
	BillableHours float64 `json:"billableHours"`
	AppliedRule   Rule    `json:"appliedRule"`
}

// Classify returns the day type of r. Special flags are checked before the
// calendar: breakdown, rain day, strike day, public holiday, then Saturday,
// Sunday and weekday. A date that cannot be parsed counts as a weekday.
func Classify(r timesheet.Record) DayType {
	switch {
	case r.IsBreakdown:
		return Breakdown
	case r.IsRainDay:
		return RainDay
	case r.IsStrikeDay:
		return StrikeDay
	case r.IsPublicHoliday:
		return PublicHoliday
	}

	d, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return Weekday
	}
	switch d.Weekday() {
	case time.Saturday:
		return Saturday
	case time.Sunday:
		return Sunday
	default:
		return Weekday
	}
}

// Calculate classifies r and bills its total hours under cfg.
func Calculate(r timesheet.Record, cfg Config) Result {
	return Apply(Classify(r), r.TotalHours, cfg)
}

// Apply bills actual hours for an already classified day.
func Apply(d DayType, actual float64, cfg Config) Result {
	if actual < 0 || math.IsNaN(actual) {
		actual = 0
	}
	res := Result{DayType: d, ActualHours: actual}

	switch d {
	case Breakdown:
		if !cfg.Breakdown.Enabled {
			res.AppliedRule = RuleBreakdownNoCharge
			return res
		}
		res.BillableHours = actual
		res.AppliedRule = RuleBreakdownActual

	case RainDay:
		rain := cfg.RainDay
		switch {
		case !rain.Enabled:
			res.BillableHours = actual
			res.AppliedRule = RuleRainDayDisabled
		case actual > rain.ThresholdHours:
			res.BillableHours = math.Max(actual, rain.MinHours)
			res.AppliedRule = RuleRainDayMinimum
		default:
			res.BillableHours = actual
			res.AppliedRule = RuleRainDayBelowThreshold
		}

	case StrikeDay:
		res.BillableHours = actual
		res.AppliedRule = RuleStrikeDayActual

	default:
		dc, _ := cfg.DayType(d)
		switch {
		case !dc.Enabled:
			res.AppliedRule = DayTypeRule(d, "disabled")
		case dc.BillingMethod == MinimumBilling:
			// The multiplier scales the floored hours, not only the excess.
			res.BillableHours = math.Max(actual, dc.MinHours) * dc.RateMultiplier
			res.AppliedRule = DayTypeRule(d, "minimum_billing")
		default:
			res.BillableHours = actual * dc.RateMultiplier
			res.AppliedRule = DayTypeRule(d, "per_hour")
		}
		if res.BillableHours < 0 {
			res.BillableHours = 0
		}
	}

	return res
}
