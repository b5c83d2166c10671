package billing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Method is how hours are billed on a calendar day type.
type Method string

const (
	PerHour        Method = "PER_HOUR"
	MinimumBilling Method = "MINIMUM_BILLING"
)

// ParseMethod accepts the stored method names case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case PerHour, MinimumBilling:
		return m, nil
	default:
		return "", fmt.Errorf("unknown billing method %q (want %s or %s)", s, PerHour, MinimumBilling)
	}
}

// DayTypeConfig is shared by weekday, Saturday, Sunday and public holiday.
type DayTypeConfig struct {
	Enabled        bool    `json:"enabled"`
	BillingMethod  Method  `json:"billingMethod" validate:"oneof=PER_HOUR MINIMUM_BILLING"`
	MinHours       float64 `json:"minHours" validate:"gte=0,lte=24"`
	RateMultiplier float64 `json:"rateMultiplier" validate:"gte=0"`
}

type RainDayConfig struct {
	Enabled        bool    `json:"enabled"`
	MinHours       float64 `json:"minHours" validate:"gte=0,lte=24"`
	ThresholdHours float64 `json:"thresholdHours" validate:"gte=0,lte=24"`
}

type BreakdownConfig struct {
	Enabled bool `json:"enabled"`
}

// Config is the billing policy for one calculation run. It holds no
// references, so copies handed to concurrent aggregations are independent.
type Config struct {
	Weekday       DayTypeConfig   `json:"weekday"`
	Saturday      DayTypeConfig   `json:"saturday"`
	Sunday        DayTypeConfig   `json:"sunday"`
	PublicHoliday DayTypeConfig   `json:"publicHoliday"`
	RainDay       RainDayConfig   `json:"rainDay"`
	Breakdown     BreakdownConfig `json:"breakdown"`
}

// DefaultDayType is used for a day type missing from stored config.
func DefaultDayType() DayTypeConfig {
	return DayTypeConfig{Enabled: true, BillingMethod: PerHour, RateMultiplier: 1}
}

// DefaultConfig bills actual hours on every day type.
func DefaultConfig() Config {
	return StoredConfig{}.Resolve()
}

// DayType returns the calendar day-type block for d. Special day types have
// no DayTypeConfig and report false.
func (c Config) DayType(d DayType) (DayTypeConfig, bool) {
	switch d {
	case Weekday:
		return c.Weekday, true
	case Saturday:
		return c.Saturday, true
	case Sunday:
		return c.Sunday, true
	case PublicHoliday:
		return c.PublicHoliday, true
	default:
		return DayTypeConfig{}, false
	}
}

// ApplyMethodToAllDayTypes returns a copy of c with the billing method of
// every calendar day type set to m.
func ApplyMethodToAllDayTypes(c Config, m Method) Config {
	c.Weekday.BillingMethod = m
	c.Saturday.BillingMethod = m
	c.Sunday.BillingMethod = m
	c.PublicHoliday.BillingMethod = m
	return c
}

var validate = validator.New()

// Validate checks method names and hour ranges.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating billing config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return fmt.Errorf("invalid billing config: %s", strings.Join(msgs, "; "))
}

// StoredDayType is the persisted form of a DayTypeConfig; nil fields were
// absent in storage.
type StoredDayType struct {
	Enabled        *bool    `toml:"enabled,omitempty" json:"enabled,omitempty"`
	BillingMethod  *Method  `toml:"billing_method,omitempty" json:"billingMethod,omitempty"`
	MinHours       *float64 `toml:"min_hours,omitempty" json:"minHours,omitempty"`
	RateMultiplier *float64 `toml:"rate_multiplier,omitempty" json:"rateMultiplier,omitempty"`
}

type StoredRainDay struct {
	Enabled        *bool    `toml:"enabled,omitempty" json:"enabled,omitempty"`
	MinHours       *float64 `toml:"min_hours,omitempty" json:"minHours,omitempty"`
	ThresholdHours *float64 `toml:"threshold_hours,omitempty" json:"thresholdHours,omitempty"`
}

type StoredBreakdown struct {
	Enabled *bool `toml:"enabled,omitempty" json:"enabled,omitempty"`
}

// StoredConfig is billing config as found in a config file or the legacy
// settings document, where whole sections may be missing.
type StoredConfig struct {
	Weekday       *StoredDayType   `toml:"weekday,omitempty" json:"weekday,omitempty"`
	Saturday      *StoredDayType   `toml:"saturday,omitempty" json:"saturday,omitempty"`
	Sunday        *StoredDayType   `toml:"sunday,omitempty" json:"sunday,omitempty"`
	PublicHoliday *StoredDayType   `toml:"public_holiday,omitempty" json:"publicHoliday,omitempty"`
	RainDay       *StoredRainDay   `toml:"rain_day,omitempty" json:"rainDay,omitempty"`
	Breakdown     *StoredBreakdown `toml:"breakdown,omitempty" json:"breakdown,omitempty"`
}

// Resolve fills every gap with the historical default of billing actual
// hours and returns a self-contained Config.
func (s StoredConfig) Resolve() Config {
	c := Config{
		Weekday:       s.Weekday.resolve(),
		Saturday:      s.Saturday.resolve(),
		Sunday:        s.Sunday.resolve(),
		PublicHoliday: s.PublicHoliday.resolve(),
		RainDay:       RainDayConfig{Enabled: true},
		Breakdown:     BreakdownConfig{Enabled: true},
	}
	if s.RainDay != nil {
		c.RainDay.Enabled = deref(s.RainDay.Enabled, true)
		c.RainDay.MinHours = deref(s.RainDay.MinHours, 0)
		c.RainDay.ThresholdHours = deref(s.RainDay.ThresholdHours, 0)
	}
	if s.Breakdown != nil {
		c.Breakdown.Enabled = deref(s.Breakdown.Enabled, true)
	}
	return c
}

func (s *StoredDayType) resolve() DayTypeConfig {
	d := DefaultDayType()
	if s == nil {
		return d
	}
	d.Enabled = deref(s.Enabled, d.Enabled)
	d.BillingMethod = Method(strings.ToUpper(string(deref(s.BillingMethod, d.BillingMethod))))
	d.MinHours = deref(s.MinHours, d.MinHours)
	d.RateMultiplier = deref(s.RateMultiplier, d.RateMultiplier)
	return d
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
