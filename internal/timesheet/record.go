package timesheet

import "time"

// ClockSentinel is the clock value assumed when a document has no open or
// close time.
const ClockSentinel = "00:00"

// Document is a raw timesheet document as stored by the field app. Field
// names and value types vary between app versions.
type Document map[string]any

// OverrideRole names who superseded the original field entry.
type OverrideRole string

const (
	OverrideNone         OverrideRole = ""
	OverridePlantManager OverrideRole = "plant_manager"
	OverrideAdmin        OverrideRole = "admin"
)

// Record is the canonical timesheet entry for one entity on one date.
type Record struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	EntityID     string `json:"entityId"`
	OperatorName string `json:"operatorName,omitempty"`

	// OpenTime and CloseTime are hour offsets (07:30 -> 7.5).
	OpenTime   float64 `json:"openTime"`
	CloseTime  float64 `json:"closeTime"`
	TotalHours float64 `json:"totalHours"`

	IsBreakdown     bool `json:"isBreakdown"`
	IsRainDay       bool `json:"isRainDay"`
	IsStrikeDay     bool `json:"isStrikeDay"`
	IsPublicHoliday bool `json:"isPublicHoliday"`

	OverriddenBy     OverrideRole `json:"overriddenBy,omitempty"`
	OverrideInactive bool         `json:"overrideInactive,omitempty"`
	OriginalRecord   *Record      `json:"originalRecord,omitempty"`
	OriginalRecordID string       `json:"originalRecordId,omitempty"`

	Deleted     bool      `json:"deleted,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
	Notes       string    `json:"notes,omitempty"`
}

// Key returns the grouping key of the record.
func (r Record) Key() Key {
	return Key{Date: r.Date, EntityID: r.EntityID}
}

// IsOverride reports whether the record is a supervisor or admin adjustment.
func (r Record) IsOverride() bool {
	return r.OverriddenBy != OverrideNone
}

// Usable reports whether the record can take part in resolution.
func (r Record) Usable() bool {
	return r.Date != "" && r.EntityID != "" && !r.Deleted && !r.OverrideInactive
}

// Key identifies a (date, entity) group.
type Key struct {
	Date     string `json:"date"`
	EntityID string `json:"entityId"`
}

func (k Key) String() string {
	return k.EntityID + "@" + k.Date
}

func (r OverrideRole) tier() int {
	switch r {
	case OverrideAdmin:
		return 2
	case OverridePlantManager:
		return 1
	default:
		return 0
	}
}
