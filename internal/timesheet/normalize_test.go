package timesheet

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Defaults(t *testing.T) {
	r := Normalize(Document{})

	assert.Equal(t, "", r.ID)
	assert.Equal(t, 0.0, r.TotalHours)
	assert.Equal(t, 0.0, r.OpenTime)
	assert.Equal(t, 0.0, r.CloseTime)
	assert.False(t, r.IsBreakdown)
	assert.False(t, r.IsRainDay)
	assert.False(t, r.IsStrikeDay)
	assert.False(t, r.IsPublicHoliday)
	assert.Equal(t, OverrideNone, r.OverriddenBy)
	assert.Nil(t, r.OriginalRecord)
	assert.True(t, r.SubmittedAt.IsZero())
	assert.Equal(t, ClockSentinel, ClockString(r.OpenTime))
}

func TestNormalize_AlternateFieldNames(t *testing.T) {
	r := Normalize(Document{
		"docId":        "ts-1",
		"workDate":     "2026-03-02T00:00:00Z",
		"assetId":      "EXC-01",
		"employeeName": "Sipho",
		"hoursWorked":  "7,5",
		"breakdown":    "yes",
		"adjustedBy":   "Plant Manager",
		"createdAt":    "2026-03-02 17:00:00",
	})

	assert.Equal(t, "ts-1", r.ID)
	assert.Equal(t, "2026-03-02", r.Date)
	assert.Equal(t, "EXC-01", r.EntityID)
	assert.Equal(t, "Sipho", r.OperatorName)
	assert.Equal(t, 7.5, r.TotalHours)
	assert.True(t, r.IsBreakdown)
	assert.Equal(t, OverridePlantManager, r.OverriddenBy)
	assert.Equal(t, time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC), r.SubmittedAt)
}

func TestNormalize_NumberMixing(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"float", 8.0, 8},
		{"int", 6, 6},
		{"json number", json.Number("9.25"), 9.25},
		{"numeric string", "4.5", 4.5},
		{"hour string", "8h", 8},
		{"hour string with space", "8 hrs", 8},
		{"garbage", "n/a", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Normalize(Document{"totalHours": tt.value})
			assert.Equal(t, tt.want, r.TotalHours)
		})
	}
}

func TestNormalize_TotalFromClock(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want float64
	}{
		{"clock strings", Document{"openTime": "07:00", "closeTime": "16:30"}, 9.5},
		{"numeric offsets", Document{"openTime": 1200.5, "closeTime": 1208.0}, 7.5},
		{"past midnight", Document{"startTime": "22:00", "endTime": "02:00"}, 4},
		{"meter going backwards", Document{"openHours": 10.0, "closeHours": 8.0}, 0},
		{"explicit total wins", Document{"openTime": "07:00", "closeTime": "16:00", "totalHours": 8}, 8},
		{"only open", Document{"openTime": "07:00"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.doc).TotalHours)
		})
	}
}

func TestNormalize_NotesSkipHourQuantities(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{"first field wins", Document{"notes": "Trenching", "comments": "ignored"}, "Trenching"},
		{"hour quantity skipped", Document{"notes": "8h", "comments": "Loading trucks"}, "Loading trucks"},
		{"spaced and comma", Document{"notes": " 7 , 5 hrs ", "remarks": "Site B"}, "Site B"},
		{"bare number", Document{"notes": 8, "description": "Backfill"}, "Backfill"},
		{"all quantities", Document{"notes": "8", "comments": "9hours"}, ""},
		{"text with number kept", Document{"notes": "8h on site A"}, "8h on site A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.doc).Notes)
		})
	}
}

func TestIsHourQuantity(t *testing.T) {
	for _, s := range []string{"8", "8h", "8H", "7.5hrs", "7,5 hours", ".5h", " 10 hr "} {
		assert.True(t, IsHourQuantity(s), s)
	}
	for _, s := range []string{"", "h", "eight", "8h30", "8h on site", "-2h"} {
		assert.False(t, IsHourQuantity(s), s)
	}
}

func TestNormalize_OverrideLinkage(t *testing.T) {
	r := Normalize(Document{
		"id":           "ts-3",
		"date":         "2026-03-02",
		"entityId":     "EXC-01",
		"overriddenBy": "admin",
		"totalHours":   6,
		"originalRecord": map[string]any{
			"id":         "ts-2",
			"date":       "2026-03-02",
			"entityId":   "EXC-01",
			"totalHours": 5,
		},
	})

	require.NotNil(t, r.OriginalRecord)
	assert.Equal(t, OverrideAdmin, r.OverriddenBy)
	assert.Equal(t, "ts-2", r.OriginalRecordID)
	assert.Equal(t, 5.0, r.OriginalRecord.TotalHours)
}

func TestNormalize_OverrideStatus(t *testing.T) {
	assert.True(t, Normalize(Document{"overriddenBy": "admin", "overrideStatus": "Revoked"}).OverrideInactive)
	assert.True(t, Normalize(Document{"overriddenBy": "admin", "overrideActive": false}).OverrideInactive)
	assert.False(t, Normalize(Document{"overriddenBy": "admin", "overrideStatus": "pending"}).OverrideInactive)
}

func TestNormalize_Timestamps(t *testing.T) {
	want := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		value any
	}{
		{"rfc3339", "2026-03-02T10:00:00+02:00"},
		{"unix seconds", float64(want.Unix())},
		{"unix millis", float64(want.UnixMilli())},
		{"firestore", map[string]any{"seconds": float64(want.Unix()), "nanoseconds": 0.0}},
		{"firestore export", map[string]any{"_seconds": float64(want.Unix())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, Normalize(Document{"submittedAt": tt.value}).SubmittedAt)
		})
	}

	assert.True(t, Normalize(Document{"submittedAt": "yesterday"}).SubmittedAt.IsZero())
}

func TestNormalize_DateFormats(t *testing.T) {
	assert.Equal(t, "2026-03-02", Normalize(Document{"date": "02/03/2026"}).Date)
	assert.Equal(t, "2026-03-02", Normalize(Document{"date": map[string]any{"seconds": 1772445600.0}}).Date)
	assert.Equal(t, "", Normalize(Document{"date": "soon"}).Date)
}
