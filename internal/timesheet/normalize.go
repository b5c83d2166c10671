package timesheet

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Candidate field names per logical value, in lookup order.
var (
	idFields           = []string{"id", "docId", "_id"}
	dateFields         = []string{"date", "workDate", "timesheetDate", "entryDate"}
	entityFields       = []string{"entityId", "assetId", "plantId", "operatorId", "employeeId"}
	operatorFields     = []string{"operatorName", "operator", "employeeName", "submittedByName"}
	openFields         = []string{"openTime", "openHours", "startTime", "clockIn"}
	closeFields        = []string{"closeTime", "closeHours", "endTime", "clockOut"}
	totalFields        = []string{"totalHours", "hours", "hoursWorked", "actualHours"}
	breakdownFields    = []string{"isBreakdown", "breakdown"}
	rainDayFields      = []string{"isRainDay", "rainDay"}
	strikeDayFields    = []string{"isStrikeDay", "strikeDay"}
	holidayFields      = []string{"isPublicHoliday", "publicHoliday"}
	overriddenByFields = []string{"overriddenBy", "adjustedBy"}
	overrideStatFields = []string{"overrideStatus", "adminOverrideStatus"}
	originalFields     = []string{"originalRecord", "originalEntry"}
	originalIDFields   = []string{"originalRecordId", "originalEntryId", "originalTimesheetId"}
	deletedFields      = []string{"deleted", "isDeleted"}
	submittedFields    = []string{"submittedAt", "updatedAt", "createdAt"}
	noteFields         = []string{"notes", "comments", "remarks", "description"}
)

// hourQuantity matches values like "8", "7.5h", "8 hrs" once whitespace is
// removed and "," is read as a decimal point.
var hourQuantity = regexp.MustCompile(`(?i)^(\d+(?:\.\d*)?|\.\d+)(h|hr|hrs|hour|hours)?$`)

var inactiveOverride = map[string]bool{
	"revoked":    true,
	"rejected":   true,
	"cancelled":  true,
	"canceled":   true,
	"inactive":   true,
	"superseded": true,
}

// Normalize maps a raw document onto a Record. It never fails: missing
// numbers become 0, missing flags false and missing clock values the
// ClockSentinel.
func Normalize(doc Document) Record {
	r := Record{
		ID:               firstString(doc, idFields),
		Date:             normalizeDate(first(doc, dateFields)),
		EntityID:         firstString(doc, entityFields),
		OperatorName:     firstString(doc, operatorFields),
		IsBreakdown:      firstFlag(doc, breakdownFields),
		IsRainDay:        firstFlag(doc, rainDayFields),
		IsStrikeDay:      firstFlag(doc, strikeDayFields),
		IsPublicHoliday:  firstFlag(doc, holidayFields),
		OverriddenBy:     parseRole(firstString(doc, overriddenByFields)),
		OriginalRecordID: firstString(doc, originalIDFields),
		Deleted:          firstFlag(doc, deletedFields),
		SubmittedAt:      parseTimestamp(first(doc, submittedFields)),
		Notes:            firstNote(doc),
	}

	status := strings.ToLower(firstString(doc, overrideStatFields))
	r.OverrideInactive = inactiveOverride[status]
	if v, ok := doc["overrideActive"]; ok && v != nil && !toFlag(v) {
		r.OverrideInactive = true
	}

	open, openClock, hasOpen := firstClock(doc, openFields)
	closeAt, closeClock, hasClose := firstClock(doc, closeFields)
	r.OpenTime = open
	r.CloseTime = closeAt

	if total, ok := firstNumber(doc, totalFields); ok {
		r.TotalHours = total
	} else if hasOpen && hasClose {
		diff := closeAt - open
		if diff < 0 && (openClock || closeClock) {
			diff += 24
		}
		r.TotalHours = math.Max(diff, 0)
	}

	for _, name := range originalFields {
		if nested, ok := asDocument(doc[name]); ok {
			orig := Normalize(nested)
			r.OriginalRecord = &orig
			if r.OriginalRecordID == "" {
				r.OriginalRecordID = orig.ID
			}
			break
		}
	}

	return r
}

// NormalizeAll normalizes every document in order.
func NormalizeAll(docs []Document) []Record {
	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, Normalize(d))
	}
	return out
}

// IsHourQuantity reports whether s is only an hour amount such as "8h".
func IsHourQuantity(s string) bool {
	compact := strings.Map(func(r rune) rune {
		switch {
		case r == ',':
			return '.'
		case r == ' ', r == '\t', r == '\n', r == '\r':
			return -1
		}
		return r
	}, s)
	return compact != "" && hourQuantity.MatchString(compact)
}

// ClockString formats hour offsets as HH:MM.
func ClockString(hours float64) string {
	if hours <= 0 {
		return ClockSentinel
	}
	mins := int(math.Round(hours * 60))
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

func first(doc Document, names []string) any {
	for _, n := range names {
		v := doc[n]
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func firstString(doc Document, names []string) string {
	for _, n := range names {
		if s := toString(doc[n]); s != "" {
			return s
		}
	}
	return ""
}

func firstNote(doc Document) string {
	for _, n := range noteFields {
		s := toString(doc[n])
		if s == "" || IsHourQuantity(s) {
			continue
		}
		return s
	}
	return ""
}

func firstFlag(doc Document, names []string) bool {
	for _, n := range names {
		if v, ok := doc[n]; ok && v != nil {
			return toFlag(v)
		}
	}
	return false
}

func firstNumber(doc Document, names []string) (float64, bool) {
	for _, n := range names {
		if f, ok := toNumber(doc[n]); ok {
			return f, true
		}
	}
	return 0, false
}

// firstClock returns the hour offset, whether it was written as HH:MM and
// whether any candidate was present.
func firstClock(doc Document, names []string) (float64, bool, bool) {
	for _, n := range names {
		v := doc[n]
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if h, ok := parseClock(s); ok {
				return h, true, true
			}
		}
		if f, ok := toNumber(v); ok {
			return f, false, true
		}
	}
	h, _ := parseClock(ClockSentinel)
	return h, false, false
}

func parseClock(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return float64(h) + float64(m)/60, true
}

func parseRole(s string) OverrideRole {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	switch s {
	case "admin", "administrator":
		return OverrideAdmin
	case "plant_manager", "plantmanager", "pm", "supervisor":
		return OverridePlantManager
	default:
		return OverrideNone
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return ""
	}
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
		if IsHourQuantity(s) {
			m := hourQuantity.FindStringSubmatch(strings.Join(strings.Fields(s), ""))
			f, err := strconv.ParseFloat(m[1], 64)
			return f, err == nil
		}
	}
	return 0, false
}

func toFlag(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true
		}
		return false
	default:
		f, ok := toNumber(v)
		return ok && f != 0
	}
}

func asDocument(v any) (Document, bool) {
	switch t := v.(type) {
	case Document:
		return t, true
	case map[string]any:
		return Document(t), true
	}
	return nil, false
}

func normalizeDate(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(t)
		if len(s) >= 10 {
			if _, err := time.Parse(time.DateOnly, s[:10]); err == nil {
				return s[:10]
			}
		}
		if d, err := time.Parse("02/01/2006", s); err == nil {
			return d.Format(time.DateOnly)
		}
		return ""
	case time.Time:
		return t.Format(time.DateOnly)
	default:
		if ts := parseTimestamp(v); !ts.IsZero() {
			return ts.UTC().Format(time.DateOnly)
		}
		return ""
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC()
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromEpoch(f)
		}
	case map[string]any, Document:
		doc, _ := asDocument(t)
		secs, ok := toNumber(doc["seconds"])
		if !ok {
			secs, ok = toNumber(doc["_seconds"])
		}
		if !ok {
			return time.Time{}
		}
		nanos, _ := toNumber(doc["nanoseconds"])
		if nanos == 0 {
			nanos, _ = toNumber(doc["_nanoseconds"])
		}
		return time.Unix(int64(secs), int64(nanos)).UTC()
	default:
		if f, ok := toNumber(v); ok {
			return fromEpoch(f)
		}
	}
	return time.Time{}
}

// fromEpoch accepts seconds or milliseconds since the epoch.
func fromEpoch(f float64) time.Time {
	if f <= 0 {
		return time.Time{}
	}
	if f > 1e12 {
		return time.UnixMilli(int64(f)).UTC()
	}
	return time.Unix(int64(f), 0).UTC()
}
