package timesheet

import (
	"sort"
)

// candidate is a record plus its position in the caller's input, which is
// the last tie-break.
type candidate struct {
	rec Record
	pos int
}

// prefer reports whether a should win over b within the same override tier:
// the later submission wins, then the earlier input position.
func prefer(a, b candidate) bool {
	if !a.rec.SubmittedAt.Equal(b.rec.SubmittedAt) {
		return a.rec.SubmittedAt.After(b.rec.SubmittedAt)
	}
	return a.pos < b.pos
}

// outranks orders candidates by override tier, then by prefer.
func outranks(a, b candidate) bool {
	ta, tb := a.rec.OverriddenBy.tier(), b.rec.OverriddenBy.tier()
	if ta != tb {
		return ta > tb
	}
	return prefer(a, b)
}

// Resolve picks one authoritative record per (date, entity). Admin overrides
// win over plant-manager adjustments, which win over the original entry. The
// winner links to the best record of each lower tier through OriginalRecord.
// Groups without a usable record produce no key.
func Resolve(records []Record) map[Key]Record {
	groups := group(Dedupe(records))

	out := make(map[Key]Record, len(groups))
	for key, cands := range groups {
		if rec, ok := resolveGroup(cands); ok {
			out[key] = rec
		}
	}
	return out
}

// EffectiveOnly returns the winning record per (date, entity) without the
// superseded copies, ordered by date then entity.
func EffectiveOnly(records []Record) []Record {
	resolved := Resolve(records)
	out := make([]Record, 0, len(resolved))
	for _, k := range SortedKeys(resolved) {
		rec := resolved[k]
		rec.OriginalRecord = nil
		out = append(out, rec)
	}
	return out
}

// Dedupe collapses resubmissions of the same logical entry. Copies sharing an
// id collapse to one, and several unoverridden entries for the same
// (date, entity) collapse to the one the resolver would pick. Overrides with
// distinct ids are deliberate and kept. Input order is preserved.
func Dedupe(records []Record) []Record {
	keep := make([]bool, len(records))

	byID := make(map[string]int)
	for i, r := range records {
		keep[i] = true
		if r.ID == "" {
			continue
		}
		j, seen := byID[r.ID]
		if !seen {
			byID[r.ID] = i
			continue
		}
		if prefer(candidate{r, i}, candidate{records[j], j}) {
			keep[j] = false
			byID[r.ID] = i
		} else {
			keep[i] = false
		}
	}

	originals := make(map[Key]int)
	for i, r := range records {
		if !keep[i] || r.IsOverride() || !r.Usable() {
			continue
		}
		j, seen := originals[r.Key()]
		if !seen {
			originals[r.Key()] = i
			continue
		}
		if prefer(candidate{r, i}, candidate{records[j], j}) {
			keep[j] = false
			originals[r.Key()] = i
		} else {
			keep[i] = false
		}
	}

	out := make([]Record, 0, len(records))
	for i, r := range records {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}

// SortedKeys returns the keys of a resolution ordered by date then entity.
func SortedKeys(resolved map[Key]Record) []Key {
	keys := make([]Key, 0, len(resolved))
	for k := range resolved {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date < keys[j].Date
		}
		return keys[i].EntityID < keys[j].EntityID
	})
	return keys
}

func group(records []Record) map[Key][]candidate {
	groups := make(map[Key][]candidate)
	for i, r := range records {
		if !r.Usable() {
			continue
		}
		groups[r.Key()] = append(groups[r.Key()], candidate{rec: r, pos: i})
	}
	return groups
}

func resolveGroup(cands []candidate) (Record, bool) {
	if len(cands) == 0 {
		return Record{}, false
	}

	sorted := make([]candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return outranks(sorted[i], sorted[j])
	})

	// Best record of each tier, highest tier first.
	chain := []Record{sorted[0].rec}
	for _, c := range sorted[1:] {
		last := chain[len(chain)-1]
		if c.rec.OverriddenBy.tier() >= last.OverriddenBy.tier() {
			continue
		}
		// An explicit link names the superseded record within its tier.
		if alt, ok := linked(sorted, last.OriginalRecordID, c.rec.OverriddenBy); ok {
			chain = append(chain, alt)
		} else {
			chain = append(chain, c.rec)
		}
	}

	var prev *Record
	for i := len(chain) - 1; i >= 0; i-- {
		rec := chain[i]
		if prev != nil {
			rec.OriginalRecord = prev
			if prev.ID != "" {
				rec.OriginalRecordID = prev.ID
			}
		}
		prev = &rec
	}
	return *prev, true
}

func linked(sorted []candidate, id string, role OverrideRole) (Record, bool) {
	if id == "" {
		return Record{}, false
	}
	for _, c := range sorted {
		if c.rec.ID == id && c.rec.OverriddenBy == role {
			return c.rec, true
		}
	}
	return Record{}, false
}
