package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/christopherklint97/plantbill/internal/eph"
	"github.com/christopherklint97/plantbill/internal/runner"
	"github.com/christopherklint97/plantbill/internal/timesheet"
)

// WriteText renders a summary table of every entity followed by the
// per-date detail of each.
func WriteText(w io.Writer, res *runner.Result) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("EPH report " + res.Range.String()))
	b.WriteString("\n")
	if len(res.Holidays) > 0 {
		b.WriteString(dimStyle.Render("Public holidays: " + strings.Join(res.Holidays, ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(res.Records) == 0 {
		b.WriteString(warningStyle.Render("No timesheets in range."))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(SummaryTable(res.Records))
	b.WriteString("\n")

	for _, rec := range res.Records {
		b.WriteString("\n")
		b.WriteString(entityStyle.Render(rec.EntityID))
		b.WriteString("\n")
		if len(rec.ResolvedEntries) > 0 {
			b.WriteString(DetailTable(rec))
			b.WriteString("\n")
		}
		if n := len(rec.MissingDates); n > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("%d date(s) without a timesheet", n)))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// SummaryTable renders one row per entity with its totals.
func SummaryTable(records []eph.Record) string {
	t := newTable("Entity", "Days", "Actual", "Billable", "Rate", "Est. cost")
	var actual, billable, cost float64
	for _, rec := range records {
		t.Row(
			rec.EntityID,
			fmt.Sprintf("%d", len(rec.ResolvedEntries)),
			hours(rec.TotalActualHours),
			hours(rec.TotalBillableHours),
			money(rec.Rate),
			money(rec.EstimatedCost),
		)
		actual += rec.TotalActualHours
		billable += rec.TotalBillableHours
		cost += rec.EstimatedCost
	}
	if len(records) > 1 {
		t.Row("Total", "", hours(actual), hours(billable), "", money(cost))
	}
	return t.Render()
}

// DetailTable renders one row per resolved date. Overridden days show the
// superseded hours next to the adjusted ones.
func DetailTable(rec eph.Record) string {
	t := newTable("Date", "Day type", "Hours", "Billable", "Rule", "Notes")
	for _, e := range rec.ResolvedEntries {
		t.Row(
			e.Date,
			string(e.Result.DayType),
			adjustedHours(e.Record),
			hours(e.Result.BillableHours),
			string(e.Result.AppliedRule),
			e.Record.Notes,
		)
	}
	return t.Render()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func adjustedHours(r timesheet.Record) string {
	if r.OriginalRecord == nil || !r.IsOverride() {
		return hours(r.TotalHours)
	}
	return fmt.Sprintf("%s (was %s, %s)", hours(r.TotalHours), hours(r.OriginalRecord.TotalHours), roleLabel(r.OverriddenBy))
}

func roleLabel(r timesheet.OverrideRole) string {
	switch r {
	case timesheet.OverrideAdmin:
		return "admin"
	case timesheet.OverridePlantManager:
		return "plant manager"
	default:
		return string(r)
	}
}

func hours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}

func money(m float64) string {
	return fmt.Sprintf("%.2f", m)
}
