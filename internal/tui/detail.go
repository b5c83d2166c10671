package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/christopherklint97/plantbill/internal/billing"
	"github.com/christopherklint97/plantbill/internal/eph"
)

type detailModel struct {
	record  eph.Record
	offset  int
	visible int
}

func newDetailModel(rec eph.Record) detailModel {
	return detailModel{record: rec, visible: defaultVisible}
}

func (m *detailModel) setHeight(h int) {
	if h > 20 {
		m.visible = h - 18
	}
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "down", "j":
			if m.offset < len(m.record.ResolvedEntries)-m.visible {
				m.offset++
			}
		}
	}
	return m, nil
}

func (m detailModel) View() string {
	r := m.record
	var b strings.Builder

	b.WriteString(titleStyle.Render(r.EntityID + " " + r.Range.String()))
	b.WriteString("\n")

	var totals strings.Builder
	for _, d := range billing.DayTypes {
		bucket := r.Buckets.For(d)
		if bucket.Days == 0 {
			continue
		}
		fmt.Fprintf(&totals, "%-15s %3d day(s) %8.2f actual %8.2f billable\n", d, bucket.Days, bucket.ActualHours, bucket.BillableHours)
	}
	fmt.Fprintf(&totals, "%-15s %12s %8.2f actual %8.2f billable", "total", "", r.TotalActualHours, r.TotalBillableHours)
	if r.Rate > 0 {
		fmt.Fprintf(&totals, "\nrate %.2f, estimated cost %.2f", r.Rate, r.EstimatedCost)
	}
	b.WriteString(boxStyle.Render(totals.String()))
	b.WriteString("\n\n")

	if len(r.ResolvedEntries) == 0 {
		b.WriteString(dimStyle.Render("No resolved timesheets in range."))
		b.WriteString("\n")
	}

	end := min(m.offset+m.visible, len(r.ResolvedEntries))
	for _, e := range r.ResolvedEntries[m.offset:end] {
		hours := fmt.Sprintf("%6.2f", e.Result.ActualHours)
		if orig := e.Record.OriginalRecord; orig != nil && e.Record.IsOverride() {
			hours += warningStyle.Render(fmt.Sprintf(" (was %.2f, %s)", orig.TotalHours, e.Record.OverriddenBy))
		}
		line := fmt.Sprintf("%s  %-14s %s -> %6.2f  %s",
			e.Date, e.Result.DayType, hours, e.Result.BillableHours, dimStyle.Render(string(e.Result.AppliedRule)))
		if e.Record.Notes != "" {
			line += "  " + e.Record.Notes
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if n := len(r.MissingDates); n > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("\n%d date(s) without a timesheet", n)))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓: scroll • Esc: back • q: quit"))
	return b.String()
}
