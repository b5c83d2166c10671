package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/christopherklint97/plantbill/internal/eph"
	"github.com/christopherklint97/plantbill/internal/runner"
)

const defaultVisible = 15

type entityListModel struct {
	result    *runner.Result
	filtered  []int // indices into result.Records
	cursor    int
	filter    textinput.Model
	filtering bool
	visible   int
}

func newEntityListModel(res *runner.Result) entityListModel {
	ti := textinput.New()
	ti.Placeholder = "Filter entities..."
	ti.Prompt = "/ "

	m := entityListModel{
		result:  res,
		filter:  ti,
		visible: defaultVisible,
	}
	m.applyFilter()
	return m
}

func (m *entityListModel) setHeight(h int) {
	// title, filter, totals and help take about ten lines
	if h > 12 {
		m.visible = h - 10
	}
}

func (m entityListModel) current() (eph.Record, bool) {
	if len(m.filtered) == 0 {
		return eph.Record{}, false
	}
	return m.result.Records[m.filtered[m.cursor]], true
}

func (m entityListModel) Update(msg tea.Msg) (entityListModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		switch keyMsg.String() {
		case "enter", "esc":
			m.filtering = false
			m.filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		prev := m.filter.Value()
		m.filter, cmd = m.filter.Update(msg)
		if m.filter.Value() != prev {
			m.applyFilter()
		}
		return m, cmd
	}

	switch keyMsg.String() {
	case "/":
		m.filtering = true
		return m, m.filter.Focus()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	}
	return m, nil
}

func (m *entityListModel) applyFilter() {
	query := strings.ToLower(m.filter.Value())
	m.filtered = m.filtered[:0]
	for i, r := range m.result.Records {
		if query == "" || strings.Contains(strings.ToLower(r.EntityID), query) {
			m.filtered = append(m.filtered, i)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

func (m entityListModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("EPH review " + m.result.Range.String()))
	b.WriteString("\n")
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	if len(m.filtered) == 0 {
		b.WriteString(dimStyle.Render("  No entities"))
		b.WriteString("\n")
	} else {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("  %-14s %5s %10s %10s %12s", "Entity", "Days", "Actual", "Billable", "Est. cost")))
		b.WriteString("\n")

		start := 0
		if m.cursor >= m.visible {
			start = m.cursor - m.visible + 1
		}
		end := min(start+m.visible, len(m.filtered))

		for vi := start; vi < end; vi++ {
			r := m.result.Records[m.filtered[vi]]
			cursor := "  "
			if vi == m.cursor {
				cursor = "> "
			}
			line := fmt.Sprintf("%s%-14s %5d %10.2f %10.2f %12.2f",
				cursor, r.EntityID, len(r.ResolvedEntries), r.TotalActualHours, r.TotalBillableHours, r.EstimatedCost)
			if vi == m.cursor {
				line = highlightStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if len(m.result.Holidays) > 0 {
		b.WriteString(dimStyle.Render("\nPublic holidays: " + strings.Join(m.result.Holidays, ", ")))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓: move • Enter: details • /: filter • q: quit"))
	return b.String()
}
