// Package tui is the interactive review screen for a calculation run.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/christopherklint97/plantbill/internal/runner"
)

type viewState int

const (
	loadingView viewState = iota
	listView
	detailView
	errorView
)

// LoadFunc runs the calculation shown by the app.
type LoadFunc func(ctx context.Context) (*runner.Result, error)

type resultMsg struct {
	result *runner.Result
	err    error
}

type App struct {
	state   viewState
	spinner spinner.Model
	list    entityListModel
	detail  detailModel
	result  *runner.Result
	errMsg  string

	load    LoadFunc
	timeout time.Duration
	height  int
}

func NewApp(load LoadFunc) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return &App{
		state:   loadingView,
		spinner: s,
		load:    load,
		timeout: 2 * time.Minute,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.run())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.height = msg.Height
		a.list.setHeight(msg.Height)
		a.detail.setHeight(msg.Height)
		return a, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case resultMsg:
		return a.handleResult(msg)
	}

	switch a.state {
	case loadingView:
		return a.updateLoading(msg)
	case listView:
		return a.updateList(msg)
	case detailView:
		return a.updateDetail(msg)
	case errorView:
		if _, ok := msg.(tea.KeyMsg); ok {
			return a, tea.Quit
		}
	}

	return a, nil
}

func (a *App) View() string {
	switch a.state {
	case loadingView:
		return a.spinner.View() + " Calculating..."
	case listView:
		return a.list.View()
	case detailView:
		return a.detail.View()
	case errorView:
		return errorStyle.Render("Error: ") + a.errMsg + "\n\n" + helpStyle.Render("Press any key to exit")
	}
	return ""
}

// GetResult returns the loaded run, nil until loading finished.
func (a *App) GetResult() *runner.Result {
	return a.result
}

func (a *App) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.spinner, cmd = a.spinner.Update(msg)
	return a, cmd
}

func (a *App) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !a.list.filtering {
		switch keyMsg.String() {
		case "q":
			return a, tea.Quit
		case "enter":
			if rec, ok := a.list.current(); ok {
				a.detail = newDetailModel(rec)
				a.detail.setHeight(a.height)
				a.state = detailView
			}
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

func (a *App) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "q":
			return a, tea.Quit
		case "esc", "backspace":
			a.state = listView
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.detail, cmd = a.detail.Update(msg)
	return a, cmd
}

func (a *App) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.state = errorView
		a.errMsg = msg.err.Error()
		return a, nil
	}

	a.result = msg.result
	a.list = newEntityListModel(msg.result)
	a.list.setHeight(a.height)
	a.state = listView
	return a, nil
}

func (a *App) run() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		res, err := a.load(ctx)
		return resultMsg{result: res, err: err}
	}
}
