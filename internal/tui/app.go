// Package tui provides the terminal user interface for watching a
// swarm execution live.
package tui

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/hive/internal/coordinator"
	"github.com/ShayCichocki/hive/pkg/models"
)

// EventMsg wraps a coordinator event for the TUI.
type EventMsg struct {
	Event coordinator.Event
}

// ResultMsg signals that the execution has completed.
type ResultMsg struct {
	Result models.AggregateResult
	Err    error
}

// subtaskRow tracks the display state of one subtask.
type subtaskRow struct {
	position int
	executor string
	running  bool
	done     bool
	success  bool
	message  string
}

// App is the bubbletea model for a single swarm execution.
type App struct {
	events <-chan coordinator.Event

	spinner     spinner.Model
	executionID string
	phase       coordinator.Phase
	rows        map[int]*subtaskRow
	logs        []string

	done    bool
	success bool
	err     error
	width   int
}

// New creates an App consuming the given coordinator event stream.
func New(events <-chan coordinator.Event) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return &App{
		events:  events,
		spinner: sp,
		phase:   coordinator.PhaseIdle,
		rows:    make(map[int]*subtaskRow),
		width:   80,
	}
}

// waitForEvent blocks on the event stream and delivers the next event.
func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-a.events
		if !ok {
			return nil
		}
		return EventMsg{Event: event}
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.waitForEvent())
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case EventMsg:
		a.apply(msg.Event)
		return a, a.waitForEvent()

	case ResultMsg:
		a.done = true
		a.err = msg.Err
		a.success = msg.Err == nil && msg.Result.Success
		return a, tea.Quit
	}

	return a, nil
}

// apply folds one coordinator event into the display state.
func (a *App) apply(event coordinator.Event) {
	if a.executionID == "" {
		a.executionID = event.ExecutionID
	}

	switch event.Type {
	case coordinator.EventPhaseChanged:
		a.phase = event.Phase

	case coordinator.EventSubtaskStarted:
		a.rows[event.Position] = &subtaskRow{
			position: event.Position,
			executor: event.Executor,
			running:  true,
		}

	case coordinator.EventSubtaskFinished:
		row, ok := a.rows[event.Position]
		if !ok {
			row = &subtaskRow{position: event.Position, executor: event.Executor}
			a.rows[event.Position] = row
		}
		row.running = false
		row.done = true
		row.success = event.Success
		row.message = event.Message

	case coordinator.EventDispatchFailed:
		a.logs = append(a.logs, "dispatch failed: "+event.Message)

	case coordinator.EventExecutionDone:
		a.success = event.Success

	case coordinator.EventTraceWritten:
		a.logs = append(a.logs, "trace recorded")
	}
}

// View implements tea.Model.
func (a *App) View() string {
	var out string

	title := "hive"
	if a.executionID != "" {
		title += " · execution " + a.executionID
	}
	out += titleStyle.Render(title) + "\n\n"

	if a.done {
		if a.err != nil {
			out += failStyle.Render("✗ execution error: "+a.err.Error()) + "\n"
		} else if a.success {
			out += okStyle.Render("✓ execution succeeded") + "\n"
		} else {
			out += failStyle.Render("✗ execution failed") + "\n"
		}
	} else {
		out += fmt.Sprintf("%s %s\n", a.spinner.View(), phaseStyle.Render(string(a.phase)))
	}
	out += "\n"

	positions := make([]int, 0, len(a.rows))
	for pos := range a.rows {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	for _, pos := range positions {
		row := a.rows[pos]
		switch {
		case row.running:
			out += fmt.Sprintf("  %s subtask %d → %s\n", a.spinner.View(), row.position, row.executor)
		case row.done && row.success:
			out += okStyle.Render(fmt.Sprintf("  ✓ subtask %d → %s", row.position, row.executor)) + "\n"
		case row.done:
			line := fmt.Sprintf("  ✗ subtask %d → %s", row.position, row.executor)
			if row.message != "" {
				line += " (" + row.message + ")"
			}
			out += failStyle.Render(line) + "\n"
		}
	}

	for _, line := range a.logs {
		out += dimStyle.Render("  "+line) + "\n"
	}

	out += "\n" + dimStyle.Render("q to quit") + "\n"
	return out
}
