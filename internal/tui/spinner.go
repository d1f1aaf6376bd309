package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// DoneMsg signals that the spinner operation has completed
type DoneMsg struct {
	Success bool
	Message string
}

// StatusMsg updates the in-flight message, e.g. with the latest revision
// status while polling
type StatusMsg struct {
	Message string
}

// SpinnerModel is the bubbletea model for a long-running operation
type SpinnerModel struct {
	spinner      spinner.Model
	message      string
	done         bool
	success      bool
	finalMessage string
}

// NewSpinnerModel creates a spinner with the given initial message
func NewSpinnerModel(message string) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return SpinnerModel{
		spinner: s,
		message: message,
	}
}

// Init starts the spinner animation
func (m SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the spinner state
func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.done = true
			m.success = false
			m.finalMessage = "Cancelled"
			return m, tea.Quit
		}

	case StatusMsg:
		m.message = msg.Message
		return m, nil

	case DoneMsg:
		m.done = true
		m.success = msg.Success
		m.finalMessage = msg.Message
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the spinner
func (m SpinnerModel) View() string {
	if m.done {
		if m.finalMessage == "" {
			return ""
		}
		if m.success {
			return SuccessStyle.Render("✓") + " " + m.finalMessage + "\n"
		}
		return ErrorStyle.Render("✗") + " " + m.finalMessage + "\n"
	}
	return m.spinner.View() + " " + m.message
}

// ShowSpinner creates a tea.Program with the spinner. The caller runs the
// long operation in a goroutine and sends StatusMsg/DoneMsg into the program.
func ShowSpinner(message string) *tea.Program {
	return tea.NewProgram(NewSpinnerModel(message))
}

// RunWithSpinner executes task while showing a spinner. task receives a
// status callback it can use for progress updates; the returned error is the
// task's own.
func RunWithSpinner(message string, task func(status func(string)) error) error {
	p := ShowSpinner(message)

	var taskErr error
	go func() {
		// Small delay so the spinner is visible for fast tasks
		time.Sleep(50 * time.Millisecond)

		taskErr = task(func(s string) {
			p.Send(StatusMsg{Message: s})
		})

		if taskErr != nil {
			p.Send(DoneMsg{Success: false, Message: fmt.Sprintf("Failed: %v", taskErr)})
		} else {
			p.Send(DoneMsg{Success: true, Message: "Complete"})
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("spinner error: %w", err)
	}
	return taskErr
}
