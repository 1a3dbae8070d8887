// Package tui is the interactive review prompt for runs the quality gate
// resolves to REVIEW.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Review runs the interactive prompt and reports whether the reviewer
// accepted the run.
func Review(data ReviewData) (bool, error) {
	m := NewModel(data)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return false, fmt.Errorf("error running review TUI: %w", err)
	}
	if fm, ok := final.(Model); ok {
		return fm.Result() == VerdictAccepted, nil
	}
	return false, nil
}
