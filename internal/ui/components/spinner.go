// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the opsdeck TUI.
package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/opsdeck-tui/internal/ui/styles"
)

// Spinner is a loading spinner with a message line.
type Spinner struct {
	spinner spinner.Model
	message string
	active  bool
}

// NewSpinner creates a spinner with ASCII-compatible frames.
func NewSpinner(theme *styles.Theme, message string) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	s.Style = theme.Spinner
	return Spinner{
		spinner: s,
		message: message,
	}
}

// Start activates the spinner and returns its tick command.
func (s *Spinner) Start() tea.Cmd {
	s.active = true
	return s.spinner.Tick
}

// Tick returns the animation tick command without changing state. Use
// it from Init when the spinner was already started at construction.
func (s Spinner) Tick() tea.Cmd {
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.active = false
}

// Active reports whether the spinner is running.
func (s Spinner) Active() bool {
	return s.active
}

// SetMessage changes the message line.
func (s *Spinner) SetMessage(message string) {
	s.message = message
}

// Update advances the animation.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.active {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner line.
func (s Spinner) View() string {
	if !s.active {
		return ""
	}
	return s.spinner.View() + " " + s.message
}
