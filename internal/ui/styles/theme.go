// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the opsdeck TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Core palette.
var (
	Cyan          = lipgloss.Color("#00D7FF")
	Purple        = lipgloss.Color("#AF87FF")
	Green         = lipgloss.Color("#5FD787")
	Red           = lipgloss.Color("#FF5F5F")
	Yellow        = lipgloss.Color("#FFD75F")
	TextPrimary   = lipgloss.Color("#EEEEEE")
	TextSecondary = lipgloss.Color("#8A8A8A")
	SurfaceDim    = lipgloss.Color("#1C1C1C")
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER AND STATUS BAR STYLES
	// ==========================================================================

	Header       lipgloss.Style
	HeaderTitle  lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// LOGIN FORM STYLES
	// ==========================================================================

	LoginBox    lipgloss.Style
	LoginTitle  lipgloss.Style
	LoginLabel  lipgloss.Style
	LoginError  lipgloss.Style
	LoginHint   lipgloss.Style
	LoginButton lipgloss.Style

	// ==========================================================================
	// DASHBOARD STYLES
	// ==========================================================================

	PanelBox   lipgloss.Style
	PanelTitle lipgloss.Style
	FieldLabel lipgloss.Style
	FieldValue lipgloss.Style

	// ==========================================================================
	// STATUS INDICATOR STYLES
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
	Spinner      lipgloss.Style
}

// NewTheme creates a new theme with all styles configured. mode is the
// configured theme name: "dark", "light", or "auto".
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.SetMode(mode)
	return t
}

// SetMode switches the theme mode and rebuilds every style. Views hold
// the Theme by pointer, so a live config reload takes effect on the
// next render.
func (t *Theme) SetMode(mode string) {
	isDark := true
	switch mode {
	case "light":
		isDark = false
	case "auto":
		isDark = termenv.HasDarkBackground()
	}
	t.IsDark = isDark
	t.initStyles()
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	text := TextPrimary
	if !t.IsDark {
		text = lipgloss.Color("#1C1C1C")
	}

	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.LoginBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 3)

	t.LoginTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.LoginLabel = lipgloss.NewStyle().
		Foreground(text)

	t.LoginError = lipgloss.NewStyle().
		Foreground(Red)

	t.LoginHint = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.LoginButton = lipgloss.NewStyle().
		Bold(true).
		Foreground(Green)

	t.PanelBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 2)

	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.FieldLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.FieldValue = lipgloss.NewStyle().
		Foreground(text)

	t.SuccessStyle = lipgloss.NewStyle().Foreground(Green)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(Red)
	t.WarningStyle = lipgloss.NewStyle().Foreground(Yellow)
	t.InfoStyle = lipgloss.NewStyle().Foreground(Cyan)
	t.Spinner = lipgloss.NewStyle().Foreground(Purple)
}

// SetSize records the current terminal dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
