// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/opsdeck-tui/internal/auth"
	"github.com/jeranaias/opsdeck-tui/internal/ui/components"
	"github.com/jeranaias/opsdeck-tui/internal/ui/styles"
)

const submitTimeout = 30 * time.Second

// loginModel is the credential form.
type loginModel struct {
	theme *styles.Theme
	flow  *auth.Flow

	identifier textinput.Model
	password   textinput.Model
	focused    int

	submitting components.Spinner
	errMsg     string
	notice     string

	width  int
	height int
}

func newLoginModel(theme *styles.Theme, flow *auth.Flow) loginModel {
	identifier := textinput.New()
	identifier.Placeholder = "username or email"
	identifier.CharLimit = 128
	identifier.Width = 32
	identifier.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 32
	// SECURITY: Never echo the password.
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return loginModel{
		theme:      theme,
		flow:       flow,
		identifier: identifier,
		password:   password,
		submitting: components.NewSpinner(theme, "Signing in"),
	}
}

// reset clears the form for a fresh sign-in, keeping a notice line.
func (m loginModel) reset(notice string) loginModel {
	fresh := newLoginModel(m.theme, m.flow)
	fresh.notice = notice
	fresh.width, fresh.height = m.width, m.height
	return fresh
}

// focusCmd returns the cursor blink command; the identifier field is
// focused from construction.
func (m loginModel) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) resize(width, height int) loginModel {
	m.width, m.height = width, height
	return m
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if m.submitting.Active() {
			// Ignore typing while an attempt is in flight.
			return m, nil
		}
		switch key.String() {
		case "tab", "shift+tab", "up", "down":
			return m.cycleFocus(), nil
		case "enter":
			if m.focused == 0 {
				return m.cycleFocus(), nil
			}
			return m.submit()
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.identifier, cmd = m.identifier.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	m.submitting, cmd = m.submitting.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m loginModel) cycleFocus() loginModel {
	m.focused = (m.focused + 1) % 2
	if m.focused == 0 {
		m.identifier.Focus()
		m.password.Blur()
	} else {
		m.identifier.Blur()
		m.password.Focus()
	}
	return m
}

// submit kicks off one login attempt against the backend.
func (m loginModel) submit() (loginModel, tea.Cmd) {
	identifier := strings.TrimSpace(m.identifier.Value())
	password := m.password.Value()
	if identifier == "" || password == "" {
		m.errMsg = "Please enter your credentials."
		return m, nil
	}

	m.errMsg = ""
	m.notice = ""
	flow := m.flow
	attempt := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		return loginResultMsg{err: flow.Submit(ctx, identifier, password)}
	}
	return m, tea.Batch(m.submitting.Start(), attempt)
}

// handleResult consumes the attempt outcome. On failure the form stays
// filled except for the password.
func (m loginModel) handleResult(msg loginResultMsg) (loginModel, tea.Cmd) {
	m.submitting.Stop()
	if msg.err != nil {
		m.errMsg = msg.err.Error()
		m.password.SetValue("")
		return m, nil
	}
	return m, nil
}

func (m loginModel) view() string {
	t := m.theme

	var b strings.Builder
	b.WriteString(t.LoginTitle.Render("opsdeck") + "\n")
	b.WriteString(t.LoginHint.Render("Admin console sign-in") + "\n\n")

	if m.notice != "" {
		b.WriteString(t.WarningStyle.Render(m.notice) + "\n\n")
	}

	b.WriteString(t.LoginLabel.Render("Login") + "\n")
	b.WriteString(m.identifier.View() + "\n\n")
	b.WriteString(t.LoginLabel.Render("Password") + "\n")
	b.WriteString(m.password.View() + "\n\n")

	switch {
	case m.submitting.Active():
		b.WriteString(m.submitting.View() + "\n")
	case m.errMsg != "":
		b.WriteString(t.LoginError.Render(m.errMsg) + "\n")
	default:
		b.WriteString(t.LoginHint.Render("Press enter to sign in") + "\n")
	}

	box := t.LoginBox.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
