// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/opsdeck-tui/internal/api"
	"github.com/jeranaias/opsdeck-tui/internal/session"
	"github.com/jeranaias/opsdeck-tui/internal/ui/styles"
	"github.com/jeranaias/opsdeck-tui/internal/util"
)

const requestTimeout = 15 * time.Second

// helpText is rendered with glamour when the user presses ?.
const helpText = `# opsdeck keys

| Key | Action |
|-----|--------|
| r   | Refresh your profile from the server |
| p   | Probe backend health |
| ?   | Toggle this help |
| l   | Sign out |
| q   | Quit |
`

// dashboardModel is the authenticated admin view.
type dashboardModel struct {
	theme    *styles.Theme
	sessions *session.Store
	client   *api.Client

	status   string
	statusOK bool
	showHelp bool
	help     string

	width  int
	height int
}

func newDashboardModel(theme *styles.Theme, sessions *session.Store, client *api.Client) dashboardModel {
	return dashboardModel{
		theme:    theme,
		sessions: sessions,
		client:   client,
		status:   "Connected",
		statusOK: true,
	}
}

// enterCmd runs when the dashboard becomes the live view: probe the
// backend once so the status line is honest from the start.
func (m dashboardModel) enterCmd() tea.Cmd {
	return m.probeHealth()
}

func (m dashboardModel) resize(width, height int) dashboardModel {
	m.width, m.height = width, height
	m.help = "" // re-render help at the new width on next toggle
	return m
}

func (m dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "l":
			// Local sign-out; the gate lands on the login view because
			// the session state changed.
			m.sessions.Logout()
			return m, nil
		case "r":
			m.status = "Refreshing profile..."
			m.statusOK = true
			return m, m.refreshProfile()
		case "p":
			m.status = "Probing backend..."
			m.statusOK = true
			return m, m.probeHealth()
		case "?":
			m.showHelp = !m.showHelp
			if m.showHelp && m.help == "" {
				m.help = m.renderHelp()
			}
			return m, nil
		}

	case profileRefreshedMsg:
		if msg.err != nil {
			m.status = "Profile refresh failed: " + msg.err.Error()
			m.statusOK = false
			return m, nil
		}
		// The session store owns the persisted copy.
		m.sessions.UpdateUser(msg.user)
		m.status = "Profile refreshed"
		m.statusOK = true
		return m, nil

	case healthMsg:
		if msg.err != nil {
			m.status = "Backend unreachable: " + msg.err.Error()
			m.statusOK = false
		} else {
			m.status = "Connected"
			m.statusOK = true
		}
		return m, nil
	}

	return m, nil
}

// refreshProfile fetches the current profile and routes it through the
// session store.
func (m dashboardModel) refreshProfile() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var user session.Profile
		if err := client.Get(ctx, "/profile", &user); err != nil {
			return profileRefreshedMsg{err: err}
		}
		return profileRefreshedMsg{user: user}
	}
}

func (m dashboardModel) probeHealth() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return healthMsg{err: client.Health(ctx)}
	}
}

func (m dashboardModel) renderHelp() string {
	width := m.width - 4
	if width < 20 || width > 100 {
		width = 72
	}
	style := "dark"
	if !m.theme.IsDark {
		style = "light"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpText
	}
	out, err := r.Render(helpText)
	if err != nil {
		return helpText
	}
	return out
}

func (m dashboardModel) view() string {
	t := m.theme
	snap := m.sessions.Snapshot()

	var b strings.Builder
	b.WriteString(t.Header.Render("opsdeck · admin console") + "\n\n")

	name := snap.User.DisplayName()
	if name == "" {
		name = "(profile unavailable)"
	}
	// Long names and emails must not blow up the panel width.
	name = util.TruncateWidth(name, 48)
	email := util.TruncateWidth(snap.User.Email(), 48)
	profile := fmt.Sprintf("%s %s\n%s %s\n%s %s",
		t.FieldLabel.Render(util.PadRight("Signed in as:", 14)), t.FieldValue.Render(name),
		t.FieldLabel.Render(util.PadRight("Email:", 14)), t.FieldValue.Render(email),
		t.FieldLabel.Render(util.PadRight("Role:", 14)), t.FieldValue.Render(snap.Role),
	)
	b.WriteString(t.PanelBox.Render(t.PanelTitle.Render("Session")+"\n"+profile) + "\n\n")

	statusStyle := t.SuccessStyle
	if !m.statusOK {
		statusStyle = t.ErrorStyle
	}
	b.WriteString(t.PanelBox.Render(t.PanelTitle.Render("Backend")+"\n"+
		t.FieldLabel.Render("Base URL: ")+t.FieldValue.Render(m.client.BaseURL())+"\n"+
		t.FieldLabel.Render("Status: ")+statusStyle.Render(m.status)) + "\n\n")

	if m.showHelp {
		b.WriteString(m.help + "\n")
	}

	b.WriteString(t.StatusBar.Render(
		t.ShortcutKey.Render("r") + t.ShortcutDesc.Render(" refresh  ") +
			t.ShortcutKey.Render("p") + t.ShortcutDesc.Render(" probe  ") +
			t.ShortcutKey.Render("?") + t.ShortcutDesc.Render(" help  ") +
			t.ShortcutKey.Render("l") + t.ShortcutDesc.Render(" sign out  ") +
			t.ShortcutKey.Render("q") + t.ShortcutDesc.Render(" quit")))

	return t.Container.Render(b.String())
}
