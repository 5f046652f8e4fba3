// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/opsdeck-tui/internal/api"
	"github.com/jeranaias/opsdeck-tui/internal/auth"
	"github.com/jeranaias/opsdeck-tui/internal/session"
	"github.com/jeranaias/opsdeck-tui/internal/ui/components"
	"github.com/jeranaias/opsdeck-tui/internal/ui/styles"
)

// sessionEndedNotice is shown on the login form after a forced logout.
const sessionEndedNotice = "Your session has ended. Please sign in again."

// Gate is the root model. It routes between the loading, login, and
// dashboard views based on the session state, and only that state: the
// login view is unreachable until hydration has ruled out a stored
// session, so an authenticated user never sees a login flash at
// startup.
type Gate struct {
	theme    *styles.Theme
	sessions *session.Store

	loading   components.Spinner
	login     loginModel
	dashboard dashboardModel

	width  int
	height int
}

// NewGate creates the root model. The loading spinner is active from
// construction: Init runs on a value copy, so any state it flips would
// be lost before the first render.
func NewGate(theme *styles.Theme, sessions *session.Store, flow *auth.Flow, client *api.Client) Gate {
	loading := components.NewSpinner(theme, "Restoring session")
	loading.Start()
	return Gate{
		theme:     theme,
		sessions:  sessions,
		loading:   loading,
		login:     newLoginModel(theme, flow),
		dashboard: newDashboardModel(theme, sessions, client),
	}
}

// Init starts session hydration in the background.
func (g Gate) Init() tea.Cmd {
	hydrate := func() tea.Msg {
		g.sessions.Initialize()
		return SessionReadyMsg{}
	}
	return tea.Batch(g.loading.Tick(), hydrate)
}

// Update implements tea.Model.
func (g Gate) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		g.width, g.height = msg.Width, msg.Height
		g.theme.SetSize(msg.Width, msg.Height)
		g.login = g.login.resize(msg.Width, msg.Height)
		g.dashboard = g.dashboard.resize(msg.Width, msg.Height)
		return g, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return g, tea.Quit
		}

	case SessionReadyMsg:
		g.loading.Stop()
		if g.sessions.Status() == session.StatusAuthenticated {
			return g, g.dashboard.enterCmd()
		}
		return g, g.login.focusCmd()

	case ForcedLogoutMsg:
		// The session store is already cleared; reset the login form
		// and explain why the user is looking at it.
		g.login = g.login.reset(sessionEndedNotice)
		return g, g.login.focusCmd()

	case loginResultMsg:
		var cmd tea.Cmd
		g.login, cmd = g.login.handleResult(msg)
		if msg.err == nil {
			return g, tea.Batch(cmd, g.dashboard.enterCmd())
		}
		return g, cmd
	}

	// Route everything else to whichever view is live.
	switch g.sessions.Status() {
	case session.StatusInitializing:
		var cmd tea.Cmd
		g.loading, cmd = g.loading.Update(msg)
		return g, cmd
	case session.StatusAuthenticated:
		var cmd tea.Cmd
		g.dashboard, cmd = g.dashboard.update(msg)
		return g, cmd
	default:
		var cmd tea.Cmd
		g.login, cmd = g.login.update(msg)
		return g, cmd
	}
}

// View implements tea.Model.
func (g Gate) View() string {
	switch g.sessions.Status() {
	case session.StatusInitializing:
		return g.theme.Container.Render(g.loading.View())
	case session.StatusAuthenticated:
		return g.dashboard.view()
	default:
		return g.login.view()
	}
}
