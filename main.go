// opsdeck - terminal console for server administration.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/opsdeck-tui/internal/api"
	"github.com/jeranaias/opsdeck-tui/internal/audit"
	"github.com/jeranaias/opsdeck-tui/internal/auth"
	"github.com/jeranaias/opsdeck-tui/internal/cli"
	"github.com/jeranaias/opsdeck-tui/internal/config"
	"github.com/jeranaias/opsdeck-tui/internal/session"
	"github.com/jeranaias/opsdeck-tui/internal/ui"
	"github.com/jeranaias/opsdeck-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"

	// BuildMode pins the deployment environment at build time
	// ("development" or "production"). Empty means the configured
	// server.mode decides.
	BuildMode = ""
)

// Global program reference so the HTTP client's 401 handler can reach
// the running UI.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

// app bundles the wired subsystems shared by the TUI and the CLI
// commands.
type app struct {
	cfg      *config.Config
	persist  *session.PersistedStore
	sessions *session.Store
	client   *api.Client
	flow     *auth.Flow
	audit    *audit.Store
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	case cli.CmdConfig:
		os.Exit(cli.HandleConfig(args))
	}

	a, err := wire()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	switch cmd {
	case cli.CmdTUI:
		runTUI(a)
	case cli.CmdLogin:
		os.Exit(cli.HandleLogin(a.flow, a.sessions))
	case cli.CmdLogout:
		os.Exit(cli.HandleLogout(a.sessions))
	case cli.CmdWhoami:
		os.Exit(cli.HandleWhoami(a.sessions, args))
	case cli.CmdStatus:
		os.Exit(cli.HandleStatus(a.client, a.persist, a.sessions, args))
	case cli.CmdAudit:
		os.Exit(cli.HandleAudit(a.audit, args))
	}
}

// wire builds the full dependency graph: config, storage, audit,
// session store, HTTP client, and login flow.
func wire() (*app, error) {
	cfg := config.Get()

	stateDir, err := session.DefaultStateDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	persist := session.NewPersistedStore(stateDir)

	a := &app{cfg: cfg, persist: persist}

	if cfg.Audit.Enabled {
		path := cfg.Audit.DatabasePath
		if path == "" {
			path, err = audit.DefaultDatabasePath()
			if err != nil {
				return nil, err
			}
		}
		store, err := audit.Open(path)
		if err != nil {
			// Audit trouble must not lock the operator out.
			log.Printf("audit: disabled: %v", err)
		} else {
			a.audit = store
		}
	}

	var opts []session.StoreOption
	if a.audit != nil {
		auditStore := a.audit
		opts = append(opts, session.WithAudit(func(event, actor string, success bool, detail string) {
			auditStore.Record(event, actor, success, detail)
		}))
	}
	a.sessions = session.NewStore(persist, opts...)

	// The base URL is resolved once at startup. Config edits to the
	// server section take effect on the next launch.
	hostname, _ := os.Hostname()
	env := cfg.Environment(hostname)
	switch BuildMode {
	case "development":
		env.DevelopmentBuild, env.ProductionBuild = true, false
	case "production":
		env.DevelopmentBuild, env.ProductionBuild = false, true
	}
	baseURL := api.Resolve(env)

	a.client = api.NewClient(baseURL,
		api.WithTokenSource(persist),
		api.WithTimeout(time.Duration(cfg.Server.TimeoutSecs)*time.Second),
		api.WithUnauthorizedHandler(
			a.sessions.Logout,
			func() {
				programMu.Lock()
				p := programRef
				programMu.Unlock()
				if p != nil {
					p.Send(ui.ForcedLogoutMsg{})
				}
			},
		),
	)
	a.flow = auth.NewFlow(a.client, a.sessions)
	return a, nil
}

func (a *app) close() {
	if a.audit != nil {
		a.audit.Close()
	}
}

func runTUI(a *app) {
	theme := styles.NewTheme(a.cfg.UI.Theme)
	gate := ui.NewGate(theme, a.sessions, a.flow, a.client)

	p := tea.NewProgram(gate, tea.WithAltScreen())
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Live-reload UI preferences while the console is open. The views
	// share the theme pointer, so rebuilding it and forcing a redraw is
	// enough; server settings still wait for a restart.
	watcher, err := config.NewWatcher(func(cfg *config.Config) {
		theme.SetMode(cfg.UI.Theme)
		p.Send(tea.WindowSizeMsg{Width: theme.Width, Height: theme.Height})
	})
	if err == nil {
		if err := watcher.Watch(); err != nil {
			log.Printf("config: watch disabled: %v", err)
		}
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
