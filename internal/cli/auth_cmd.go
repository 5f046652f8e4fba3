// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - CLI commands for session management in opsdeck.
//
// Command: login | logout | whoami
//
// Examples:
//   opsdeck login              Sign in from the terminal
//   opsdeck logout             End the current session
//   opsdeck whoami             Show the signed-in account
//   opsdeck whoami --json      Account details in JSON format
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/jeranaias/opsdeck-tui/internal/auth"
	"github.com/jeranaias/opsdeck-tui/internal/session"
)

const loginTimeout = 30 * time.Second

// HandleLogin prompts for credentials and signs in.
func HandleLogin(flow *auth.Flow, sessions *session.Store) int {
	sessions.Initialize()
	if sessions.IsAuthenticated() {
		fmt.Println("Already signed in. Run 'opsdeck logout' first to switch accounts.")
		return 0
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	identifier, err := line.Prompt("Login (username or email): ")
	line.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Aborted.")
		return 1
	}

	// SECURITY: Read the password without echo.
	fmt.Print("Password: ")
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read password: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()
	if err := flow.Submit(ctx, identifier, string(passBytes)); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	fmt.Printf("Signed in as %s.\n", displayAccount(sessions))
	return 0
}

// HandleLogout ends the current session.
func HandleLogout(sessions *session.Store) int {
	sessions.Initialize()
	if !sessions.Logout() {
		fmt.Println("Not signed in.")
		return 0
	}
	fmt.Println("Signed out.")
	return 0
}

// HandleWhoami shows the signed-in account.
func HandleWhoami(sessions *session.Store, args Args) int {
	sessions.Initialize()
	snap := sessions.Snapshot()

	if args.JSON {
		out := map[string]interface{}{
			"authenticated": snap.IsAuthenticated(),
		}
		if snap.IsAuthenticated() {
			out["role"] = snap.Role
			out["name"] = snap.User.DisplayName()
			out["email"] = snap.User.Email()
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	if !snap.IsAuthenticated() {
		fmt.Println("Not signed in. Run 'opsdeck login'.")
		return 1
	}
	fmt.Printf("Signed in as %s (role: %s)\n", displayAccount(sessions), snap.Role)
	return 0
}

func displayAccount(sessions *session.Store) string {
	snap := sessions.Snapshot()
	if name := snap.User.DisplayName(); name != "" {
		return name
	}
	return "admin"
}
