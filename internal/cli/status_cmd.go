// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status_cmd.go - CLI status command for opsdeck.
//
// Command: status
//
// Examples:
//   opsdeck status             Show backend and session status
//   opsdeck status --json      Status in JSON format
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/opsdeck-tui/internal/api"
	"github.com/jeranaias/opsdeck-tui/internal/session"
)

const probeTimeout = 5 * time.Second

// HandleStatus reports the backend reachability and session state.
func HandleStatus(client *api.Client, persist *session.PersistedStore, sessions *session.Store, args Args) int {
	sessions.Initialize()
	snap := sessions.Snapshot()

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	healthErr := client.Health(ctx)

	// Surface storage trouble: a broken state directory silently turns
	// every restart into a fresh login, which is worth knowing about.
	_, storageErr := persist.Read()

	if args.JSON {
		out := map[string]interface{}{
			"base_url":      client.BaseURL(),
			"backend_ok":    healthErr == nil,
			"authenticated": snap.IsAuthenticated(),
			"session_state": snap.Status.String(),
			"storage_ok":    storageErr == nil,
		}
		if healthErr != nil {
			out["backend_error"] = healthErr.Error()
		}
		if storageErr != nil {
			out["storage_error"] = storageErr.Error()
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("Backend:  %s\n", client.BaseURL())
	if healthErr != nil {
		fmt.Printf("          unreachable (%v)\n", healthErr)
	} else {
		fmt.Println("          reachable")
	}

	if snap.IsAuthenticated() {
		fmt.Printf("Session:  signed in as %s (role: %s)\n", displayAccount(sessions), snap.Role)
	} else {
		fmt.Println("Session:  not signed in")
	}

	fmt.Printf("State:    %s\n", persist.Dir())
	if storageErr != nil {
		fmt.Printf("          degraded (%v)\n", storageErr)
	}

	if healthErr != nil {
		return 1
	}
	return 0
}
