// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// audit_cmd.go - CLI audit review command for opsdeck.
//
// Command: audit [show]
//
// Examples:
//   opsdeck audit                Show the last 50 auth events
//   opsdeck audit show --lines 10
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jeranaias/opsdeck-tui/internal/audit"
)

// HandleAudit prints recent auth events.
func HandleAudit(store *audit.Store, args Args) int {
	if store == nil {
		fmt.Fprintln(os.Stderr, "Audit logging is disabled (audit.enabled = false).")
		return 1
	}

	events, err := store.Recent(args.Lines)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read audit log: %v\n", err)
		return 1
	}

	if args.JSON {
		type jsonEvent struct {
			Time    string `json:"time"`
			Type    string `json:"type"`
			Actor   string `json:"actor"`
			Success bool   `json:"success"`
			Detail  string `json:"detail,omitempty"`
		}
		out := make([]jsonEvent, 0, len(events))
		for _, e := range events {
			out = append(out, jsonEvent{
				Time:    e.Time.Format("2006-01-02T15:04:05Z07:00"),
				Type:    e.Type,
				Actor:   e.Actor,
				Success: e.Success,
				Detail:  e.Detail,
			})
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	if len(events) == 0 {
		fmt.Println("No auth events recorded.")
		return 0
	}
	for _, e := range events {
		fmt.Println(e.String())
	}
	return 0
}
