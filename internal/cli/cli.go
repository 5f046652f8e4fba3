// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for opsdeck.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdStatus
	CmdConfig
	CmdAudit
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON bool

	// Command-specific
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	Lines      int

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `opsdeck - terminal console for server administration

Opsdeck signs you in against the admin backend and keeps the session
on disk so it survives restarts. Only accounts with the admin role can
use it.

Usage:
  opsdeck                    Start the console (default)
  opsdeck login              Sign in from the command line
  opsdeck logout             End the current session
  opsdeck whoami             Show the signed-in account
  opsdeck status, s          Show backend and session status
  opsdeck config [show|get|set|keys]
                             Configuration management
  opsdeck audit [show]       Show recent auth events
    --lines N                Show last N events (default: 50)
  opsdeck version            Show version information
  opsdeck help               Show this help

Global flags:
  --json                     Output in JSON format where supported

Configuration:
  ~/.opsdeck/config.toml     Primary configuration file
  OPSDECK_MODE               Override server.mode (auto/development/production)
  OPSDECK_DEV_URL            Override server.dev_url
  OPSDECK_PROD_URL           Override server.prod_url
  OPSDECK_BASE_URL           Override server.legacy_base_url
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	args := os.Args[1:]
	remaining, parsed := parseGlobalFlags(args)

	// No arguments: launch the TUI.
	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "login", "signin":
		return CmdLogin, parsed

	case "logout", "signout":
		return CmdLogout, parsed

	case "whoami", "me":
		return CmdWhoami, parsed

	case "status", "s":
		return CmdStatus, parsed

	case "config":
		parseConfigArgs(&parsed, remaining)
		return CmdConfig, parsed

	case "audit":
		parseAuditArgs(&parsed, remaining)
		return CmdAudit, parsed

	case "version", "-v", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, parsed
	}
}

func parseGlobalFlags(args []string) ([]string, Args) {
	var parsed Args
	parsed.Lines = 50

	var remaining []string
	for _, arg := range args {
		switch arg {
		case "--json":
			parsed.JSON = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsed
}

func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) == 0 {
		args.Subcommand = "show"
		return
	}
	args.Subcommand = strings.ToLower(remaining[0])
	if len(remaining) > 1 {
		args.ConfigKey = remaining[1]
	}
	if len(remaining) > 2 {
		args.ConfigVal = remaining[2]
	}
}

func parseAuditArgs(args *Args, remaining []string) {
	args.Subcommand = "show"
	for i := 0; i < len(remaining); i++ {
		switch remaining[i] {
		case "show":
			args.Subcommand = "show"
		case "--lines":
			if i+1 < len(remaining) {
				if n, err := strconv.Atoi(remaining[i+1]); err == nil && n > 0 {
					args.Lines = n
				}
				i++
			}
		}
	}
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("opsdeck %s\n", Version)
	fmt.Printf("  commit:  %s\n", GitCommit)
	fmt.Printf("  built:   %s\n", BuildDate)
	fmt.Printf("  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
