// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - CLI configuration command for opsdeck.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Show the current configuration
//   get <key>           Print one value
//   set <key> <value>   Set one value and save
//   keys, list          List settable keys
//
// Examples:
//   opsdeck config                       Show configuration
//   opsdeck config get ui.theme          Print the theme
//   opsdeck config set ui.theme light    Switch to the light theme
package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/opsdeck-tui/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args) int {
	cfg := config.Get()

	switch args.Subcommand {
	case "show", "":
		if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Could not render config: %v\n", err)
			return 1
		}
		return 0

	case "get":
		if args.ConfigKey == "" {
			fmt.Fprintln(os.Stderr, "Usage: opsdeck config get <key>")
			return 1
		}
		value, err := cfg.GetKey(args.ConfigKey)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return 1
		}
		fmt.Println(value)
		return 0

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			fmt.Fprintln(os.Stderr, "Usage: opsdeck config set <key> <value>")
			return 1
		}
		if err := cfg.SetKey(args.ConfigKey, args.ConfigVal); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return 1
		}
		if err := config.Save(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Could not save config: %v\n", err)
			return 1
		}
		fmt.Printf("%s = %s\n", args.ConfigKey, args.ConfigVal)
		return 0

	case "keys", "list":
		for _, key := range config.GetAllKeys() {
			fmt.Println(key)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args.Subcommand)
		return 1
	}
}
