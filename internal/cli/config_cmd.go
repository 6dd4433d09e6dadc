// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration commands for the ragdesk CLI.
//
// Subcommands: show (default), set KEY VALUE, path
package cli

import (
	"fmt"
	"strconv"

	"github.com/jeranaias/ragdesk/internal/config"
)

// HandleConfig dispatches config subcommands.
func HandleConfig(args Args) int {
	switch args.Subcommand {
	case "", "show":
		return configShow(args)
	case "set":
		return configSet(args)
	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return fail(err)
		}
		fmt.Println(path)
		return 0
	default:
		return fail(fmt.Errorf("unknown config subcommand %q", args.Subcommand))
	}
}

func configShow(args Args) int {
	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}

	if args.JSON {
		_ = printJSON(cfg)
		return 0
	}

	fmt.Println(headerStyle.Render("ragdesk configuration"))
	fmt.Printf("  server.base_url            %s\n", cfg.Server.BaseURL)
	fmt.Printf("  server.timeout_secs        %d\n", cfg.Server.TimeoutSecs)
	fmt.Printf("  server.chat_id             %s\n", cfg.Server.ChatID)
	fmt.Printf("  server.model               %s\n", cfg.Server.Model)
	fmt.Printf("  polling.interval_secs      %d\n", cfg.Polling.IntervalSecs)
	fmt.Printf("  polling.max_attempts       %d\n", cfg.Polling.MaxAttempts)
	fmt.Printf("  polling.error_backoff_secs %d\n", cfg.Polling.ErrorBackoffSecs)
	fmt.Printf("  chat.default_kb            %s\n", orNone(cfg.Chat.DefaultKB))
	fmt.Printf("  chat.legacy                %v\n", cfg.Chat.Legacy)
	fmt.Printf("  history.enabled            %v\n", cfg.History.Enabled)
	fmt.Printf("  history.path               %s\n", orNone(cfg.History.Path))
	fmt.Printf("  ui.theme                   %s\n", cfg.UI.Theme)
	fmt.Printf("  ui.markdown_width          %d\n", cfg.UI.MarkdownWidth)
	return 0
}

func configSet(args Args) int {
	pos := positional(args.Raw)
	if len(pos) < 2 {
		return fail(fmt.Errorf("usage: ragdesk config set KEY VALUE"))
	}
	key, value := pos[0], pos[1]

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}

	if err := setConfigKey(cfg, key, value); err != nil {
		return fail(err)
	}
	if err := cfg.Validate(); err != nil {
		return fail(err)
	}
	if err := cfg.Save(); err != nil {
		return fail(err)
	}
	fmt.Println(successStyle.Render("Set ") + key + " = " + value)
	return 0
}

func setConfigKey(cfg *config.Config, key, value string) error {
	switch key {
	case "server.base_url":
		cfg.Server.BaseURL = value
	case "server.timeout_secs":
		return setInt(&cfg.Server.TimeoutSecs, value)
	case "server.chat_id":
		cfg.Server.ChatID = value
	case "server.model":
		cfg.Server.Model = value
	case "polling.interval_secs":
		return setInt(&cfg.Polling.IntervalSecs, value)
	case "polling.max_attempts":
		return setInt(&cfg.Polling.MaxAttempts, value)
	case "polling.error_backoff_secs":
		return setInt(&cfg.Polling.ErrorBackoffSecs, value)
	case "chat.default_kb":
		cfg.Chat.DefaultKB = value
	case "chat.legacy":
		return setBool(&cfg.Chat.Legacy, value)
	case "history.enabled":
		return setBool(&cfg.History.Enabled, value)
	case "history.path":
		cfg.History.Path = value
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.markdown_width":
		return setInt(&cfg.UI.MarkdownWidth, value)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func setInt(dst *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("expected a number, got %q", value)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("expected true or false, got %q", value)
	}
	*dst = b
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
