// ragdesk - terminal client for a local document Q&A service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragdesk/internal/api"
	"github.com/jeranaias/ragdesk/internal/cli"
	"github.com/jeranaias/ragdesk/internal/config"
	"github.com/jeranaias/ragdesk/internal/conversation"
	"github.com/jeranaias/ragdesk/internal/history"
	"github.com/jeranaias/ragdesk/internal/ui/app"
	"github.com/jeranaias/ragdesk/internal/ui/styles"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		os.Exit(runTUI(args))
	case cli.CmdAsk:
		os.Exit(cli.HandleAsk(args))
	case cli.CmdChat:
		os.Exit(cli.HandleChat(args))
	case cli.CmdStatus:
		os.Exit(cli.HandleStatus(args))
	case cli.CmdKB:
		os.Exit(cli.HandleKB(args))
	case cli.CmdUpload:
		os.Exit(cli.HandleUpload(args))
	case cli.CmdHistory:
		os.Exit(cli.HandleHistory(args))
	case cli.CmdConfig:
		os.Exit(cli.HandleConfig(args))
	case cli.CmdDoctor:
		os.Exit(cli.HandleDoctor(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

// runTUI assembles the application and hands control to Bubble Tea.
func runTUI(args cli.Args) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ragdesk: %v\n", err)
		return 1
	}
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
	}
	config.SetGlobal(cfg)

	styles.ApplyTheme(cfg.UI.Theme)

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL: cfg.Server.BaseURL,
		Timeout: cfg.RequestTimeout(),
		ChatID:  cfg.Server.ChatID,
		Model:   cfg.Server.Model,
	})

	policy := conversation.PollPolicy{
		Interval:     cfg.PollInterval(),
		MaxAttempts:  cfg.Polling.MaxAttempts,
		ErrorBackoff: cfg.PollErrorBackoff(),
	}
	runner := conversation.NewRunner(client, conversation.NewController(), policy)
	defer runner.Close()

	var store *history.Store
	if cfg.History.Enabled {
		if path, err := cfg.HistoryPath(); err == nil {
			if s, err := history.Open(path); err == nil {
				store = s
				defer store.Close()
			}
		}
		// A broken history db degrades to no persistence.
	}

	// Pick up config edits while the TUI is running.
	if watcher, err := config.NewWatcher(); err == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		} else {
			watcher.Close()
		}
	}

	program := tea.NewProgram(
		app.New(cfg, client, runner, store),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ragdesk: %v\n", err)
		return 1
	}
	return 0
}
