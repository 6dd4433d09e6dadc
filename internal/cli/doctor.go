// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Setup diagnostics for the ragdesk CLI.
//
// Checks configuration, server reachability, the task pipeline and the
// history database, and prints one line per check.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/ragdesk/internal/config"
	"github.com/jeranaias/ragdesk/internal/history"
)

type checkResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
	Advice string `json:"advice,omitempty"`
}

// HandleDoctor runs the diagnostics.
func HandleDoctor(args Args) int {
	var results []checkResult

	cfg, err := loadConfig(&args)
	if err != nil {
		results = append(results, checkResult{
			Name: "config", OK: false, Detail: err.Error(),
			Advice: "Fix or delete ~/.ragdesk/config.toml",
		})
		return printChecks(args, results)
	}
	path, _ := config.ConfigPath()
	results = append(results, checkResult{Name: "config", OK: true, Detail: path})

	client := newClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Health endpoint
	health, err := client.Health(ctx)
	if err != nil {
		results = append(results, checkResult{
			Name: "server", OK: false, Detail: err.Error(),
			Advice: "Is the service running at " + cfg.Server.BaseURL + "?",
		})
		return printChecks(args, results)
	}
	results = append(results, checkResult{
		Name: "server", OK: true,
		Detail: fmt.Sprintf("%s (%s)", cfg.Server.BaseURL, health.Status),
	})

	// RAG engine
	if health.RAGAvailable {
		results = append(results, checkResult{Name: "rag engine", OK: true})
	} else {
		results = append(results, checkResult{
			Name: "rag engine", OK: false, Detail: "service reports the retrieval engine unavailable",
			Advice: "Check the server logs; answers will fail until it recovers",
		})
	}

	// Knowledge bases
	if list, err := client.ListDatasets(ctx, 1, 1); err != nil {
		results = append(results, checkResult{Name: "knowledge bases", OK: false, Detail: err.Error()})
	} else {
		results = append(results, checkResult{
			Name: "knowledge bases", OK: true,
			Detail: fmt.Sprintf("%d found", list.Total),
		})
	}

	// Retriever index
	if stats, err := client.RetrieverStats(ctx); err != nil {
		results = append(results, checkResult{
			Name: "retriever", OK: false, Detail: err.Error(),
			Advice: "The retrieval index is not answering; re-index or restart the service",
		})
	} else {
		results = append(results, checkResult{
			Name: "retriever", OK: true,
			Detail: fmt.Sprintf("%d documents indexed", stats.TotalDocuments),
		})
	}

	// History database
	if cfg.History.Enabled {
		if hp, err := cfg.HistoryPath(); err != nil {
			results = append(results, checkResult{Name: "history", OK: false, Detail: err.Error()})
		} else if store, err := history.Open(hp); err != nil {
			results = append(results, checkResult{
				Name: "history", OK: false, Detail: err.Error(),
				Advice: "Delete " + hp + " to start fresh",
			})
		} else {
			n, _ := store.Count()
			store.Close()
			results = append(results, checkResult{
				Name: "history", OK: true,
				Detail: fmt.Sprintf("%s (%d turns)", hp, n),
			})
		}
	} else {
		results = append(results, checkResult{Name: "history", OK: true, Detail: "disabled"})
	}

	return printChecks(args, results)
}

func printChecks(args Args, results []checkResult) int {
	exit := 0
	for _, r := range results {
		if !r.OK {
			exit = 1
		}
	}

	if args.JSON {
		_ = printJSON(results)
		return exit
	}

	fmt.Println(headerStyle.Render("ragdesk doctor"))
	for _, r := range results {
		mark := successStyle.Render("✓")
		if !r.OK {
			mark = errStyle.Render("✗")
		}
		line := fmt.Sprintf("%s %-16s", mark, r.Name)
		if r.Detail != "" {
			line += infoStyle.Render(" " + r.Detail)
		}
		fmt.Println(line)
		if !r.OK && r.Advice != "" {
			fmt.Println(warnStyle.Render("    → " + r.Advice))
		}
	}
	return exit
}
