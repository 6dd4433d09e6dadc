// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Saved turn browsing for the ragdesk CLI.
//
// Subcommands: list (default), show ID, search TEXT, clear --confirm
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/ragdesk/internal/history"
	"github.com/jeranaias/ragdesk/internal/util"
)

const defaultHistoryLimit = 20

// HandleHistory dispatches history subcommands.
func HandleHistory(args Args) int {
	cfg, err := loadConfig(&args)
	if err != nil {
		return fail(err)
	}
	if !cfg.History.Enabled {
		return fail(fmt.Errorf("history is disabled in the configuration"))
	}

	path, err := cfg.HistoryPath()
	if err != nil {
		return fail(err)
	}
	store, err := history.Open(path)
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	switch args.Subcommand {
	case "", "list", "ls":
		limit := defaultHistoryLimit
		if v, ok := args.Options["limit"]; ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		entries, err := store.List(limit)
		if err != nil {
			return fail(err)
		}
		return printEntries(args, entries)

	case "show":
		pos := positional(args.Raw)
		if len(pos) == 0 {
			return fail(fmt.Errorf("usage: ragdesk history show ID"))
		}
		id, err := strconv.ParseInt(pos[0], 10, 64)
		if err != nil {
			return fail(fmt.Errorf("invalid id %q", pos[0]))
		}
		entry, err := store.Get(id)
		if err != nil {
			return fail(err)
		}
		if args.JSON {
			_ = printJSON(entry)
			return 0
		}
		fmt.Println(headerStyle.Render(fmt.Sprintf("#%d  %s", entry.ID, entry.CreatedAt.Format("2006-01-02 15:04"))))
		if entry.KBName != "" {
			fmt.Println(infoStyle.Render("Knowledge base: " + entry.KBName))
		}
		fmt.Println()
		fmt.Println(promptStyle.Render("Q: ") + entry.Question)
		fmt.Println()
		fmt.Print(markdownOut(cfg, entry.Answer))
		return 0

	case "search":
		query := strings.Join(positional(args.Raw), " ")
		if query == "" {
			return fail(fmt.Errorf("usage: ragdesk history search TEXT"))
		}
		entries, err := store.Search(query, defaultHistoryLimit)
		if err != nil {
			return fail(err)
		}
		return printEntries(args, entries)

	case "clear":
		if !confirmed(args, "Delete all saved turns?") {
			fmt.Println(infoStyle.Render("Aborted."))
			return 0
		}
		if err := store.Prune(0); err != nil {
			return fail(err)
		}
		fmt.Println(successStyle.Render("History cleared."))
		return 0

	default:
		return fail(fmt.Errorf("unknown history subcommand %q", args.Subcommand))
	}
}

func printEntries(args Args, entries []history.Entry) int {
	if args.JSON {
		_ = printJSON(entries)
		return 0
	}
	if len(entries) == 0 {
		fmt.Println(infoStyle.Render("No saved turns."))
		return 0
	}
	for _, e := range entries {
		marker := successStyle.Render("✓")
		if e.Status == history.StatusFailed {
			marker = errStyle.Render("✗")
		}
		// Fullwidth punctuation folds to ASCII so previews keep a
		// predictable width in the listing.
		preview := util.NarrowPunct(util.FirstLine(e.Question))
		fmt.Printf("%s #%-5d %s  %s\n",
			marker, e.ID,
			infoStyle.Render(e.CreatedAt.Format("2006-01-02 15:04")),
			util.TruncateWidth(preview, 64))
	}
	return 0
}
