// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// kb_cmd.go - Knowledge base management commands for the ragdesk CLI.
//
// Subcommands: list (default), create NAME, delete NAME, docs NAME, query TEXT
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/ragdesk/internal/api"
	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/util"
)

const kbRequestTimeout = 30 * time.Second

// HandleKB dispatches kb subcommands.
func HandleKB(args Args) int {
	cfg, err := loadConfig(&args)
	if err != nil {
		return fail(err)
	}
	client := newClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), kbRequestTimeout)
	defer cancel()

	switch args.Subcommand {
	case "", "list", "ls":
		return kbList(ctx, client, args)

	case "create", "new":
		name := strings.Join(positional(args.Raw), " ")
		if name == "" {
			return fail(fmt.Errorf("usage: ragdesk kb create NAME"))
		}
		kb, err := client.CreateDataset(ctx, name, args.Options["description"])
		if err != nil {
			return fail(err)
		}
		fmt.Println(successStyle.Render("Created ") + kb.Name + infoStyle.Render(" ("+kb.ID+")"))
		return 0

	case "delete", "rm":
		ref := strings.Join(positional(args.Raw), " ")
		if ref == "" {
			return fail(fmt.Errorf("usage: ragdesk kb delete NAME"))
		}
		kb, err := resolveKB(ctx, client, ref)
		if err != nil {
			return fail(err)
		}
		if !confirmed(args, fmt.Sprintf("Delete %q and all its documents?", kb.Name)) {
			fmt.Println(infoStyle.Render("Aborted."))
			return 0
		}
		if err := client.DeleteDataset(ctx, kb.ID); err != nil {
			return fail(err)
		}
		fmt.Println(successStyle.Render("Deleted ") + kb.Name)
		return 0

	case "docs", "documents":
		ref := strings.Join(positional(args.Raw), " ")
		if ref == "" {
			return fail(fmt.Errorf("usage: ragdesk kb docs NAME"))
		}
		return kbDocs(ctx, client, args, ref)

	case "query", "q":
		query := strings.Join(positional(args.Raw), " ")
		if query == "" {
			return fail(fmt.Errorf("usage: ragdesk kb query TEXT"))
		}
		return kbQuery(ctx, client, args, query)

	default:
		return fail(fmt.Errorf("unknown kb subcommand %q", args.Subcommand))
	}
}

func kbList(ctx context.Context, client *api.Client, args Args) int {
	resp, err := client.ListDatasets(ctx, 1, 200)
	if err != nil {
		return fail(err)
	}

	if args.JSON {
		_ = printJSON(resp.Data)
		return 0
	}

	if len(resp.Data) == 0 {
		fmt.Println(infoStyle.Render("No knowledge bases. Create one with: ragdesk kb create NAME"))
		return 0
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Knowledge bases (%d)", resp.Total)))
	fmt.Printf("  %s %6s %8s  %s\n", util.PadRight("NAME", 30), "DOCS", "CHUNKS", "STATUS")
	for _, d := range resp.Data {
		kb := model.KnowledgeBaseFromDataset(d)
		// PadRight is display-width aware; %-30s mis-aligns CJK names.
		fmt.Printf("  %s %6d %8d  %s\n",
			util.PadRight(util.TruncateWidth(kb.Name, 30), 30), kb.DocumentCount, kb.ChunkCount, kb.Status)
	}
	return 0
}

func kbDocs(ctx context.Context, client *api.Client, args Args, ref string) int {
	kb, err := resolveKB(ctx, client, ref)
	if err != nil {
		return fail(err)
	}

	resp, err := client.ListDocuments(ctx, kb.ID, 1, 200, args.Options["keywords"])
	if err != nil {
		return fail(err)
	}

	if args.JSON {
		_ = printJSON(resp.Data)
		return 0
	}

	if len(resp.Data) == 0 {
		fmt.Println(infoStyle.Render("No documents in " + kb.Name + "."))
		return 0
	}

	fmt.Println(headerStyle.Render(kb.Name + fmt.Sprintf(" (%d documents)", resp.Total)))
	fmt.Printf("  %s %10s %12s %8s\n", util.PadRight("DOCUMENT", 36), "SIZE", "STATUS", "CHUNKS")
	for _, d := range resp.Data {
		doc := model.DocumentFromAPI(d)
		fmt.Printf("  %s %10s %12s %8d\n",
			util.PadRight(util.TruncateWidth(doc.Name, 36), 36), doc.Size, doc.Status, doc.ChunkCount)
	}
	return 0
}

// kbQuery runs a raw retrieval query and prints the matching passages,
// bypassing answer generation. Useful when checking why a question found
// the wrong (or no) source material.
func kbQuery(ctx context.Context, client *api.Client, args Args, query string) int {
	resp, err := client.TestRetriever(ctx, query)
	if err != nil {
		return fail(err)
	}

	if args.JSON {
		_ = printJSON(resp.Results)
		return 0
	}

	if len(resp.Results) == 0 {
		fmt.Println(infoStyle.Render("No passages matched."))
		return 0
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%d passages for %q", resp.Count, query)))
	for i, hit := range resp.Results {
		fmt.Printf("%s %s\n", promptStyle.Render(fmt.Sprintf("%d.", i+1)),
			util.TruncateWidth(util.FirstLine(hit.Content), 100))
	}
	return 0
}

// confirmed prompts unless --confirm was passed or stdin is not a TTY.
func confirmed(args Args, prompt string) bool {
	if args.Options["confirm"] == "true" {
		return true
	}
	if !IsTTY() {
		return false
	}
	fmt.Print(warnStyle.Render(prompt) + " [y/N] ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}
