// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Server status command handler for the ragdesk CLI.
package cli

import (
	"context"
	"fmt"
	"time"
)

// HandleStatus prints the server status.
func HandleStatus(args Args) int {
	cfg, err := loadConfig(&args)
	if err != nil {
		return fail(err)
	}
	client := newClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := client.SystemStatus(ctx)

	if args.JSON {
		out := map[string]any{
			"connected": result.Connected,
			"endpoint":  client.BaseURL(),
		}
		if !result.Connected {
			out["message"] = result.Message
		}
		if result.Data != nil {
			out["status"] = result.Data
		}
		_ = printJSON(out)
		if result.Connected {
			return 0
		}
		return 1
	}

	fmt.Println(headerStyle.Render("ragdesk status"))
	fmt.Println(infoStyle.Render("Endpoint: ") + client.BaseURL())

	if !result.Connected {
		fmt.Println(errStyle.Render("✗ Disconnected"))
		fmt.Println(infoStyle.Render(result.Message))
		return 1
	}

	fmt.Println(successStyle.Render("✓ Connected"))
	if d := result.Data; d != nil {
		fmt.Printf("  Service:          %s %s\n", d.Service, d.Version)
		fmt.Printf("  Mode:             %s\n", d.Mode)
		fmt.Printf("  RAG engine:       %v\n", d.RAGAvailable)
		fmt.Printf("  Knowledge bases:  %d\n", d.TotalKnowledgeBases)
		fmt.Printf("  Documents:        %d\n", d.TotalDocuments)
		fmt.Printf("  Vector store:     %d chunks\n", d.VectorStoreDocs)
	}

	if args.Verbose {
		if info, err := client.SystemInfo(ctx); err == nil {
			for name, present := range info.DataFiles {
				mark := successStyle.Render("✓")
				if !present {
					mark = errStyle.Render("✗")
				}
				fmt.Printf("  %s %s\n", mark, name)
			}
		}
	}
	return 0
}
