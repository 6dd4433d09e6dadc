// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// upload_cmd.go - Document upload command for the ragdesk CLI.
//
// Command: upload FILE [--kb NAME]
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

// HandleUpload uploads one file into a knowledge base.
func HandleUpload(args Args) int {
	if args.File == "" {
		return fail(fmt.Errorf("usage: ragdesk upload FILE [--kb NAME]"))
	}

	cfg, err := loadConfig(&args)
	if err != nil {
		return fail(err)
	}
	client := newClient(cfg)

	info, err := os.Stat(args.File)
	if err != nil {
		return fail(fmt.Errorf("cannot read %s: %w", args.File, err))
	}
	if info.IsDir() {
		return fail(fmt.Errorf("%s is a directory", args.File))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The legacy endpoint takes a bare file with no knowledge-base routing.
	if args.Legacy {
		resp, err := client.UploadFile(ctx, args.File)
		if err != nil {
			return fail(err)
		}
		if args.JSON {
			_ = printJSON(resp)
			return 0
		}
		fmt.Println(successStyle.Render("Uploaded ") + resp.Filename)
		return 0
	}

	kbRef := args.KB
	if kbRef == "" {
		kbRef = cfg.Chat.DefaultKB
	}
	if kbRef == "" {
		return fail(fmt.Errorf("no knowledge base selected; pass --kb NAME or set chat.default_kb"))
	}

	kb, err := resolveKB(ctx, client, kbRef)
	if err != nil {
		return fail(err)
	}

	if !args.Quiet {
		fmt.Println(infoStyle.Render(fmt.Sprintf("Uploading %s (%d bytes) to %s...",
			filepath.Base(args.File), info.Size(), kb.Name)))
	}

	doc, err := client.UploadDocument(ctx, kb.ID, args.File)
	if err != nil {
		return fail(err)
	}

	if args.JSON {
		_ = printJSON(doc)
		return 0
	}

	name := filepath.Base(args.File)
	if doc != nil && doc.Name != "" {
		name = doc.Name
	}
	fmt.Println(successStyle.Render("Uploaded ") + name)
	fmt.Println(infoStyle.Render("Processing happens server-side; check progress with: ragdesk kb docs " + kb.Name))
	return 0
}
