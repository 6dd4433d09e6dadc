// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared plumbing for the CLI command handlers.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/api"
	"github.com/jeranaias/ragdesk/internal/config"
	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/ui/components"
	"github.com/jeranaias/ragdesk/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle  = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	successStyle = lipgloss.NewStyle().Foreground(styles.Emerald)
	warnStyle    = lipgloss.NewStyle().Foreground(styles.Amber)
	errStyle     = lipgloss.NewStyle().Foreground(styles.Rose)
)

// =============================================================================
// CLIENT CONSTRUCTION
// =============================================================================

// loadConfig loads configuration and applies global flag overrides.
func loadConfig(args *Args) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
	}
	if args.Legacy {
		cfg.Chat.Legacy = true
	}
	return cfg, nil
}

// newClient builds an API client from configuration.
func newClient(cfg *config.Config) *api.Client {
	return api.NewClientWithConfig(&api.ClientConfig{
		BaseURL: cfg.Server.BaseURL,
		Timeout: cfg.RequestTimeout(),
		ChatID:  cfg.Server.ChatID,
		Model:   cfg.Server.Model,
	})
}

// resolveKB matches a --kb value against server-side knowledge bases by
// id first, then case-insensitive name.
func resolveKB(ctx context.Context, client *api.Client, ref string) (*model.KnowledgeBase, error) {
	if ref == "" {
		return nil, nil
	}

	resp, err := client.ListDatasets(ctx, 1, 200)
	if err != nil {
		return nil, fmt.Errorf("list knowledge bases: %w", err)
	}

	var byName *model.KnowledgeBase
	for _, d := range resp.Data {
		kb := model.KnowledgeBaseFromDataset(d)
		if kb.ID == ref {
			return &kb, nil
		}
		if strings.EqualFold(kb.Name, ref) && byName == nil {
			k := kb
			byName = &k
		}
	}
	if byName != nil {
		return byName, nil
	}
	return nil, fmt.Errorf("knowledge base %q not found", ref)
}

// =============================================================================
// OUTPUT
// =============================================================================

// markdownOut renders markdown for TTY output. Piped output and NO_COLOR
// get plain text; if glamour is unavailable, fenced code blocks are still
// highlighted.
func markdownOut(cfg *config.Config, content string) string {
	if !ColorEnabled() {
		return content
	}

	width := TerminalWidth()
	if cfg.UI.MarkdownWidth > 0 && cfg.UI.MarkdownWidth < width {
		width = cfg.UI.MarkdownWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.GlamourStyle(cfg.UI.Theme)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return components.RenderFencedBlocks(content, width)
	}
	rendered, err := r.Render(content)
	if err != nil {
		return components.RenderFencedBlocks(content, width)
	}
	return strings.TrimRight(rendered, "\n") + "\n"
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail prints an error and returns a non-zero exit code.
func fail(err error) int {
	fmt.Fprintln(os.Stderr, errStyle.Render("Error: ")+err.Error())
	return 1
}
