// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the ragdesk CLI.
//
// Command: chat
//
// Interactive commands:
//   /help, /h      Show available commands
//   /kb [name]     Show or switch the knowledge base
//   /clear, /c     Clear the screen
//   /status, /s    Show server status
//   /quit, /q      Exit (also Ctrl+D)
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/jeranaias/ragdesk/internal/api"
	"github.com/jeranaias/ragdesk/internal/config"
	"github.com/jeranaias/ragdesk/internal/model"
)

// chatHistoryFile is the liner input history, kept next to the config.
const chatHistoryFile = "cli_history"

// HandleChat runs the interactive REPL.
func HandleChat(args Args) int {
	cfg, err := loadConfig(&args)
	if err != nil {
		return fail(err)
	}
	client := newClient(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var kb *model.KnowledgeBase
	kbRef := args.KB
	if kbRef == "" {
		kbRef = cfg.Chat.DefaultKB
	}
	if kbRef != "" {
		if kb, err = resolveKB(ctx, client, kbRef); err != nil {
			fmt.Println(warnStyle.Render(err.Error()))
		}
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := loadInputHistory(line)
	defer saveInputHistory(line, historyPath)

	printWelcome(cfg, kb)

	for {
		prompt := "> "
		if kb != nil {
			prompt = kb.Name + " > "
		}

		input, err := line.Prompt(promptStyle.Render(prompt))
		if err != nil {
			// Ctrl+D or Ctrl+C at the prompt ends the session.
			fmt.Println()
			return 0
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := handleChatCommand(ctx, client, cfg, input, &kb); quit {
				return 0
			}
			continue
		}

		answer, err := chatAnswer(ctx, client, cfg, input)
		if err != nil {
			fmt.Println(errStyle.Render("Error: ") + err.Error())
			continue
		}
		fmt.Print(markdownOut(cfg, answer))

		kbName := ""
		if kb != nil {
			kbName = kb.Name
		}
		saveTurn(cfg, input, answer, kbName)
	}
}

// chatAnswer reuses the ask path for one REPL line.
func chatAnswer(ctx context.Context, client *api.Client, cfg *config.Config, question string) (string, error) {
	if cfg.Chat.Legacy {
		answer, _, err := askLegacy(ctx, client, question)
		return answer, err
	}
	return askAsync(ctx, client, cfg, question, Args{Quiet: true})
}

// handleChatCommand processes a /command. Returns true to exit.
func handleChatCommand(ctx context.Context, client *api.Client, cfg *config.Config, input string, kb **model.KnowledgeBase) bool {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		fmt.Println(headerStyle.Render("Commands:"))
		fmt.Println("  /kb [name]   Show or switch the knowledge base")
		fmt.Println("  /clear, /c   Clear the screen")
		fmt.Println("  /status, /s  Show server status")
		fmt.Println("  /quit, /q    Exit")

	case "/clear", "/c":
		fmt.Print("\033[2J\033[H")

	case "/status", "/s":
		result := client.SystemStatus(ctx)
		if result.Connected {
			fmt.Println(successStyle.Render("✓ Connected ") + infoStyle.Render(client.BaseURL()))
		} else {
			fmt.Println(errStyle.Render("✗ Disconnected: ") + result.Message)
		}

	case "/kb":
		if len(fields) < 2 {
			if *kb != nil {
				fmt.Println(infoStyle.Render("Knowledge base: " + (*kb).Name))
			} else {
				fmt.Println(infoStyle.Render("No knowledge base selected."))
			}
			return false
		}
		ref := strings.Join(fields[1:], " ")
		if ref == "none" || ref == "-" {
			*kb = nil
			fmt.Println(infoStyle.Render("Knowledge base cleared."))
			return false
		}
		found, err := resolveKB(ctx, client, ref)
		if err != nil {
			fmt.Println(warnStyle.Render(err.Error()))
			return false
		}
		*kb = found
		fmt.Println(successStyle.Render("Using " + found.Name))

	default:
		fmt.Println(warnStyle.Render("Unknown command. Try /help."))
	}
	return false
}

func printWelcome(cfg *config.Config, kb *model.KnowledgeBase) {
	fmt.Println(headerStyle.Render("ragdesk chat"))
	fmt.Println(infoStyle.Render("Server: " + cfg.Server.BaseURL))
	if kb != nil {
		fmt.Println(infoStyle.Render("Knowledge base: " + kb.Name))
	}
	fmt.Println(infoStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Println()
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

func loadInputHistory(line *liner.State) string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, chatHistoryFile)
	if f, err := os.Open(path); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return path
}

func saveInputHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}
