// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the ragdesk CLI.
//
// Command: ask "question"
//
// Examples:
//   ragdesk ask "What does the warranty cover?"
//   ragdesk ask --kb manuals "How do I reset the unit?"
//   ragdesk ask --json "..."
//   ragdesk ask --legacy "..."
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jeranaias/ragdesk/internal/api"
	"github.com/jeranaias/ragdesk/internal/config"
	"github.com/jeranaias/ragdesk/internal/conversation"
	"github.com/jeranaias/ragdesk/internal/history"
)

// askResult is the --json output shape.
type askResult struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Passages []string `json:"passages,omitempty"`
	KB       string   `json:"kb,omitempty"`
	Status   string   `json:"status"`
}

// HandleAsk runs a single question to completion and prints the answer.
func HandleAsk(args Args) int {
	question := strings.TrimSpace(args.Query)
	if question == "" {
		return fail(fmt.Errorf("usage: ragdesk ask \"question\""))
	}

	cfg, err := loadConfig(&args)
	if err != nil {
		return fail(err)
	}
	client := newClient(cfg)

	// Ctrl+C cancels the in-flight turn instead of killing mid-poll.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kbRef := args.KB
	if kbRef == "" {
		kbRef = cfg.Chat.DefaultKB
	}
	kbName := ""
	if kbRef != "" {
		kb, err := resolveKB(ctx, client, kbRef)
		if err != nil {
			return fail(err)
		}
		kbName = kb.Name
	}

	var answer string
	var passages []string
	if cfg.Chat.Legacy {
		answer, passages, err = askLegacy(ctx, client, question)
	} else {
		answer, err = askAsync(ctx, client, cfg, question, args)
	}
	if err != nil {
		return fail(err)
	}

	if args.JSON {
		_ = printJSON(askResult{
			Question: question,
			Answer:   answer,
			Passages: passages,
			KB:       kbName,
			Status:   history.StatusCompleted,
		})
	} else {
		fmt.Print(markdownOut(cfg, answer))
		if len(passages) > 0 && args.Verbose {
			fmt.Println(infoStyle.Render("\nSources:"))
			for _, p := range passages {
				fmt.Println(infoStyle.Render("  • " + p))
			}
		}
	}

	saveTurn(cfg, question, answer, kbName)
	return 0
}

// askLegacy uses the synchronous endpoint.
func askLegacy(ctx context.Context, client *api.Client, question string) (string, []string, error) {
	resp, err := client.SendMessage(ctx, question)
	if err != nil {
		return "", nil, err
	}
	return resp.Answer, resp.Reviews, nil
}

// askAsync dispatches a chat completion and polls the task to a terminal
// state, printing progress on stderr for interactive runs.
func askAsync(ctx context.Context, client *api.Client, cfg *config.Config, question string, args Args) (string, error) {
	resp, err := client.ChatCompletions(ctx, []api.ChatMessage{api.NewUserChatMessage(question)})
	if err != nil {
		return "", err
	}

	// Inline path: the server answered without a task.
	if !resp.Async() {
		if content, ok := resp.InlineContent(); ok {
			return content, nil
		}
		return "", fmt.Errorf("server returned neither a task nor an answer")
	}

	policy := conversation.PollPolicy{
		Interval:     cfg.PollInterval(),
		MaxAttempts:  cfg.Polling.MaxAttempts,
		ErrorBackoff: cfg.PollErrorBackoff(),
	}
	poller := conversation.NewPoller(client, policy)

	progress := IsStdoutTTY() && !args.Quiet && !args.JSON

	var final *api.TaskResponse
	lastStatus := api.TaskStatus("")
	err = poller.Run(ctx, resp.TaskID, func(t *api.TaskResponse) bool {
		if progress && t.Status != lastStatus && !t.Status.Terminal() {
			fmt.Fprintln(os.Stderr, infoStyle.Render("… "+string(t.Status)))
			lastStatus = t.Status
		}
		if t.Status.Terminal() {
			final = t
			return true
		}
		return false
	})
	if err != nil {
		return "", err
	}

	if final.Status == api.TaskFailed {
		if final.Error != "" {
			return "", fmt.Errorf("task failed: %s", final.Error)
		}
		return "", fmt.Errorf("task failed")
	}
	if content, ok := final.Result.Content(); ok {
		return content, nil
	}
	return "", fmt.Errorf("task completed without an answer")
}

// saveTurn records the answer to local history; failures are silent.
func saveTurn(cfg *config.Config, question, answer, kbName string) {
	if !cfg.History.Enabled {
		return
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		return
	}
	store, err := history.Open(path)
	if err != nil {
		return
	}
	defer store.Close()

	_, _ = store.Save(history.Entry{
		Question: question,
		Answer:   answer,
		Status:   history.StatusCompleted,
		KBName:   kbName,
	})
}
