// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for ragdesk.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdStatus
	CmdKB
	CmdUpload
	CmdHistory
	CmdConfig
	CmdDoctor
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	Server  string // --server overrides the configured base URL
	KB      string // --kb selects a knowledge base by name or id
	Legacy  bool   // --legacy uses the synchronous send endpoint

	// Command-specific
	Query      string
	File       string
	Subcommand string

	// Raw args remaining after command extraction
	Raw []string

	// Options holds named options (e.g. --limit, --output)
	Options map[string]string
}

const usageText = `ragdesk - terminal client for a local document Q&A service

Ragdesk talks to a local retrieval-augmented answering service: upload
documents into knowledge bases, then ask questions against them from the
terminal.

Usage:
  ragdesk                    Start the TUI (default)
  ragdesk ask "question"     Ask a single question and print the answer
  ragdesk chat               Interactive chat session
  ragdesk status, s          Show server status
  ragdesk kb [subcommand]    Knowledge base management
  ragdesk upload FILE        Upload a document
  ragdesk history [subcommand] Browse saved turns
  ragdesk config [show|set|path] Configuration
  ragdesk doctor             Connectivity and setup diagnostics
  ragdesk version            Show version

Ask:
  ragdesk ask "What does the warranty cover?"
  ragdesk ask --kb manuals "How do I reset the unit?"
  ragdesk ask --json "..."          Print the raw answer payload as JSON
  ragdesk ask --legacy "..."        Use the synchronous endpoint

Knowledge bases:
  ragdesk kb list                   List knowledge bases
  ragdesk kb create NAME            Create a knowledge base
  ragdesk kb delete NAME            Delete a knowledge base (asks to confirm)
  ragdesk kb docs NAME              List documents in a knowledge base
  ragdesk kb query TEXT             Show raw retrieval passages for a query

Upload:
  ragdesk upload report.pdf --kb manuals
  ragdesk upload notes.md           Uses the configured default KB

History:
  ragdesk history                   List recent turns
  ragdesk history show ID           Show one turn in full
  ragdesk history search TEXT       Search questions and answers
  ragdesk history clear --confirm   Delete all saved turns

Global flags:
  --server URL    Override the configured server address
  --kb NAME       Select a knowledge base by name or id
  --json          Machine-readable output where supported
  -q, --quiet     Minimal output
  -v, --verbose   Verbose output

Environment:
  RAGDESK_SERVER_URL   Overrides server.base_url
  RAGDESK_CONFIG       Alternate config file path

Config file: ~/.ragdesk/config.toml
`

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("ragdesk %s (%s, %s, %s/%s)\n",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// Parse reads os.Args and returns the command plus its arguments.
func Parse() (Command, Args) {
	return parse(os.Args[1:])
}

func parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "ask":
		args.Query = strings.Join(positional(remaining), " ")
		return CmdAsk, args

	case "chat":
		return CmdChat, args

	case "status", "s":
		return CmdStatus, args

	case "kb", "datasets":
		if len(remaining) > 0 {
			args.Subcommand = strings.ToLower(remaining[0])
			args.Raw = remaining[1:]
		}
		return CmdKB, args

	case "upload", "up":
		pos := positional(remaining)
		if len(pos) > 0 {
			args.File = pos[0]
		}
		return CmdUpload, args

	case "history", "hist":
		if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
			args.Subcommand = strings.ToLower(remaining[0])
			args.Raw = remaining[1:]
		}
		return CmdHistory, args

	case "config", "cfg":
		if len(remaining) > 0 {
			args.Subcommand = strings.ToLower(remaining[0])
			args.Raw = remaining[1:]
		}
		return CmdConfig, args

	case "doctor":
		return CmdDoctor, args

	case "version":
		return CmdVersion, args

	case "help":
		return CmdHelp, args

	default:
		fmt.Fprintf(os.Stderr, "ragdesk: unknown command %q\n\n", cmd)
		return CmdHelp, args
	}
}

// parseGlobalFlags strips global flags and returns the rest.
func parseGlobalFlags(argv []string) ([]string, Args) {
	args := Args{Options: make(map[string]string)}
	var remaining []string

	for i := 0; i < len(argv); i++ {
		a := argv[i]
		switch a {
		case "--help", "-h":
			remaining = append(remaining, "help")
		case "--version", "-V":
			remaining = append(remaining, "version")
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		case "--legacy":
			args.Legacy = true
		case "--server":
			if i+1 < len(argv) {
				i++
				args.Server = argv[i]
			}
		case "--kb":
			if i+1 < len(argv) {
				i++
				args.KB = argv[i]
			}
		default:
			// Named options of the form --key value are collected for
			// the command handlers; everything else stays positional.
			if strings.HasPrefix(a, "--") && i+1 < len(argv) && !strings.HasPrefix(argv[i+1], "-") {
				args.Options[strings.TrimPrefix(a, "--")] = argv[i+1]
				i++
			} else if strings.HasPrefix(a, "--") {
				args.Options[strings.TrimPrefix(a, "--")] = "true"
			} else {
				remaining = append(remaining, a)
			}
		}
	}
	return remaining, args
}

// positional filters out flag-looking tokens.
func positional(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if !strings.HasPrefix(t, "-") {
			out = append(out, t)
		}
	}
	return out
}
