// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

// =============================================================================
// COMMAND PARSING TESTS
// =============================================================================

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"no args starts tui", nil, CmdTUI},
		{"explicit tui", []string{"tui"}, CmdTUI},
		{"ask", []string{"ask", "question"}, CmdAsk},
		{"chat", []string{"chat"}, CmdChat},
		{"status", []string{"status"}, CmdStatus},
		{"status alias", []string{"s"}, CmdStatus},
		{"kb", []string{"kb", "list"}, CmdKB},
		{"kb alias", []string{"datasets"}, CmdKB},
		{"upload", []string{"upload", "file.pdf"}, CmdUpload},
		{"upload alias", []string{"up", "file.pdf"}, CmdUpload},
		{"history", []string{"history"}, CmdHistory},
		{"history alias", []string{"hist"}, CmdHistory},
		{"config", []string{"config", "show"}, CmdConfig},
		{"config alias", []string{"cfg"}, CmdConfig},
		{"doctor", []string{"doctor"}, CmdDoctor},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"version short flag", []string{"-V"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"--help"}, CmdHelp},
		{"help short flag", []string{"-h"}, CmdHelp},
		{"case insensitive", []string{"ASK", "q"}, CmdAsk},
		{"unknown falls back to help", []string{"frobnicate"}, CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := parse(tt.argv)
			if got != tt.want {
				t.Errorf("parse(%v) = %v, want %v", tt.argv, got, tt.want)
			}
		})
	}
}

// =============================================================================
// ARGUMENT EXTRACTION TESTS
// =============================================================================

func TestParseAskQuery(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{"single token", []string{"ask", "question"}, "question"},
		{"multiple tokens joined", []string{"ask", "what", "is", "this"}, "what is this"},
		{"flags excluded from query", []string{"ask", "--json", "what", "is", "this"}, "what is this"},
		{"empty query", []string{"ask"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := parse(tt.argv)
			if cmd != CmdAsk {
				t.Fatalf("parse(%v) = %v, want CmdAsk", tt.argv, cmd)
			}
			if args.Query != tt.want {
				t.Errorf("Query = %q, want %q", args.Query, tt.want)
			}
		})
	}
}

func TestParseSubcommands(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantCmd Command
		wantSub string
		wantRaw []string
	}{
		{"kb list", []string{"kb", "list"}, CmdKB, "list", []string{}},
		{"kb create with name", []string{"kb", "create", "manuals"}, CmdKB, "create", []string{"manuals"}},
		{"kb bare", []string{"kb"}, CmdKB, "", nil},
		{"history show", []string{"history", "show", "12"}, CmdHistory, "show", []string{"12"}},
		{"history with leading flag keeps no subcommand", []string{"history", "--limit", "5"}, CmdHistory, "", nil},
		{"config set", []string{"config", "set", "ui.theme", "dark"}, CmdConfig, "set", []string{"ui.theme", "dark"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := parse(tt.argv)
			if cmd != tt.wantCmd {
				t.Fatalf("parse(%v) = %v, want %v", tt.argv, cmd, tt.wantCmd)
			}
			if args.Subcommand != tt.wantSub {
				t.Errorf("Subcommand = %q, want %q", args.Subcommand, tt.wantSub)
			}
			if tt.wantRaw != nil && len(args.Raw) != len(tt.wantRaw) {
				t.Errorf("Raw = %v, want %v", args.Raw, tt.wantRaw)
			}
		})
	}
}

func TestParseUploadFile(t *testing.T) {
	cmd, args := parse([]string{"upload", "report.pdf", "--kb", "manuals"})
	if cmd != CmdUpload {
		t.Fatalf("cmd = %v, want CmdUpload", cmd)
	}
	if args.File != "report.pdf" {
		t.Errorf("File = %q, want report.pdf", args.File)
	}
	if args.KB != "manuals" {
		t.Errorf("KB = %q, want manuals", args.KB)
	}
}

// =============================================================================
// GLOBAL FLAG TESTS
// =============================================================================

func TestParseGlobalFlags(t *testing.T) {
	_, args := parse([]string{
		"ask", "-q", "--verbose", "--json", "--legacy",
		"--server", "http://other:9000", "--kb", "manuals", "question",
	})

	if !args.Quiet || !args.Verbose || !args.JSON || !args.Legacy {
		t.Errorf("boolean flags = %+v", args)
	}
	if args.Server != "http://other:9000" {
		t.Errorf("Server = %q", args.Server)
	}
	if args.KB != "manuals" {
		t.Errorf("KB = %q", args.KB)
	}
	if args.Query != "question" {
		t.Errorf("Query = %q, want question", args.Query)
	}
}

func TestParseNamedOptions(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		key  string
		want string
	}{
		{"option with value", []string{"history", "--limit", "5"}, "limit", "5"},
		{"bare flag is true", []string{"history", "clear", "--confirm"}, "confirm", "true"},
		{"description option", []string{"kb", "create", "x", "--description", "notes"}, "description", "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, args := parse(tt.argv)
			if got := args.Options[tt.key]; got != tt.want {
				t.Errorf("Options[%q] = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestParseFlagPositionIndependence(t *testing.T) {
	// Global flags before the command must parse the same as after it.
	cmdA, a := parse([]string{"--json", "status"})
	cmdB, b := parse([]string{"status", "--json"})
	if cmdA != CmdStatus || cmdB != CmdStatus {
		t.Fatalf("cmds = %v, %v, want CmdStatus", cmdA, cmdB)
	}
	if !a.JSON || !b.JSON {
		t.Errorf("JSON flags = %v, %v, want both true", a.JSON, b.JSON)
	}
}
