// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// Answers from the retrieval service often quote configuration snippets and
// shell commands in fenced blocks. Glamour handles full markdown where it is
// available; this renderer covers the fallback paths in the chat view and
// the CLI answer output.

// CodeBlock is a fenced code block to render with syntax highlighting.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int
}

// NewCodeBlock creates a code block with an 80-column default width.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{Language: language, Code: code, MaxWidth: 80}
}

// Render renders the block with a language badge and highlighted body.
func (c CodeBlock) Render() string {
	code := strings.TrimSpace(c.Code)

	highlighted := Highlight(code, c.Language)
	lines := strings.Split(highlighted, "\n")

	numStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)

	rendered := make([]string, 0, len(lines))
	for i, line := range lines {
		rendered = append(rendered, numStyle.Render(fmt.Sprintf("%d", i+1))+line)
	}

	body := strings.Join(rendered, "\n")

	var header string
	if c.Language != "" {
		header = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Background(styles.Overlay).
			Padding(0, 1).
			Bold(true).
			Render(c.Language) + "\n"
	}

	maxWidth := c.MaxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(1, 2).
		MaxWidth(maxWidth).
		Render(header + body)
}

// RenderFencedBlocks replaces ``` fenced blocks in text with rendered versions.
// Text outside fences passes through untouched.
func RenderFencedBlocks(text string, maxWidth int) string {
	lines := strings.Split(text, "\n")

	var out []string
	var code []string
	var language string
	inBlock := false

	flush := func() {
		cb := NewCodeBlock(language, strings.Join(code, "\n"))
		cb.MaxWidth = maxWidth
		out = append(out, cb.Render())
		code = nil
		language = ""
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			if inBlock {
				flush()
				inBlock = false
			} else {
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inBlock = true
			}
		case inBlock:
			code = append(code, line)
		default:
			out = append(out, line)
		}
	}

	// Unclosed fence still renders.
	if inBlock && len(code) > 0 {
		flush()
	}

	return strings.Join(out, "\n")
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// Highlight applies chroma terminal highlighting, falling back to plain text.
func Highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
