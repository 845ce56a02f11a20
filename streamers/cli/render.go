package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
)

// TextStats summarizes a message body
type TextStats struct {
	Characters int
	Words      int
	Lines      int
}

// StatsOf counts characters, whitespace-separated words and lines
func StatsOf(text string) TextStats {
	lines := 0
	if text != "" {
		lines = strings.Count(text, "\n") + 1
	}
	return TextStats{
		Characters: utf8.RuneCountInString(text),
		Words:      len(strings.Fields(text)),
		Lines:      lines,
	}
}

// MessageView is one message selected for display
type MessageView struct {
	Index    int
	Role     string
	Content  string
	MaxChars int
}

// RenderMessage writes a header with stats followed by the content rendered
// as markdown. Content longer than MaxChars is cut before rendering.
func RenderMessage(out io.Writer, v MessageView) error {
	stats := StatsOf(v.Content)

	fmt.Fprintf(out, "%s%s=== Row %d: %s ===%s\n", ColorBold, ColorCyan, v.Index, strings.ToUpper(v.Role), ColorReset)
	fmt.Fprintf(out, "%sCharacters: %d | Words: %d | Lines: %d%s\n", ColorGray, stats.Characters, stats.Words, stats.Lines, ColorReset)

	content := v.Content
	cut := false
	if v.MaxChars > 0 && stats.Characters > v.MaxChars {
		content = string([]rune(content)[:v.MaxChars])
		cut = true
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		// fall back to plain text
		rendered = content + "\n"
	}
	fmt.Fprint(out, rendered)

	if cut {
		fmt.Fprintf(out, "%s... (%d more characters)%s\n", ColorGray, stats.Characters-v.MaxChars, ColorReset)
	}
	return nil
}
