// Package ui provides styled terminal output for the bankmgr CLI.
// It uses the Charm.sh ecosystem for styling with automatic fallback to
// plain text for non-TTY output, where every message is written verbatim.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// UI holds the terminal state and provides styled output methods.
type UI struct {
	Out     io.Writer
	IsTTY   bool
	Width   int
	NoColor bool
}

// KV represents a key-value pair for summary displays.
type KV struct {
	Key   string
	Value string
}

// noColorEnv is the standard environment variable to disable colors.
var noColorEnv = os.Getenv("NO_COLOR") != ""

// New creates a UI writing to out, with TTY detection when out is a terminal.
func New(out io.Writer) *UI {
	isTTY := false
	width := 80
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		isTTY = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	return &UI{
		Out:     out,
		IsTTY:   isTTY,
		Width:   width,
		NoColor: noColorEnv,
	}
}

// SetNoColor disables colors.
func (u *UI) SetNoColor(noColor bool) {
	u.NoColor = noColor
}

// shouldStyle returns true if we should use styled output.
func (u *UI) shouldStyle() bool {
	return u.IsTTY && !u.NoColor
}

// Print writes s without a trailing newline.
func (u *UI) Print(s string) {
	fmt.Fprint(u.Out, s)
}

// Println writes s followed by a newline.
func (u *UI) Println(s string) {
	fmt.Fprintln(u.Out, s)
}

// Header renders a bordered header box.
func (u *UI) Header(title string) string {
	if !u.shouldStyle() {
		return fmt.Sprintf("=== %s ===", title)
	}

	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(0, 2)

	return style.Render(title)
}

// Menu renders numbered options, one per line.
func (u *UI) Menu(options []string) string {
	lines := make([]string, len(options))
	for i, opt := range options {
		num := fmt.Sprintf("%d.", i+1)
		if u.shouldStyle() {
			num = StyleMenuNumber.Render(num)
		}
		lines[i] = num + " " + opt
	}
	return strings.Join(lines, "\n")
}

// KeyValue renders a key-value pair; plain output is "key: value".
func (u *UI) KeyValue(key, value string) string {
	if !u.shouldStyle() {
		return key + ": " + value
	}

	keyStyle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Width(14)
	valueStyle := lipgloss.NewStyle().
		Bold(true)

	return keyStyle.Render(key+":") + " " + valueStyle.Render(value)
}

// Success renders a success message with a green checkmark.
func (u *UI) Success(msg string) string {
	if !u.shouldStyle() {
		return msg
	}

	return StyleSuccess.Render(SymbolSuccess+" ") + msg
}

// Error renders an error message with a red X.
func (u *UI) Error(msg string) string {
	if !u.shouldStyle() {
		return msg
	}

	return StyleError.Render(SymbolError + " " + msg)
}

// Warning renders a warning message.
func (u *UI) Warning(msg string) string {
	if !u.shouldStyle() {
		return msg
	}

	return StyleWarning.Render(SymbolWarning + " " + msg)
}

// Muted renders muted/dim text.
func (u *UI) Muted(msg string) string {
	if !u.shouldStyle() {
		return msg
	}

	return StyleMuted.Render(msg)
}

// SummaryBox renders a bordered summary section.
func (u *UI) SummaryBox(title string, items []KV) string {
	if !u.shouldStyle() {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("\n=== %s ===\n", title))
		for _, item := range items {
			sb.WriteString(fmt.Sprintf("%-14s %s\n", item.Key+":", item.Value))
		}
		return sb.String()
	}

	maxKeyWidth := 0
	for _, item := range items {
		if len(item.Key) > maxKeyWidth {
			maxKeyWidth = len(item.Key)
		}
	}

	var lines []string
	for _, item := range items {
		keyStyle := lipgloss.NewStyle().Foreground(ColorMuted).Width(maxKeyWidth + 2)
		valueStyle := lipgloss.NewStyle().Bold(true)
		lines = append(lines, "  "+keyStyle.Render(item.Key)+" "+valueStyle.Render(item.Value))
	}
	content := strings.Join(lines, "\n")

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSuccess)

	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorSuccess).
		Padding(0, 1)

	return "\n" + titleStyle.Render("  "+title) + "\n" + boxStyle.Render(content)
}
