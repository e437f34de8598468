// Package ui renders shipver's terminal output: section headers, step
// markers, status lines and the release summary box.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ruleWidth is the width of header rules
const ruleWidth = 50

// UI writes styled output to a single writer
type UI struct {
	w       io.Writer
	title   lipgloss.Style
	step    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
	label   lipgloss.Style
	box     lipgloss.Style
}

// New creates a UI for w. Colors are only emitted when w is a color terminal.
func New(w io.Writer) *UI {
	r := lipgloss.NewRenderer(w)
	return &UI{
		w:       w,
		title:   r.NewStyle().Bold(true),
		step:    r.NewStyle().Foreground(lipgloss.Color("12")),
		success: r.NewStyle().Foreground(lipgloss.Color("10")),
		warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		failure: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		label:   r.NewStyle().Bold(true),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("10")).
			Padding(0, 1),
	}
}

// Header prints a title framed by rules, with an optional subtitle
func (u *UI) Header(title, subtitle string) {
	rule := strings.Repeat("═", ruleWidth)
	fmt.Fprintln(u.w, rule)
	fmt.Fprintln(u.w, u.title.Render(title))
	if subtitle != "" {
		fmt.Fprintln(u.w, u.muted.Render(subtitle))
	}
	fmt.Fprintln(u.w, rule)
}

// Step marks the start of an operation
func (u *UI) Step(title string) {
	fmt.Fprintln(u.w)
	fmt.Fprintln(u.w, u.step.Render("→ "+title+"..."))
}

// Success prints a ✓ line
func (u *UI) Success(msg string) {
	fmt.Fprintln(u.w, u.success.Render("✓ "+msg))
}

// Info prints a plain indented line
func (u *UI) Info(msg string) {
	fmt.Fprintln(u.w, "  "+msg)
}

// Warning prints a ⚠ line
func (u *UI) Warning(msg string) {
	fmt.Fprintln(u.w, u.warning.Render("⚠ Warning: "+msg))
}

// Failure prints a ✗ line
func (u *UI) Failure(msg string) {
	fmt.Fprintln(u.w, u.failure.Render("✗ Error: "+msg))
}

// Detail prints captured command output, indented
func (u *UI) Detail(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintln(u.w, u.muted.Render("  "+line))
	}
}

// Prompt formats a question with an optional hint, e.g. "Keep version 1.0.0? [Y/n]: "
func (u *UI) Prompt(question, hint string) string {
	if hint == "" {
		return question + ": "
	}
	return fmt.Sprintf("%s [%s]: ", question, hint)
}

// Summary prints key/value rows inside a box under a title
func (u *UI) Summary(title string, rows [][2]string) {
	width := 0
	for _, r := range rows {
		if w := lipgloss.Width(r[0]); w > width {
			width = w
		}
	}

	lines := []string{u.title.Render("✓ " + title), ""}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s %s", u.label.Render(padRight(r[0]+":", width+1)), r[1]))
	}

	fmt.Fprintln(u.w)
	fmt.Fprintln(u.w, u.box.Render(strings.Join(lines, "\n")))
}

// NextSteps prints a numbered list of suggested manual follow-ups
func (u *UI) NextSteps(steps []string) {
	if len(steps) == 0 {
		return
	}
	fmt.Fprintln(u.w)
	fmt.Fprintln(u.w, u.title.Render("Next steps:"))
	for i, s := range steps {
		fmt.Fprintf(u.w, "  %d. %s\n", i+1, s)
	}
}

// Table prints aligned columns with a header row
func (u *UI) Table(header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i := range header {
			if i < len(r) && lipgloss.Width(r[i]) > widths[i] {
				widths[i] = lipgloss.Width(r[i])
			}
		}
	}

	format := func(cells []string) string {
		parts := make([]string, len(header))
		for i := range header {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = padRight(cell, widths[i])
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	fmt.Fprintln(u.w, u.label.Render(format(header)))
	for _, r := range rows {
		fmt.Fprintln(u.w, format(r))
	}
}

// padRight pads s with spaces to the given display width
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
