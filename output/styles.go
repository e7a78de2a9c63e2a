// Package output provides styling helpers for terminal output.
package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles renders report output for a single writer. Colors are dropped when
// the writer is not a terminal.
type Styles struct {
	renderer *lipgloss.Renderer

	success  lipgloss.Style
	err      lipgloss.Style
	filePath lipgloss.Style
	account  lipgloss.Style
	amount   lipgloss.Style
	negative lipgloss.Style
	keyword  lipgloss.Style
	dim      lipgloss.Style
	warning  lipgloss.Style
	header   lipgloss.Style
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	return &Styles{
		renderer: r,
		success:  r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		err:      r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		filePath: r.NewStyle().Foreground(lipgloss.Color("6")),
		account:  r.NewStyle().Foreground(lipgloss.Color("3")),
		amount:   r.NewStyle().Foreground(lipgloss.Color("5")),
		negative: r.NewStyle().Foreground(lipgloss.Color("1")),
		keyword:  r.NewStyle().Bold(true),
		dim:      r.NewStyle().Faint(true),
		warning:  r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		header:   r.NewStyle().Bold(true).Underline(true),
	}
}

// Success returns a styled success string (green + bold).
func (s *Styles) Success(text string) string { return s.success.Render(text) }

// Error returns a styled error string (red + bold).
func (s *Styles) Error(text string) string { return s.err.Render(text) }

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string { return s.filePath.Render(text) }

// Account returns a styled account name (yellow).
func (s *Styles) Account(text string) string { return s.account.Render(text) }

// Amount returns a styled amount. Negative amounts are red.
func (s *Styles) Amount(text string, negative bool) string {
	if negative {
		return s.negative.Render(text)
	}
	return s.amount.Render(text)
}

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string { return s.keyword.Render(text) }

// Header returns a styled table header.
func (s *Styles) Header(text string) string { return s.header.Render(text) }

// Dim returns dimmed text (for secondary information).
func (s *Styles) Dim(text string) string { return s.dim.Render(text) }

// Warning returns a styled warning (yellow + bold).
func (s *Styles) Warning(text string) string { return s.warning.Render(text) }

// Timing returns a styled timing string. Slow operations are red.
func (s *Styles) Timing(text string, isSlowOperation bool) string {
	if isSlowOperation {
		return s.negative.Render(text)
	}
	return s.Dim(text)
}

// Status renders an up-to-date indicator for an account. Known statuses are
// "green", "yellow" and "red"; anything else renders as a dim dash.
func (s *Styles) Status(status string) string {
	const dot = "●"
	switch status {
	case "green":
		return s.renderer.NewStyle().Foreground(lipgloss.Color("2")).Render(dot)
	case "yellow":
		return s.renderer.NewStyle().Foreground(lipgloss.Color("3")).Render(dot)
	case "red":
		return s.renderer.NewStyle().Foreground(lipgloss.Color("1")).Render(dot)
	}
	return s.Dim("-")
}

// Renderer returns the underlying lipgloss renderer for advanced usage.
func (s *Styles) Renderer() *lipgloss.Renderer {
	return s.renderer
}
