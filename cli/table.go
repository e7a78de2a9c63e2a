package cli

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/beanreport/output"
)

// cell is a table cell. Styling is applied after padding so escape codes
// never count towards the column width.
type cell struct {
	text  string
	style func(string) string
}

func plain(text string) cell { return cell{text: text} }

// table renders aligned columns. The first left columns (at least one) are
// left-aligned, all others are right-aligned.
type table struct {
	header []string
	rows   [][]cell
	left   int
}

func (t *table) add(cells ...cell) { t.rows = append(t.rows, cells) }

func (t *table) widths() []int {
	widths := make([]int, len(t.header))
	grow := func(i int, text string) {
		for i >= len(widths) {
			widths = append(widths, 0)
		}
		if w := runewidth.StringWidth(text); w > widths[i] {
			widths[i] = w
		}
	}
	for i, h := range t.header {
		grow(i, h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			grow(i, c.text)
		}
	}
	return widths
}

func (t *table) render(w io.Writer, styles *output.Styles) {
	widths := t.widths()
	pad := func(i int, text string) string {
		if i < max(t.left, 1) {
			return runewidth.FillRight(text, widths[i])
		}
		return runewidth.FillLeft(text, widths[i])
	}

	var b strings.Builder
	if len(t.header) > 0 {
		cols := make([]string, len(t.header))
		for i, h := range t.header {
			cols[i] = styles.Header(pad(i, h))
		}
		b.WriteString(strings.TrimRight(strings.Join(cols, "  "), " "))
		b.WriteByte('\n')
	}
	for _, row := range t.rows {
		cols := make([]string, len(row))
		for i, c := range row {
			text := pad(i, c.text)
			if c.style != nil {
				text = c.style(text)
			}
			cols[i] = text
		}
		b.WriteString(strings.TrimRight(strings.Join(cols, "  "), " "))
		b.WriteByte('\n')
	}
	_, _ = io.WriteString(w, b.String())
}
