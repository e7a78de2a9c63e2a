package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/robinvdvleuten/beanreport/budget"
	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/loader"
	"github.com/robinvdvleuten/beanreport/output"
	"github.com/robinvdvleuten/beanreport/prices"
	"github.com/robinvdvleuten/beanreport/report"
)

// ErrorRenderer renders ledger errors with terminal styling and source
// context.
type ErrorRenderer struct {
	styles   *output.Styles
	readFile func(string) ([]byte, error)
	sources  map[string][]string
}

// NewErrorRenderer creates a renderer that reads source context from disk.
func NewErrorRenderer(styles *output.Styles) *ErrorRenderer {
	return &ErrorRenderer{styles: styles, readFile: os.ReadFile, sources: map[string][]string{}}
}

// located is an error tied to a place in the ledger.
type located struct {
	filename string
	line     int
	message  string
	entry    data.Entry
}

func locate(err error) (located, bool) {
	var (
		lerr *loader.LoadError
		berr *budget.BudgetError
		oerr *report.OptionError
		perr *prices.PriceError
	)
	switch {
	case errors.As(err, &lerr):
		return located{lerr.Pos.Filename, lerr.Pos.Line, lerr.Message, lerr.Entry}, true
	case errors.As(err, &berr):
		return located{berr.Meta.Filename, berr.Meta.Lineno, berr.Message, berr.Entry}, true
	case errors.As(err, &oerr):
		return located{oerr.Meta.Filename, oerr.Meta.Lineno, oerr.Message, oerr.Entry}, true
	case errors.As(err, &perr):
		return located{perr.Meta.Filename, perr.Meta.Lineno, perr.Message, perr.Entry}, true
	}
	return located{}, false
}

// Render formats a single error with styling and context. Errors that
// belong to an entry show the entry, others show the surrounding source
// lines when the file can be read.
func (r *ErrorRenderer) Render(err error) string {
	loc, ok := locate(err)
	if !ok {
		return r.styles.Error(err.Error())
	}

	var buf strings.Builder
	if loc.filename != "" {
		buf.WriteString(r.styles.FilePath(fmt.Sprintf("%s:%d", loc.filename, loc.line)))
		buf.WriteString(": ")
	}
	buf.WriteString(r.styles.Error(loc.message))
	buf.WriteString("\n\n")

	if loc.entry != nil {
		for _, line := range strings.Split(data.Format(loc.entry), "\n") {
			buf.WriteString("   ")
			buf.WriteString(r.styles.Dim(line))
			buf.WriteByte('\n')
		}
		return buf.String()
	}

	r.writeSourceContext(&buf, loc.filename, loc.line)
	return buf.String()
}

func (r *ErrorRenderer) writeSourceContext(buf *strings.Builder, filename string, line int) {
	if filename == "" || line <= 0 {
		return
	}
	lines, ok := r.sources[filename]
	if !ok {
		content, err := r.readFile(filename)
		if err == nil {
			lines = strings.Split(string(content), "\n")
		}
		r.sources[filename] = lines
	}
	if len(lines) == 0 {
		return
	}

	start := max(line-3, 0)
	end := min(line+1, len(lines)-1)
	for i := start; i <= end; i++ {
		if i == line-1 {
			buf.WriteString(r.styles.Error(" > "))
			buf.WriteString(lines[i])
		} else {
			buf.WriteString("   ")
			buf.WriteString(r.styles.Dim(lines[i]))
		}
		buf.WriteByte('\n')
	}
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = strings.TrimRight(r.Render(err), "\n")
	}
	return strings.Join(parts, "\n\n")
}
