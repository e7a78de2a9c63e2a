package report

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/beanreport/data"
)

// ErrNoQueryEngine is returned by Query when the report has no query engine.
var ErrNoQueryEngine = errors.New("no query engine configured")

// SourceFileError is returned when reading or writing a file that is not one
// of the ledger's source files. It is raised before the file is touched.
type SourceFileError struct {
	Path string
	Op   string
}

func (e *SourceFileError) Error() string {
	return fmt.Sprintf("refusing to %s non-source file %s", e.Op, e.Path)
}

// OptionError reports a malformed fava-option or sidebar link entry. Option
// errors are collected with the ledger errors.
type OptionError struct {
	Meta    data.Meta
	Message string
	Entry   data.Entry
}

func (e *OptionError) Error() string {
	if e.Meta.Filename == "" {
		return e.Message
	}
	return fmt.Sprintf("%s:%d: %s", e.Meta.Filename, e.Meta.Lineno, e.Message)
}
