package loader

import (
	"fmt"

	"github.com/robinvdvleuten/beanreport/data"
)

// Position is a location in a ledger file.
type Position struct {
	Filename string
	Line     int
}

func (p Position) String() string {
	if p.Line == 0 {
		return p.Filename
	}
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// LoadError is a problem found while loading a ledger. Entry is set when the
// problem belongs to a decoded entry.
type LoadError struct {
	Pos     Position
	Message string
	Entry   data.Entry
}

func (e *LoadError) Error() string {
	if e.Pos.Filename == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// GetPosition returns the source location of the error.
func (e *LoadError) GetPosition() Position {
	return e.Pos
}

// GetEntry returns the entry the error belongs to, if any.
func (e *LoadError) GetEntry() data.Entry {
	return e.Entry
}

func entryError(entry data.Entry, format string, args ...interface{}) *LoadError {
	meta := entry.EntryMeta()
	return &LoadError{
		Pos:     Position{Filename: meta.Filename, Line: meta.Lineno},
		Message: fmt.Sprintf(format, args...),
		Entry:   entry,
	}
}

// LoadErrors wraps multiple load errors.
type LoadErrors struct {
	Errors []error
}

func (e *LoadErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d load errors occurred", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping.
func (e *LoadErrors) Unwrap() []error {
	return e.Errors
}
