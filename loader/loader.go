// Package loader is the entry store: it reads a ledger export, resolves its
// includes and returns the sorted entries together with the ledger options
// and every problem found along the way.
//
// The export is a YAML document with three top-level keys:
//
//	options:
//	  title: Household
//	  operating_currency: [EUR]
//	include:
//	  - 2023.yaml
//	entries:
//	  - {date: 2024-01-01, type: open, account: Assets:Bank, currencies: [EUR]}
//	  - date: 2024-01-05
//	    type: transaction
//	    payee: Bakery
//	    narration: Bread
//	    tags: [food]
//	    postings:
//	      - {account: Expenses:Food, units: 3.20 EUR}
//	      - {account: Assets:Bank}
//	  - {date: 2024-02-01, type: balance, account: Assets:Bank, amount: 96.80 EUR}
//
// Problems in single entries do not abort loading. They are collected as
// LoadErrors and the remaining entries are returned.
//
// The loader supports two modes of operation:
//   - Simple mode: only the given file is read and its includes are ignored
//   - Follow mode: included files are loaded recursively and merged
//
// When following includes, relative paths are resolved from the directory of
// the including file and files included more than once are loaded once.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/robinvdvleuten/beanreport/data"
)

// Loader reads ledger exports.
//
// Configure the loader using functional options passed to New:
//
//	l := loader.New(loader.WithFollowIncludes())
type Loader struct {
	// FollowIncludes determines whether included files are loaded too.
	FollowIncludes bool
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithFollowIncludes configures the loader to recursively load and merge all included files.
func WithFollowIncludes() Option {
	return func(l *Loader) {
		l.FollowIncludes = true
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads a ledger with its includes. It is a shorthand for
// New(WithFollowIncludes()).Load.
func Load(ctx context.Context, filename string) (*Result, error) {
	return New(WithFollowIncludes()).Load(ctx, filename)
}

// Result is a loaded ledger.
type Result struct {
	Entries []data.Entry
	Errors  []error
	Options data.Options
	// Files lists the absolute paths of every file read, main file first.
	Files []string
}

// Err returns the collected errors as LoadErrors, or nil.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &LoadErrors{Errors: r.Errors}
}

// file is the on-disk layout of a ledger export.
type file struct {
	Options rawOptions `yaml:"options"`
	Include []string   `yaml:"include"`
	Entries yaml.Node  `yaml:"entries"`
}

// Load reads filename. An unreadable or malformed main file is returned as
// an error; everything else ends up in Result.Errors.
func (l *Loader) Load(ctx context.Context, filename string) (*Result, error) {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	main, err := readFile(absPath)
	if err != nil {
		return nil, err
	}

	opts, optErrs := main.Options.apply(data.DefaultOptions(), absPath)
	opts.Filename = absPath

	state := &loaderState{
		visited: map[string]bool{absPath: true},
		result:  &Result{Options: opts, Files: []string{absPath}},
	}
	state.result.Errors = append(state.result.Errors, optErrs...)
	state.decodeEntries(absPath, &main.Entries)

	if l.FollowIncludes {
		if err := state.loadIncludes(ctx, absPath, main.Include); err != nil {
			return nil, err
		}
	}
	state.result.Options.Includes = state.result.Files[1:]

	data.Sort(state.result.Entries)
	state.result.Entries = check(state.result.Entries, state.result.Options, &state.result.Errors)
	return state.result, nil
}

func readFile(path string) (*file, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &f, nil
}

// loaderState tracks state during recursive loading.
type loaderState struct {
	visited map[string]bool
	result  *Result
}

func (l *loaderState) loadIncludes(ctx context.Context, from string, includes []string) error {
	baseDir := filepath.Dir(from)
	for _, inc := range includes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		includePath := inc
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, includePath)
		}
		includePath = filepath.Clean(includePath)
		if l.visited[includePath] {
			continue
		}
		l.visited[includePath] = true

		f, err := readFile(includePath)
		if err != nil {
			l.result.Errors = append(l.result.Errors, &LoadError{
				Pos:     Position{Filename: from},
				Message: err.Error(),
			})
			continue
		}
		l.result.Files = append(l.result.Files, includePath)
		l.decodeEntries(includePath, &f.Entries)
		if err := l.loadIncludes(ctx, includePath, f.Include); err != nil {
			return err
		}
	}
	return nil
}

func (l *loaderState) decodeEntries(filename string, node *yaml.Node) {
	if node.Kind == 0 {
		return
	}
	if node.Kind != yaml.SequenceNode {
		l.result.Errors = append(l.result.Errors, &LoadError{
			Pos:     Position{Filename: filename, Line: node.Line},
			Message: "entries must be a list",
		})
		return
	}
	for _, item := range node.Content {
		entry, err := decodeEntry(filename, item)
		if err != nil {
			l.result.Errors = append(l.result.Errors, err)
		}
		if entry != nil {
			l.result.Entries = append(l.result.Entries, entry)
		}
	}
}
