package report

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/exp/slices"
)

// SourceFiles returns the main ledger file followed by the sorted included
// files.
func (r *Report) SourceFiles() []string {
	dir := filepath.Dir(r.path)
	var includes []string
	for _, inc := range r.snapshot().options.Includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(dir, inc)
		}
		if inc != r.path && !slices.Contains(includes, inc) {
			includes = append(includes, inc)
		}
	}
	slices.Sort(includes)
	return append([]string{r.path}, includes...)
}

func (r *Report) checkSourceFile(path, op string) error {
	if !slices.Contains(r.SourceFiles(), filepath.Clean(path)) {
		return &SourceFileError{Path: path, Op: op}
	}
	return nil
}

// Source returns the contents of a source file. Any other path is rejected
// with a *SourceFileError.
func (r *Report) Source(path string) (string, error) {
	if err := r.checkSourceFile(path, "read"); err != nil {
		return "", err
	}
	content, err := r.fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(content), nil
}

// SetSource overwrites a source file and reloads the ledger. Any other path
// is rejected with a *SourceFileError.
func (r *Report) SetSource(ctx context.Context, path, source string) error {
	if err := r.checkSourceFile(path, "write"); err != nil {
		return err
	}
	if err := r.fs.WriteFile(path, []byte(source), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	r.logger.Info("source file written", "path", path, "bytes", len(source))
	return r.Load(ctx)
}
