package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
)

type ContextCmd struct {
	Hash string `help:"Hash of the entry, as listed by 'doctor hashes'." arg:""`
}

func (cmd *ContextCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx, "context")
	if err != nil {
		return err
	}
	defer s.close()

	c, ok := s.report.Context(cmd.Hash)
	if !ok {
		return fmt.Errorf("no entry with hash %s", cmd.Hash)
	}
	if c.Filename != "" {
		printInfof(s.stdout, s.styles, "%s", s.styles.FilePath(fmt.Sprintf("%s:%d", c.Filename, c.Lineno)))
		_, _ = fmt.Fprintln(s.stdout)
	}
	_, _ = fmt.Fprint(s.stdout, c.Rendered)
	if len(c.Journal) > 1 {
		_, _ = fmt.Fprintln(s.stdout)
		printInfof(s.stdout, s.styles, "%d entries share this hash", len(c.Journal))
	}
	return nil
}
