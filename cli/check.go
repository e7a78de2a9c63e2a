package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanreport/output"
)

type CheckCmd struct{}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx, "check")
	if err != nil {
		return err
	}
	defer s.close()

	errs := s.report.Errors()
	if len(errs) == 0 {
		printSuccess(s.stdout, s.styles, fmt.Sprintf("Check passed: %d entries", len(s.report.AllEntries())))
		return nil
	}

	styles := output.NewStyles(s.stderr)
	_, _ = fmt.Fprintln(s.stderr, NewErrorRenderer(styles).RenderAll(errs))
	_, _ = fmt.Fprintln(s.stderr)
	printError(s.stderr, styles, fmt.Sprintf("%d error(s) found", len(errs)))
	return NewCommandError(1)
}
