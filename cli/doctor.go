package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanreport/data"
)

// DoctorCmd provides doctor utilities for debugging ledger exports.
type DoctorCmd struct {
	Hashes HashesCmd `cmd:"" help:"List the filtered entries with their hashes."`
}

// HashesCmd lists entries in the format: HASH KIND DATE file:line.
type HashesCmd struct{}

func (cmd *HashesCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx, "doctor hashes")
	if err != nil {
		return err
	}
	defer s.close()

	for _, entry := range s.report.Entries() {
		meta := entry.EntryMeta()
		_, _ = fmt.Fprintf(s.stdout, "%s %-11s %s    %s:%d\n",
			data.Hash(entry),
			entry.Kind(),
			entry.EntryDate().Format(data.DateLayout),
			meta.Filename,
			meta.Lineno)
	}
	return nil
}
