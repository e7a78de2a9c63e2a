package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
)

type QueryCmd struct {
	Query     string `help:"JSONPath query, or the name of a stored query." arg:""`
	Numberify bool   `help:"Convert numbers to floats."`
}

func (cmd *QueryCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx, "query")
	if err != nil {
		return err
	}
	defer s.close()

	query := cmd.Query
	if stored, ok := s.report.GetQuery(query); ok {
		query = stored.QueryString
	}
	res, err := s.report.Query(query, cmd.Numberify)
	if err != nil {
		return err
	}

	t := &table{header: res.Columns, left: len(res.Columns)}
	for _, row := range res.Rows {
		cells := make([]cell, len(row))
		for i, v := range row {
			cells[i] = plain(formatValue(v))
		}
		t.add(cells...)
	}
	t.render(s.stdout, s.styles)
	return nil
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprint(v)
}
