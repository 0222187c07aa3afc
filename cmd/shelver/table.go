package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. Cells wider than wrap are wrapped; zero
// uses the default width.
type column struct {
	title string
	right bool
	wrap  int
}

const defaultColumnWrap = 72

// renderTable draws rows under cols with rounded borders. Missing cells in
// short rows render empty.
func renderTable(cols []column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		header[i] = c.title
		cfg := table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft, WidthMax: c.wrap}
		if cfg.WidthMax == 0 {
			cfg.WidthMax = defaultColumnWrap
		}
		if c.right {
			cfg.Align = text.AlignRight
		}
		configs[i] = cfg
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
