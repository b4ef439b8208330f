package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// renderTable draws rows under header in a rounded box. Short rows are
// padded by the writer.
func renderTable(header table.Row, rows []table.Row) string {
	if len(header) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	return tw.Render()
}
