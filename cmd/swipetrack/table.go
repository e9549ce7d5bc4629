package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
)

func renderTable(headers []string, rows [][]string, aligns []text.Align) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	headerRow := make(table.Row, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	tw.AppendHeader(headerRow)

	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, val := range r {
			row[i] = val
		}
		tw.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, len(aligns))
	for i, align := range aligns {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align}
	}
	tw.SetColumnConfigs(configs)

	if width := terminalWidth(); width > 0 {
		tw.SetAllowedRowLength(width)
	}
	return tw.Render()
}

// terminalWidth is 0 when stdout is not a terminal
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
