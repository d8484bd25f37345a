package main

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// writeTable prints rows in left-aligned columns sized by display width, so
// accented labels line up in a terminal.
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := range headers {
			if i < len(row) {
				if cw := runewidth.StringWidth(row[i]); cw > widths[i] {
					widths[i] = cw
				}
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i == len(headers)-1 {
				b.WriteString(cell)
				continue
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}

	writeRow(headers)
	rule := make([]string, len(headers))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	writeRow(rule)
	for _, row := range rows {
		writeRow(row)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
