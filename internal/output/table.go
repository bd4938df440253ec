package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// FormatTable lays out rows under headers with every column padded to its
// widest cell. Widths are display widths, so emoji and CJK text line up.
func FormatTable(headers []string, rows [][]string) []string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, formatRow(headers, widths))
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	lines = append(lines, formatRow(sep, widths))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths))
	}
	return lines
}

func formatRow(cells []string, widths []int) string {
	var sb strings.Builder
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(cell)
		if i < len(widths)-1 {
			sb.WriteString(strings.Repeat(" ", w-runewidth.StringWidth(cell)))
		}
	}
	return sb.String()
}

// WriteTable writes FormatTable's lines to w, with a bold header unless plain.
func WriteTable(w io.Writer, headers []string, rows [][]string, plain bool) error {
	lines := FormatTable(headers, rows)
	bold := color.New(color.Bold).SprintFunc()
	for i, line := range lines {
		if i == 0 && !plain {
			line = bold(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
