package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// FormatOptions controls terminal rendering of release notes.
type FormatOptions struct {
	Plain    bool // write the markdown unchanged
	MaxWidth int  // 0 means the terminal width
}

var (
	headingStyle = color.New(color.FgCyan, color.Bold)
	bulletStyle  = color.New(color.FgGreen)
)

// FormatNotes writes markdown release notes for a terminal. Headings are
// highlighted and long list items wrap under their text. With Plain set the
// document is written byte for byte.
func FormatNotes(notes string, w io.Writer, opts FormatOptions) error {
	if opts.Plain {
		_, err := io.WriteString(w, notes)
		return err
	}

	width := resolveWidth(opts.MaxWidth)
	lines := strings.Split(notes, "\n")
	for i, line := range lines {
		if i == len(lines)-1 && line == "" {
			break
		}
		if _, err := fmt.Fprintln(w, formatLine(line, width)); err != nil {
			return err
		}
	}
	return nil
}

func formatLine(line string, width int) string {
	trimmed := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(trimmed)]

	switch {
	case strings.HasPrefix(trimmed, "#"):
		return headingStyle.Sprint(line)
	case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
		marker, text := trimmed[:2], trimmed[2:]
		hang := indent + "  "
		return indent + bulletStyle.Sprint(marker) + wrapText(text, width-len(hang), hang)
	default:
		return line
	}
}

func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	return GetTerminalWidth()
}

// wrapText wraps text at spaces so no line exceeds maxWidth display
// columns. Continuation lines are prefixed with indent. Words longer than
// maxWidth are left whole.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || runewidth.StringWidth(text) <= maxWidth {
		return text
	}

	var lines []string
	var current strings.Builder
	currentWidth := 0
	for _, word := range strings.Fields(text) {
		wordWidth := runewidth.StringWidth(word)
		if currentWidth > 0 && currentWidth+1+wordWidth > maxWidth {
			lines = append(lines, current.String())
			current.Reset()
			currentWidth = 0
		}
		if currentWidth > 0 {
			current.WriteByte(' ')
			currentWidth++
		}
		current.WriteString(word)
		currentWidth += wordWidth
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return strings.Join(lines, "\n"+indent)
}
