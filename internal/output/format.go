// Package output provides terminal output helpers for the relnotes CLI.
// It has no dependencies on other relnotes packages.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const defaultWidth = 80

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return defaultWidth
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// PrintStep prints a progress line such as "[2/3] Fetching pull requests...".
func PrintStep(out io.Writer, step, total int, name string) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", cyan(fmt.Sprintf("[%d/%d]", step, total)), white(name+"..."))
}

// PrintSuccess prints a green check followed by message.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), cyan(message))
}

// PrintWarning prints a yellow warning line.
func PrintWarning(out io.Writer, message string) {
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", yellow("!"), message)
}
