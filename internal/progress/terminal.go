// Package progress shows fetch progress on stderr while relnotes talks to
// GitHub or walks a local repository.
package progress

import (
	"os"

	"golang.org/x/term"
)

// TerminalCapabilities describes what the attached terminal can display.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	Width           int
}

// ProgressSymbols are the markers printed when a step finishes.
type ProgressSymbols struct {
	Checkmark  string
	Failure    string
	SpinnerSet int // index into spinner.CharSets
}

// DetectTerminalCapabilities inspects stderr, NO_COLOR and RELNOTES_ASCII.
func DetectTerminalCapabilities() TerminalCapabilities {
	fd := int(os.Stderr.Fd())
	isTTY := term.IsTerminal(fd)

	noColor := os.Getenv("NO_COLOR") != ""
	forceASCII := os.Getenv("RELNOTES_ASCII") == "1"

	width := 0
	if isTTY {
		if w, _, err := term.GetSize(fd); err == nil {
			width = w
		}
	}

	return TerminalCapabilities{
		IsTTY:           isTTY,
		SupportsColor:   isTTY && !noColor,
		SupportsUnicode: isTTY && !forceASCII,
		Width:           width,
	}
}

// SelectSymbols returns Unicode symbols with a braille spinner, or ASCII ones
// with a |/-\ spinner when Unicode is unavailable.
func SelectSymbols(caps TerminalCapabilities) ProgressSymbols {
	if caps.SupportsUnicode {
		return ProgressSymbols{Checkmark: "✓", Failure: "✗", SpinnerSet: 14}
	}
	return ProgressSymbols{Checkmark: "[OK]", Failure: "[FAIL]", SpinnerSet: 9}
}
