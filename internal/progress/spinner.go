package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Step reports one long-running step. Without a terminal it prints plain
// status lines instead of animating.
type Step struct {
	out     io.Writer
	symbols ProgressSymbols
	spin    *spinner.Spinner
	message string
}

// Start begins a step labeled message and writes progress to out.
func Start(out io.Writer, caps TerminalCapabilities, message string) *Step {
	s := &Step{out: out, symbols: SelectSymbols(caps), message: message}
	if !caps.IsTTY {
		fmt.Fprintf(out, "%s...\n", message)
		return s
	}
	s.spin = spinner.New(spinner.CharSets[s.symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(out))
	s.spin.Suffix = " " + message + "..."
	s.spin.Start()
	return s
}

// Update changes the label of a running step.
func (s *Step) Update(message string) {
	s.message = message
	if s.spin != nil {
		s.spin.Lock()
		s.spin.Suffix = " " + message + "..."
		s.spin.Unlock()
	}
}

// Done stops the step, marking it finished or failed according to err.
func (s *Step) Done(err error) {
	symbol := s.symbols.Checkmark
	if err != nil {
		symbol = s.symbols.Failure
	}
	if s.spin != nil {
		s.spin.Stop()
	} else if err == nil {
		return
	}
	fmt.Fprintf(s.out, "%s %s\n", symbol, s.message)
}
