package cli

import "fmt"

// Exit codes for the relnotes CLI.
const (
	// ExitSuccess indicates the command completed.
	ExitSuccess = 0

	// ExitFailure indicates release notes could not be generated.
	ExitFailure = 1

	// ExitInvalidArguments indicates invalid flags, arguments or configuration.
	ExitInvalidArguments = 3

	// ExitMissingPrerequisites indicates a missing token, repository or tag.
	ExitMissingPrerequisites = 4

	// ExitTimeout indicates the --timeout deadline passed.
	ExitTimeout = 5
)

// ExitError ends the command with Code after its output was already printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError returns an ExitError for code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}
