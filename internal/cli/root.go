// Package cli implements the relnotes command tree.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/git"
	"github.com/ariel-frischer/relnotes/internal/logging"
)

// Command groups shown in help output.
const (
	GroupReleaseNotes  = "release-notes"
	GroupConfiguration = "configuration"
	GroupInfo          = "info"
)

var (
	configPathFlag string
	debugFlag      bool
	verboseFlag    bool
	logJSONFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "relnotes",
	Short: "Generate release notes from merged pull requests",
	Long: `relnotes builds release notes for a tag from the pull requests merged
since the previous tag. Pull requests are grouped into categories by label
and rendered through configurable templates.

Repository data comes from the GitHub API, or from a local clone with --local
(pull requests are always read from GitHub).`,
	Example: `  # Notes for v1.2.0, comparing against the previous tag
  relnotes generate --owner octocat --repo hello --to-tag v1.2.0

  # Which tag would v1.2.0 be compared with?
  relnotes predecessor v1.2.0 --local .

  # Start a configuration file
  relnotes config init`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Real environment variables win over .env values.
		_ = godotenv.Load()
		setupLogging()
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupReleaseNotes, Title: "Release Notes:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
		&cobra.Group{ID: GroupInfo, Title: "Info:"},
	)

	rootCmd.PersistentFlags().StringVarP(&configPathFlag, "config", "c", "", "Config file (default: .relnotes.yml, .relnotes.json or .github/relnotes.*)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log requests and git operations")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log progress details")
	rootCmd.PersistentFlags().BoolVar(&logJSONFlag, "log-json", false, "Write logs as JSON")
}

func setupLogging() {
	level := slog.LevelWarn
	switch {
	case debugFlag:
		level = slog.LevelDebug
	case verboseFlag:
		level = slog.LevelInfo
	case os.Getenv("RELNOTES_LOG_LEVEL") != "":
		level = logging.ParseLevel(os.Getenv("RELNOTES_LOG_LEVEL"))
	}
	logging.Init(logJSONFlag, level)

	if debugFlag {
		git.SetDebugLogger(func(format string, args ...any) {
			slog.Debug(fmt.Sprintf(format, args...))
		})
	} else {
		git.SetDebugLogger(nil)
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}

	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		clierrors.FprintError(rootCmd.ErrOrStderr(), cliErr)
	} else {
		clierrors.FprintError(rootCmd.ErrOrStderr(), clierrors.Wrap(err, clierrors.Runtime))
	}
	return exitCode(err)
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return ExitTimeout
	}
	cliErr := clierrors.AsCLIError(err)
	if cliErr == nil {
		return ExitFailure
	}
	switch cliErr.Category {
	case clierrors.Argument, clierrors.Configuration:
		return ExitInvalidArguments
	case clierrors.Prerequisite:
		return ExitMissingPrerequisites
	default:
		return ExitFailure
	}
}
