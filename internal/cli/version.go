package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnotes/internal/build"
)

// SourceURL is the project source URL.
const SourceURL = "https://github.com/ariel-frischer/relnotes"

var versionPlain bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for relnotes",
	Example: `  relnotes version
  relnotes version --plain`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if versionPlain {
			printPlainVersion(cmd.OutOrStdout())
			return
		}
		printPrettyVersion(cmd.OutOrStdout())
	},
}

func init() {
	versionCmd.GroupID = GroupInfo
	versionCmd.Flags().BoolVar(&versionPlain, "plain", false, "Plain output without formatting")
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = build.Version
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(out io.Writer) {
	fmt.Fprintf(out, "relnotes %s\n", build.Version)
	fmt.Fprintf(out, "commit: %s\n", build.Commit)
	fmt.Fprintf(out, "built: %s\n", build.BuildDate)
	fmt.Fprintf(out, "go: %s\n", runtime.Version())
	fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func printPrettyVersion(out io.Writer) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(out, "%s %s\n", bold("relnotes"), cyan(build.Version))
	fmt.Fprintf(out, "  %s %s\n", dim("commit:  "), build.Commit)
	fmt.Fprintf(out, "  %s %s\n", dim("built:   "), build.BuildDate)
	fmt.Fprintf(out, "  %s %s\n", dim("go:      "), runtime.Version())
	fmt.Fprintf(out, "  %s %s/%s\n", dim("platform:"), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "  %s %s\n", dim("source:  "), SourceURL)
	if build.IsDevBuild() {
		fmt.Fprintf(out, "\n%s\n", dim("development build"))
	}
}
