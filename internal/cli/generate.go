package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	naturaldate "github.com/tj/go-naturaldate"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	"github.com/ariel-frischer/relnotes/internal/config"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/output"
	"github.com/ariel-frischer/relnotes/internal/progress"
)

type generateOptions struct {
	repo              repoFlags
	fromTag           string
	toTag             string
	ignorePreReleases bool
	since             string
	outputPath        string
	plain             bool
	watch             bool
	timeout           time.Duration
}

var generateFlags generateOptions

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate release notes for a tag",
	Long: `Generate release notes for the pull requests merged between two tags.

When --from-tag is omitted the previous tag is found by version ordering.
The GitHub token is read from GITHUB_TOKEN (a .env file is honored), the
repository from --owner/--repo or GITHUB_REPOSITORY, and the target tag from
--to-tag or a GITHUB_REF of the form refs/tags/<tag>.`,
	Example: `  # Compare v1.2.0 with the tag before it
  relnotes generate --owner octocat --repo hello --to-tag v1.2.0

  # Use a local clone for tags and commits, write to a file
  relnotes generate --local . --to-tag v1.2.0 --output NOTES.md

  # Only look at pull requests merged in the last two weeks
  relnotes generate --to-tag v1.2.0 --since "2 weeks ago"

  # Re-render whenever the config file changes
  relnotes generate --to-tag v1.2.0 --watch`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

func init() {
	generateCmd.GroupID = GroupReleaseNotes
	rootCmd.AddCommand(generateCmd)

	f := generateCmd.Flags()
	addRepoFlags(generateCmd, &generateFlags.repo)
	f.StringVar(&generateFlags.fromTag, "from-tag", "", "Tag to compare against (default: the previous tag)")
	f.StringVar(&generateFlags.toTag, "to-tag", "", "Tag to build release notes for")
	f.BoolVar(&generateFlags.ignorePreReleases, "ignore-pre-releases", false, "Skip pre-release tags when finding the previous tag")
	f.StringVar(&generateFlags.since, "since", "", `Start of the pull request window, e.g. "2024-01-31" or "3 weeks ago"`)
	f.StringVarP(&generateFlags.outputPath, "output", "o", "", "Write release notes to a file instead of stdout")
	f.BoolVar(&generateFlags.plain, "plain", false, "Print raw markdown even on a terminal")
	f.BoolVarP(&generateFlags.watch, "watch", "w", false, "Re-render when the config file changes")
	f.DurationVar(&generateFlags.timeout, "timeout", 0, "Give up after this long (0 = no limit)")
}

// addRepoFlags registers the flags shared by commands that read repository data.
func addRepoFlags(cmd *cobra.Command, flags *repoFlags) {
	f := cmd.Flags()
	f.StringVar(&flags.owner, "owner", "", "Repository owner (default: from GITHUB_REPOSITORY)")
	f.StringVar(&flags.repo, "repo", "", "Repository name (default: from GITHUB_REPOSITORY)")
	f.StringVar(&flags.localPath, "local", "", "Read tags and commits from the clone at this path")
	f.BoolVar(&flags.fetchTags, "fetch", false, "Fetch tags from the remotes before reading a local clone")
}

func runGenerate(cmd *cobra.Command) error {
	flags := generateFlags

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	cfg, err := config.Load(configPathFlag)
	if err != nil {
		return clierrors.ConfigLoadFailed(err)
	}

	owner, repo, err := resolveRepository(flags.repo.owner, flags.repo.repo)
	if err != nil {
		return err
	}
	toTag := resolveToTag(flags.toTag)
	if toTag == "" {
		return clierrors.MissingToTag()
	}
	since, err := parseSince(flags.since, time.Now())
	if err != nil {
		return clierrors.InvalidSince(flags.since, err)
	}

	source, err := releaseSource(ctx, flags.repo)
	if err != nil {
		return err
	}

	notes := &changelog.ReleaseNotes{
		Source: source,
		Config: cfg.ToChangelog(),
		Options: changelog.Options{
			Owner:             owner,
			Repo:              repo,
			FromTag:           flags.fromTag,
			ToTag:             toTag,
			IgnorePreReleases: flags.ignorePreReleases,
			Since:             since,
			Logger:            slog.Default(),
		},
	}

	step := progress.Start(cmd.ErrOrStderr(), progress.DetectTerminalCapabilities(),
		fmt.Sprintf("Collecting pull requests for %s/%s %s", owner, repo, toTag))
	snapshot, err := notes.Collect(ctx)
	step.Done(err)
	if err != nil {
		return generateError(toTag, err)
	}

	if err := writeNotes(cmd, snapshot.Render(notes.Config), flags); err != nil {
		return err
	}

	if !flags.watch {
		return nil
	}
	path := configPathFlag
	if len(cfg.Files) > 0 {
		path = cfg.Files[len(cfg.Files)-1]
	}
	if path == "" {
		return clierrors.NewArgumentError("--watch needs a config file",
			"Pass --config or create one with: relnotes config init")
	}
	return watchConfig(ctx, path, func() error {
		reloaded, err := config.Load(path)
		if err != nil {
			output.PrintWarning(cmd.ErrOrStderr(), clierrors.ConfigLoadFailed(err).Error())
			return nil
		}
		return writeNotes(cmd, snapshot.Render(reloaded.ToChangelog()), flags)
	})
}

func generateError(toTag string, err error) error {
	switch {
	case stderrors.Is(err, changelog.ErrNoPredecessor):
		return clierrors.TagNotFound(toTag, err)
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
		return err
	default:
		return clierrors.FetchFailed(err)
	}
}

// writeNotes writes the document to --output, or to stdout where it is
// highlighted when stdout is a terminal.
func writeNotes(cmd *cobra.Command, notes string, flags generateOptions) error {
	if flags.outputPath != "" {
		if err := os.WriteFile(flags.outputPath, []byte(notes), 0o644); err != nil {
			return clierrors.FileNotWritable(flags.outputPath, err)
		}
		output.PrintSuccess(cmd.ErrOrStderr(), "Wrote "+flags.outputPath)
		return nil
	}
	return printNotes(cmd.OutOrStdout(), notes, flags.plain)
}

func printNotes(w io.Writer, notes string, plain bool) error {
	if !plain {
		plain = !isTerminalWriter(w)
	}
	return output.FormatNotes(notes, w, output.FormatOptions{Plain: plain})
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && output.IsTerminal(f)
}

const dateFormat = "2006-01-02"

// parseSince resolves --since to the start of the given day. Exact dates
// are tried first, then natural language relative to now. Empty means no
// override.
func parseSince(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateFormat, value, now.Location())
	if err != nil {
		t, err = naturaldate.Parse(value, now)
		if err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
}
