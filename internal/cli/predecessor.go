package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	"github.com/ariel-frischer/relnotes/internal/config"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
)

var predecessorFlags struct {
	repo              repoFlags
	ignorePreReleases bool
	max               int
}

var predecessorCmd = &cobra.Command{
	Use:   "predecessor <tag>",
	Short: "Print the tag a release would be compared with",
	Long: `Print the tag that precedes <tag> by version ordering. This is the tag
generate compares against when --from-tag is not given.`,
	Example: `  relnotes predecessor v1.2.0 --local .
  relnotes predecessor v1.2.0 --owner octocat --repo hello --ignore-pre-releases`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPredecessor(cmd, args[0])
	},
}

func init() {
	predecessorCmd.GroupID = GroupReleaseNotes
	rootCmd.AddCommand(predecessorCmd)

	addRepoFlags(predecessorCmd, &predecessorFlags.repo)
	predecessorCmd.Flags().BoolVar(&predecessorFlags.ignorePreReleases, "ignore-pre-releases", false, "Skip pre-release tags")
	predecessorCmd.Flags().IntVar(&predecessorFlags.max, "max", 0, "Number of tags to read (default: max_tags_to_fetch)")
}

func runPredecessor(cmd *cobra.Command, target string) error {
	flags := predecessorFlags
	tags, err := listTags(cmd, flags.repo, flags.max)
	if err != nil {
		return err
	}

	tag, ok := changelog.FindPredecessor(tags, target, flags.ignorePreReleases, slog.Default())
	if !ok {
		return clierrors.TagNotFound(target, changelog.ErrNoPredecessor)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tag.Name)
	return nil
}

// listTags reads up to max tags (max_tags_to_fetch when max is 0) from the
// source selected by flags.
func listTags(cmd *cobra.Command, flags repoFlags, max int) ([]changelog.Tag, error) {
	if max <= 0 {
		cfg, err := config.Load(configPathFlag)
		if err != nil {
			return nil, clierrors.ConfigLoadFailed(err)
		}
		max = cfg.MaxTagsToFetch
	}

	var owner, repo string
	if flags.localPath == "" {
		var err error
		if owner, repo, err = resolveRepository(flags.owner, flags.repo); err != nil {
			return nil, err
		}
	}

	source, err := tagSource(cmd.Context(), flags)
	if err != nil {
		return nil, err
	}
	tags, err := source.Tags(cmd.Context(), owner, repo, max)
	if err != nil {
		return nil, clierrors.FetchFailed(err)
	}
	return tags, nil
}
