package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	"github.com/ariel-frischer/relnotes/internal/output"
)

var tagsFlags struct {
	repo  repoFlags
	max   int
	plain bool
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags in version order",
	Long: `List tags newest first, in the order used to find a release's
predecessor. Pre-release tags (containing "-") are marked.`,
	Example: `  relnotes tags --local .
  relnotes tags --owner octocat --repo hello --max 20
  relnotes tags --local . --plain | head -1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTags(cmd)
	},
}

func init() {
	tagsCmd.GroupID = GroupReleaseNotes
	rootCmd.AddCommand(tagsCmd)

	addRepoFlags(tagsCmd, &tagsFlags.repo)
	tagsCmd.Flags().IntVar(&tagsFlags.max, "max", 0, "Number of tags to read (default: max_tags_to_fetch)")
	tagsCmd.Flags().BoolVar(&tagsFlags.plain, "plain", false, "Print tag names only")
}

func runTags(cmd *cobra.Command) error {
	tags, err := listTags(cmd, tagsFlags.repo, tagsFlags.max)
	if err != nil {
		return err
	}
	tags = changelog.SortTags(tags)

	out := cmd.OutOrStdout()
	if tagsFlags.plain {
		for _, tag := range tags {
			fmt.Fprintln(out, tag.Name)
		}
		return nil
	}
	if len(tags) == 0 {
		fmt.Fprintln(out, "No tags found.")
		return nil
	}
	return output.WriteTable(out, []string{"TAG", "COMMIT", "PRE-RELEASE"}, tagRows(tags), !isTerminalWriter(out))
}

func tagRows(tags []changelog.Tag) [][]string {
	rows := make([][]string, len(tags))
	for i, tag := range tags {
		pre := ""
		if tag.IsPreRelease() {
			pre = "yes"
		}
		rows[i] = []string{tag.Name, shortSHA(tag.CommitSHA), pre}
	}
	return rows
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
