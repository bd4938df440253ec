package errors

import "fmt"

// MissingToken is returned when no GitHub token is available.
func MissingToken() *CLIError {
	return NewPrerequisiteError(
		"a GitHub token is required",
		"Set GITHUB_TOKEN in the environment or in a .env file",
		"Create a token at https://github.com/settings/tokens with read access to the repository",
	)
}

// MissingRepository is returned when owner or repo cannot be determined.
func MissingRepository() *CLIError {
	return NewArgumentErrorWithUsage(
		"repository owner and name are required",
		"relnotes generate --owner <owner> --repo <repo> --to-tag <tag>",
		"Pass --owner and --repo",
		"Or set GITHUB_REPOSITORY=owner/repo",
	)
}

// InvalidRepository is returned for a GITHUB_REPOSITORY value that is not owner/repo.
func InvalidRepository(value string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid repository %q, expected owner/repo", value),
		"Example: GITHUB_REPOSITORY=octocat/hello-world",
	)
}

// MissingToTag is returned when no target tag is given.
func MissingToTag() *CLIError {
	return NewArgumentErrorWithUsage(
		"a target tag is required",
		"relnotes generate --to-tag <tag>",
		"List the available tags with: relnotes tags",
	)
}

// TagNotFound is returned when a tag is absent or has no earlier tag to compare against.
func TagNotFound(tag string, err error) *CLIError {
	return WrapWithMessage(err, Prerequisite,
		fmt.Sprintf("cannot resolve tag %s", tag),
		"Check the tag exists: relnotes tags",
		"Pass the starting tag explicitly with --from-tag",
		"Raise max_tags_to_fetch if the tag is old",
	)
}

// ConfigLoadFailed is returned when the configuration cannot be loaded.
func ConfigLoadFailed(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"failed to load configuration",
		"Show the effective configuration with: relnotes config show",
		"List the valid keys with: relnotes config keys",
	)
}

// InvalidSince is returned when --since cannot be parsed.
func InvalidSince(value string, err error) *CLIError {
	return WrapWithMessage(err, Argument,
		fmt.Sprintf("cannot parse --since %q", value),
		"Use a date like 2024-01-31 or a phrase like \"3 weeks ago\"",
	)
}

// InvalidFlagCombination creates an error for incompatible flag combinations.
func InvalidFlagCombination(flags string, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
		"Use 'relnotes <command> --help' to see valid options",
	)
}

// FetchFailed wraps a failed read from GitHub or the local clone.
func FetchFailed(err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		"fetching repository data failed",
		"Check your network connection",
		"Verify the token can read the repository",
		"Run with --debug to see each request",
	)
}

// GitNotRepository creates an error when not in a git repository.
func GitNotRepository(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("not a git repository: %s", path),
		"Run relnotes inside a clone of the repository",
		"Or drop --local to read everything from GitHub",
	)
}

// FileNotWritable creates an error when a file cannot be written.
func FileNotWritable(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("cannot write to file: %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure parent directory exists and is writable",
	)
}
