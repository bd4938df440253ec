package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// fakeGitHub serves tags, one comparison v1.0.0...v1.1.0 and the pull
// requests merged by its two commits.
func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	first := now.Add(-48 * time.Hour)
	second := now.Add(-24 * time.Hour)

	commit := func(sha, message string, date time.Time) map[string]any {
		return map[string]any{
			"sha": sha,
			"commit": map[string]any{
				"message":   message,
				"author":    map[string]any{"name": "Octo Cat"},
				"committer": map[string]any{"date": date.Format(time.RFC3339)},
			},
		}
	}
	pull := func(number int, title, label, sha string, merged time.Time) map[string]any {
		return map[string]any{
			"number":           number,
			"title":            title,
			"html_url":         "https://github.com/octo/app/pull/" + sha,
			"merged_at":        merged.Format(time.RFC3339),
			"updated_at":       merged.Format(time.RFC3339),
			"merge_commit_sha": sha,
			"user":             map[string]any{"login": "octocat"},
			"labels":           []any{map[string]any{"name": label}},
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/app/tags", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, []any{
			map[string]any{"name": "v1.1.0", "commit": map[string]any{"sha": "c2"}},
			map[string]any{"name": "v1.0.0", "commit": map[string]any{"sha": "c0"}},
		})
	})
	mux.HandleFunc("GET /repos/octo/app/compare/{spec...}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("spec") != "v1.0.0...v1.1.0" {
			writeJSON(t, w, map[string]any{"total_commits": 0, "commits": []any{}})
			return
		}
		writeJSON(t, w, map[string]any{
			"total_commits": 2,
			"commits": []any{
				commit("c1", "Merge pull request #1 from octo/search", first),
				commit("c2", "Merge pull request #2 from octo/crash", second),
			},
			"files": []any{map[string]any{"additions": 3, "deletions": 1, "changes": 4}},
		})
	})
	mux.HandleFunc("GET /repos/octo/app/pulls", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, []any{
			pull(2, "Fix crash", "fix", "c2", second),
			pull(3, "Unrelated change", "feature", "elsewhere", second.Add(-time.Hour)),
			pull(1, "Add search", "feature", "c1", first),
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestGenerate_EndToEnd(t *testing.T) {
	tests := map[string]struct {
		args []string
	}{
		"explicit from tag": {
			args: []string{"generate", "--owner", "octo", "--repo", "app", "--from-tag", "v1.0.0", "--to-tag", "v1.1.0"},
		},
		"predecessor resolved from tags": {
			args: []string{"generate", "--owner", "octo", "--repo", "app", "--to-tag", "v1.1.0"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := isolateEnv(t)
			server := fakeGitHub(t)
			t.Setenv("GITHUB_TOKEN", "test-token")
			t.Setenv("GITHUB_API_URL", server.URL)
			require.NoError(t, os.WriteFile(filepath.Join(dir, ".relnotes.yml"),
				[]byte("pr_template: \"- ${{TITLE}} (#${{NUMBER}})\"\n"), 0o644))

			stdout, stderr, code := runRoot(t, tt.args...)
			require.Equal(t, ExitSuccess, code, stderr)

			assert.Contains(t, stdout, "## 🚀 Features")
			assert.Contains(t, stdout, "- Add search (#1)")
			assert.Contains(t, stdout, "## 🐛 Fixes")
			assert.Contains(t, stdout, "- Fix crash (#2)")
			assert.NotContains(t, stdout, "Unrelated change")
			assert.NotContains(t, stdout, "## 🧪 Tests")
			assert.Less(t, strings.Index(stdout, "Features"), strings.Index(stdout, "Fixes"))
		})
	}
}

func TestGenerate_RepositoryFromEnvironment(t *testing.T) {
	isolateEnv(t)
	server := fakeGitHub(t)
	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("GITHUB_API_URL", server.URL)
	t.Setenv("GITHUB_REPOSITORY", "octo/app")
	t.Setenv("GITHUB_REF", "refs/tags/v1.1.0")

	stdout, stderr, code := runRoot(t, "generate")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Add search")
}

func TestGenerate_OutputFile(t *testing.T) {
	dir := isolateEnv(t)
	server := fakeGitHub(t)
	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("GITHUB_API_URL", server.URL)
	path := filepath.Join(dir, "NOTES.md")

	stdout, stderr, code := runRoot(t, "generate", "--owner", "octo", "--repo", "app",
		"--to-tag", "v1.1.0", "--output", path)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- Add search\n   - PR: #1")
}

func TestGenerate_EmptyRange(t *testing.T) {
	isolateEnv(t)
	server := fakeGitHub(t)
	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("GITHUB_API_URL", server.URL)

	stdout, stderr, code := runRoot(t, "generate", "--owner", "octo", "--repo", "app",
		"--from-tag", "v1.1.0", "--to-tag", "v1.1.0")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "- no changes", strings.TrimSpace(stdout))
}

func TestGenerate_Errors(t *testing.T) {
	tests := map[string]struct {
		env        map[string]string
		config     string
		args       []string
		wantCode   int
		wantStderr string
	}{
		"missing token": {
			args:       []string{"generate", "--owner", "octo", "--repo", "app", "--to-tag", "v1.1.0"},
			wantCode:   ExitMissingPrerequisites,
			wantStderr: "a GitHub token is required",
		},
		"missing repository": {
			env:        map[string]string{"GITHUB_TOKEN": "t"},
			args:       []string{"generate", "--to-tag", "v1.1.0"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "repository owner and name are required",
		},
		"invalid repository": {
			env:        map[string]string{"GITHUB_TOKEN": "t", "GITHUB_REPOSITORY": "just-a-name"},
			args:       []string{"generate", "--to-tag", "v1.1.0"},
			wantCode:   ExitInvalidArguments,
			wantStderr: `invalid repository "just-a-name"`,
		},
		"missing to tag": {
			env:        map[string]string{"GITHUB_TOKEN": "t"},
			args:       []string{"generate", "--owner", "octo", "--repo", "app"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "a target tag is required",
		},
		"branch ref is not a tag": {
			env:        map[string]string{"GITHUB_TOKEN": "t", "GITHUB_REF": "refs/heads/main"},
			args:       []string{"generate", "--owner", "octo", "--repo", "app"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "a target tag is required",
		},
		"invalid config": {
			config:     "sort: sideways\n",
			args:       []string{"generate", "--owner", "octo", "--repo", "app", "--to-tag", "v1.1.0"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "sort",
		},
		"positional arguments": {
			args:       []string{"generate", "v1.1.0"},
			wantCode:   ExitFailure,
			wantStderr: "unknown command",
		},
		"watch without config file": {
			env:        map[string]string{"GITHUB_TOKEN": "t"},
			args:       []string{"generate", "--owner", "octo", "--repo", "app", "--from-tag", "v1.1.0", "--to-tag", "v1.1.0", "--watch"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "--watch needs a config file",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := isolateEnv(t)
			server := fakeGitHub(t)
			t.Setenv("GITHUB_API_URL", server.URL)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			if tt.config != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, ".relnotes.yml"), []byte(tt.config), 0o644))
			}

			_, stderr, code := runRoot(t, tt.args...)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stderr, tt.wantStderr)
		})
	}
}

func TestGenerate_Timeout(t *testing.T) {
	isolateEnv(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/app/compare/{spec...}", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("GITHUB_API_URL", server.URL)

	_, _, code := runRoot(t, "generate", "--owner", "octo", "--repo", "app",
		"--from-tag", "v1.0.0", "--to-tag", "v1.1.0", "--timeout", "50ms")
	assert.Equal(t, ExitTimeout, code)
}

func TestGenerateError(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err          error
		wantCategory clierrors.ErrorCategory
		wantPlain    error
	}{
		"no predecessor": {
			err:          fmt.Errorf("%w for v1.1.0", changelog.ErrNoPredecessor),
			wantCategory: clierrors.Prerequisite,
		},
		"fetch failure": {
			err:          stderrors.New("502 bad gateway"),
			wantCategory: clierrors.Runtime,
		},
		"deadline": {
			err:       context.DeadlineExceeded,
			wantPlain: context.DeadlineExceeded,
		},
		"canceled": {
			err:       context.Canceled,
			wantPlain: context.Canceled,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := generateError("v1.1.0", tt.err)
			if tt.wantPlain != nil {
				assert.Equal(t, tt.wantPlain, got)
				return
			}
			cliErr := clierrors.AsCLIError(got)
			require.NotNil(t, cliErr)
			assert.Equal(t, tt.wantCategory, cliErr.Category)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestParseSince(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	tests := map[string]struct {
		value string
		want  time.Time
	}{
		"empty means no override": {
			value: "",
			want:  time.Time{},
		},
		"exact date": {
			value: "2024-01-31",
			want:  time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		"yesterday": {
			value: "yesterday",
			want:  time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		"relative weeks": {
			value: "2 weeks ago",
			want:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := parseSince(tt.value, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestResolveRepository(t *testing.T) {
	tests := map[string]struct {
		owner     string
		repo      string
		env       string
		wantOwner string
		wantRepo  string
		wantErr   string
	}{
		"flags win": {
			owner: "octo", repo: "app", env: "other/thing",
			wantOwner: "octo", wantRepo: "app",
		},
		"environment only": {
			env:       "octo/app",
			wantOwner: "octo", wantRepo: "app",
		},
		"fills the missing half": {
			owner: "fork", env: "octo/app",
			wantOwner: "fork", wantRepo: "app",
		},
		"nothing set": {
			wantErr: "repository owner and name are required",
		},
		"no slash": {
			env:     "octo",
			wantErr: "invalid repository",
		},
		"too many parts": {
			env:     "octo/app/extra",
			wantErr: "invalid repository",
		},
		"empty owner": {
			env:     "/app",
			wantErr: "invalid repository",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("GITHUB_REPOSITORY", tt.env)

			owner, repo, err := resolveRepository(tt.owner, tt.repo)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, ExitInvalidArguments, exitCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
		})
	}
}

func TestResolveToTag(t *testing.T) {
	tests := map[string]struct {
		flag string
		ref  string
		want string
	}{
		"flag wins":      {flag: "v2.0.0", ref: "refs/tags/v1.0.0", want: "v2.0.0"},
		"tag ref":        {ref: "refs/tags/v1.0.0", want: "v1.0.0"},
		"branch ref":     {ref: "refs/heads/main", want: ""},
		"nothing at all": {want: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("GITHUB_REF", tt.ref)
			assert.Equal(t, tt.want, resolveToTag(tt.flag))
		})
	}
}
