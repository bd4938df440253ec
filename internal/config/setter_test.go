package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parseDocument(t *testing.T, content string) *yaml.Node {
	t.Helper()
	var root yaml.Node
	if content != "" {
		require.NoError(t, yaml.Unmarshal([]byte(content), &root))
	}
	return &root
}

func TestParseKeyPath(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		path    string
		want    []string
		wantErr error
	}{
		"top-level key": {
			path: "max_pull_requests",
			want: []string{"max_pull_requests"},
		},
		"dotted key": {
			path: "categories.0.title",
			want: []string{"categories", "0", "title"},
		},
		"empty": {
			path:    "",
			wantErr: ErrEmptyKeyPath,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseKeyPath(tt.path)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetNestedValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		initial string
		keyPath []string
		value   any
		want    string
		wantErr string
	}{
		"empty document": {
			keyPath: []string{"sort"},
			value:   "ASC",
			want:    "sort: ASC\n",
		},
		"replaces a scalar": {
			initial: "max_tags_to_fetch: 200\n",
			keyPath: []string{"max_tags_to_fetch"},
			value:   50,
			want:    "max_tags_to_fetch: 50\n",
		},
		"appends after existing keys": {
			initial: "template: Release notes\n",
			keyPath: []string{"empty_template"},
			value:   "Nothing merged",
			want:    "template: Release notes\nempty_template: Nothing merged\n",
		},
		"keeps the line comment": {
			initial: "sort: DESC # newest first\n",
			keyPath: []string{"sort"},
			value:   "ASC",
			want:    "sort: ASC # newest first\n",
		},
		"creates intermediate mappings": {
			keyPath: []string{"profiles", "nightly", "sort"},
			value:   "ASC",
			want:    "profiles:\n    nightly:\n        sort: ASC\n",
		},
		"list value": {
			keyPath: []string{"ignore_labels"},
			value:   []string{"ignore", "dependencies"},
			want:    "ignore_labels:\n    - ignore\n    - dependencies\n",
		},
		"cannot descend into a list": {
			initial: "categories:\n  - title: '## Features'\n",
			keyPath: []string{"categories", "title"},
			value:   "## Changes",
			wantErr: "categories is not a mapping",
		},
		"empty path": {
			keyPath: nil,
			value:   "x",
			wantErr: ErrEmptyKeyPath.Error(),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			root := parseDocument(t, tt.initial)
			err := SetNestedValue(root, tt.keyPath, tt.value)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			out, err := yaml.Marshal(root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestGetNestedValue(t *testing.T) {
	t.Parallel()

	const doc = "sort: ASC\nmax_pull_requests: 20\ncategories:\n  - title: '## Features'\n"

	tests := map[string]struct {
		keyPath []string
		want    string
		wantNil bool
	}{
		"scalar":              {keyPath: []string{"sort"}, want: "ASC"},
		"integer as text":     {keyPath: []string{"max_pull_requests"}, want: "20"},
		"missing key":         {keyPath: []string{"template"}, wantNil: true},
		"through a list":      {keyPath: []string{"categories", "title"}, wantNil: true},
		"empty path":          {keyPath: []string{}, wantNil: true},
		"below a scalar":      {keyPath: []string{"sort", "order"}, wantNil: true},
		"missing nested path": {keyPath: []string{"profiles", "nightly"}, wantNil: true},
	}

	root := parseDocument(t, doc)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := GetNestedValue(root, tt.keyPath)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Value)
		})
	}
}

func TestSetConfigValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		initialContent string
		fileName       string
		key            string
		value          string
		wantContains   []string
		wantErr        string
	}{
		"set new value": {
			key:          "max_pull_requests",
			value:        "50",
			wantContains: []string{"max_pull_requests: 50"},
		},
		"set list value": {
			key:          "ignore_labels",
			value:        "skip-changelog, wip,",
			wantContains: []string{"ignore_labels:", "- skip-changelog", "- wip"},
		},
		"enum value normalized": {
			key:          "sort",
			value:        "asc",
			wantContains: []string{"sort: ASC"},
		},
		"update existing value": {
			initialContent: "max_pull_requests: 3\n",
			key:            "max_pull_requests",
			value:          "10",
			wantContains:   []string{"max_pull_requests: 10"},
		},
		"keeps other keys": {
			initialContent: "template: Release notes\nsort: DESC\n",
			key:            "sort",
			value:          "ASC",
			wantContains:   []string{"template: Release notes", "sort: ASC"},
		},
		"unknown key": {
			key:     "profiles.nightly.sort",
			value:   "ASC",
			wantErr: "unknown configuration key",
		},
		"invalid integer": {
			key:     "max_pull_requests",
			value:   "not-a-number",
			wantErr: "invalid integer",
		},
		"invalid enum value": {
			key:     "sort",
			value:   "sideways",
			wantErr: "valid options: ASC, DESC",
		},
		"object list refused": {
			key:     "categories",
			value:   "Features",
			wantErr: "edit the config file",
		},
		"json file refused": {
			fileName: "relnotes.json",
			key:      "sort",
			value:    "ASC",
			wantErr:  "only YAML config files",
		},
		"broken yaml refused": {
			initialContent: "sort: [unclosed\n",
			key:            "sort",
			value:          "ASC",
			wantErr:        "config.yml",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fileName := tt.fileName
			if fileName == "" {
				fileName = "config.yml"
			}
			configPath := filepath.Join(t.TempDir(), fileName)
			if tt.initialContent != "" {
				require.NoError(t, os.WriteFile(configPath, []byte(tt.initialContent), 0o644))
			}

			err := SetConfigValue(configPath, tt.key, tt.value)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			content, err := os.ReadFile(configPath)
			require.NoError(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, string(content), want)
			}
		})
	}
}

func TestSetConfigValue_CreatesFile(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "relnotes", "config.yml")
	require.NoError(t, SetConfigValue(configPath, "max_back_track_time_days", "30"))

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "max_back_track_time_days: 30\n", string(content))

	cfg, err := LoadWithOptions(LoadOptions{ConfigPath: configPath, ProjectDir: t.TempDir(), SkipUserConfig: true})
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.MaxBackTrackTimeDays)
}

func TestSetConfigValue_PreservesComments(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(`# Release notes for octo/app
max_pull_requests: 3 # keep small
# Older tags are rarely needed
max_tags_to_fetch: 100
`), 0o644))

	require.NoError(t, SetConfigValue(configPath, "max_pull_requests", "5"))

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "max_pull_requests: 5 # keep small")
	assert.Contains(t, string(content), "# Older tags are rarely needed")
	assert.Contains(t, string(content), "max_tags_to_fetch: 100")
}
