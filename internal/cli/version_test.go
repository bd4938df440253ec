package cli

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/relnotes/internal/build"
)

func TestVersionCmd_Registration(t *testing.T) {
	t.Parallel()

	cmd, _, err := rootCmd.Find([]string{"v"})
	require.NoError(t, err)
	assert.Same(t, versionCmd, cmd)
	assert.Equal(t, build.Version, rootCmd.Version)
	assert.NotNil(t, versionCmd.Flags().Lookup("plain"))
}

func TestPrintPlainVersion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printPlainVersion(&buf)

	tests := map[string]struct {
		want string
	}{
		"version line":  {want: "relnotes " + build.Version + "\n"},
		"commit line":   {want: "commit: " + build.Commit + "\n"},
		"build date":    {want: "built: " + build.BuildDate + "\n"},
		"go version":    {want: "go: " + runtime.Version() + "\n"},
		"platform line": {want: "platform: " + runtime.GOOS + "/" + runtime.GOARCH + "\n"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestPrintPrettyVersion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printPrettyVersion(&buf)
	out := buf.String()

	assert.Contains(t, out, "relnotes")
	assert.Contains(t, out, build.Version)
	assert.Contains(t, out, SourceURL)
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
	if build.IsDevBuild() {
		assert.Contains(t, out, "development build")
	}
}

func TestVersionCmd_Plain(t *testing.T) {
	isolateEnv(t)

	stdout, _, code := runRoot(t, "version", "--plain")
	assert.Equal(t, ExitSuccess, code)
	assert.True(t, strings.HasPrefix(stdout, "relnotes "+build.Version+"\n"), stdout)
}
