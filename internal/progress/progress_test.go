package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectSymbols(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		caps TerminalCapabilities
		want ProgressSymbols
	}{
		"unicode": {
			caps: TerminalCapabilities{IsTTY: true, SupportsUnicode: true},
			want: ProgressSymbols{Checkmark: "✓", Failure: "✗", SpinnerSet: 14},
		},
		"ascii": {
			caps: TerminalCapabilities{IsTTY: true},
			want: ProgressSymbols{Checkmark: "[OK]", Failure: "[FAIL]", SpinnerSet: 9},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SelectSymbols(tt.caps))
		})
	}
}

func TestStep_NoTerminal(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want string
	}{
		"success": {
			want: "Fetching tags...\n",
		},
		"failure": {
			err:  errors.New("boom"),
			want: "Fetching tags...\n[FAIL] Fetching pull requests\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			step := Start(&buf, TerminalCapabilities{}, "Fetching tags")
			step.Update("Fetching pull requests")
			step.Done(tt.err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestDetectTerminalCapabilities(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	caps := DetectTerminalCapabilities()
	assert.False(t, caps.SupportsColor)
	if !caps.IsTTY {
		assert.Zero(t, caps.Width)
		assert.False(t, caps.SupportsUnicode)
	}
}
