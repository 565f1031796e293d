package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/signkey/internal/errors"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func TestSemanticColorsExist(t *testing.T) {
	tests := []struct {
		name  string
		color lipgloss.Color
	}{
		{"ColorSuccess", ColorSuccess},
		{"ColorError", ColorError},
		{"ColorWarning", ColorWarning},
		{"ColorInfo", ColorInfo},
		{"ColorPrimary", ColorPrimary},
		{"ColorSecondary", ColorSecondary},
		{"ColorMuted", ColorMuted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, string(tt.color), "%s should not be empty", tt.name)
		})
	}
}

func TestStylesRenderPlainWithoutColor(t *testing.T) {
	DisableColors()
	assert.Equal(t, "ok", SuccessStyle().Render("ok"))
	assert.Equal(t, "bad", ErrorStyle().Render("bad"))
	assert.Equal(t, "hmm", WarningStyle().Render("hmm"))
	assert.Equal(t, "0.1s", MutedStyle().Render("0.1s"))
}

func TestRenderFields(t *testing.T) {
	var buf bytes.Buffer
	RenderFields(&buf, "Public key new.key.pub", []Field{
		{Label: "Key ID", Value: "0807060504030201"},
		{Label: "Algorithm", Value: "Ed25519"},
	})

	want := "✓ Public key new.key.pub\n" +
		"  Key ID     0807060504030201\n" +
		"  Algorithm  Ed25519\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderFields_NoFields(t *testing.T) {
	var buf bytes.Buffer
	RenderFields(&buf, "Done", nil)
	assert.Equal(t, "✓ Done\n", buf.String())
}

func TestRenderError(t *testing.T) {
	t.Run("structured error keeps its layout", func(t *testing.T) {
		var buf bytes.Buffer
		RenderError(&buf, errors.New(errors.ErrKey, "Key already exists", "Use --force."))

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "✗ Key already exists\n"))
		assert.Contains(t, out, "Use --force.")
		assert.Equal(t, 1, strings.Count(out, SymbolFail))
	})

	t.Run("plain error gets a symbol", func(t *testing.T) {
		var buf bytes.Buffer
		RenderError(&buf, assert.AnError)
		assert.Equal(t, "✗ "+assert.AnError.Error()+"\n", buf.String())
	})
}

func TestSpinner_Success(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Generating key")
	assert.Equal(t, SpinnerPending, s.State())

	s.Start()
	assert.Equal(t, SpinnerInProgress, s.State())
	time.Sleep(2 * spinnerInterval)
	s.Success()

	assert.Equal(t, SpinnerSuccess, s.State())
	out := buf.String()
	assert.Contains(t, out, "Generating key...")
	assert.Contains(t, out, "\r")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\r")
	final := lines[len(lines)-1]
	assert.True(t, strings.HasPrefix(final, "✓ Generating key "), "final line: %q", final)
	assert.True(t, strings.HasSuffix(final, "s"))
}

func TestSpinner_Fail(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Generating key")
	s.Start()
	s.Fail()

	assert.Equal(t, SpinnerFailed, s.State())
	assert.Contains(t, buf.String(), "✗ Generating key")
}

func TestSpinner_StartStopIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "x")

	s.Stop()
	assert.Empty(t, buf.String(), "stop before start writes nothing")

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	out := buf.String()
	require.NotEmpty(t, out)
	assert.True(t, strings.HasSuffix(out, "\r"), "line is cleared after stop: %q", out)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{50 * time.Millisecond, "0.05s"},
		{300 * time.Millisecond, "0.3s"},
		{1200 * time.Millisecond, "1.2s"},
		{65 * time.Second, "65.0s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.d))
		})
	}
}
