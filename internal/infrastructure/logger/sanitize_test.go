package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal string unchanged", "hello world", "hello world"},
		{"path unchanged", "/videos/clip_converted.mp4", "/videos/clip_converted.mp4"},
		{"empty string", "", ""},
		{"newline escaped", "line1\nline2", "line1\\nline2"},
		{"carriage return escaped", "frame=1\rframe=2", "frame=1\\rframe=2"},
		{"tab escaped", "col1\tcol2", "col1\\tcol2"},
		{"null byte escaped", "before\x00after", "before\\x00after"},
		{"bare escape escaped", "text\x1b[31mred", "text\\x1b[31mred"},
		{"bell escaped", "alert\x07bell", "alert\\x07bell"},
		{"DEL escaped", "delete\x7fchar", "delete\\x7fchar"},
		{"unicode preserved", "café 日本語 👋", "café 日本語 👋"},
		{"fake log entry injection", "clip.mp4\nERROR: fake", "clip.mp4\\nERROR: fake"},
		{"filter graph unchanged", "[0:v][wm]overlay=10:10", "[0:v][wm]overlay=10:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeForLog(tt.input))
		})
	}
}

func TestSanitizeForLog_AllControlChars(t *testing.T) {
	for i := 0; i < 32; i++ {
		got := SanitizeForLog(string(rune(i)))
		assert.NotEqual(t, string(rune(i)), got, "control char 0x%02x", i)
		assert.Equal(t, byte('\\'), got[0], "control char 0x%02x", i)
	}
	assert.Equal(t, `\x7f`, SanitizeForLog("\x7f"))
}

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"color", "\x1b[0;94m[download]\x1b[0m  42.5%", "[download]  42.5%"},
		{"bold", "\x1b[1mBOLD\x1b[0m", "BOLD"},
		{"clear screen", "\x1b[2Jcleared", "cleared"},
		{"cursor movement", "\x1b[10;20Hmoved", "moved"},
		{"erase line", "\x1b[Kprogress", "progress"},
		{"no sequences", "plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripANSI(tt.input))
		})
	}
}

func TestProcessLine(t *testing.T) {
	assert.Equal(t, `[download] 10%\x07`, ProcessLine("\x1b[32m[download] 10%\x07\x1b[0m"))
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		_ = SetLevel("info")
		SetOutput(os.Stdout)
	})

	require.NoError(t, SetLevel("warn"))
	Debug.Print("debug line")
	Info.Print("info line")
	Warn.Print("warn line")
	Error.Print("error line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "WARN: ")
	assert.Contains(t, out, "ERROR: ")

	buf.Reset()
	require.NoError(t, SetLevel("DEBUG"))
	Debug.Print("now visible")
	assert.Contains(t, buf.String(), "DEBUG: ")
	assert.Contains(t, buf.String(), "now visible")

	assert.Error(t, SetLevel("verbose"))
}
