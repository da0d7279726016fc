package caf

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEscapedStrContents_ControlBytes(t *testing.T) {
	short := map[byte]string{
		0x08: `\b`,
		0x09: `\t`,
		0x0A: `\n`,
		0x0C: `\f`,
		0x0D: `\r`,
	}
	for b := byte(0); b < 0x20; b++ {
		want, ok := short[b]
		if !ok {
			want = fmt.Sprintf(`\u{%02x}`, b)
		}
		t.Run(fmt.Sprintf("0x%02X", b), func(t *testing.T) {
			assert.Equal(t, want, EscapeString(string([]byte{b})))
		})
	}
}

func TestFormatEscapedStrContents(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"quote", "\"", `\"`},
		{"backslash", `\`, `\\`},
		{"space is not escaped", " ", " "},
		{"tab", "\t", `\t`},
		{"start of heading", "\x01", `\u{01}`},
		{"unit separator", "\x1f", `\u{1f}`},
		{"delete passes through", "\x7f", "\x7f"},
		{"utf-8 passes through", "héllo", "héllo"},
		{"mixed run", "a\"b\nc", `a\"b\nc`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			require.NoError(t, FormatEscapedStrContents(&sb, tt.input))
			assert.Equal(t, tt.expected, sb.String())
		})
	}
}

func TestFormatEscapedStrContents_PreservesUTF8Bytes(t *testing.T) {
	out := EscapeString("héllo")
	assert.Equal(t, []byte{'h', 0xC3, 0xA9, 'l', 'l', 'o'}, []byte(out))
}

// countingWriter records how many writes reach it.
type countingWriter struct {
	strings.Builder
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Builder.Write(p)
}

func (w *countingWriter) WriteString(s string) (int, error) {
	w.writes++
	return w.Builder.WriteString(s)
}

func TestFormatEscapedStrContents_BatchesRuns(t *testing.T) {
	var w countingWriter
	require.NoError(t, FormatEscapedStrContents(&w, "abc\ndef"))
	assert.Equal(t, `abc\ndef`, w.String())
	assert.Equal(t, 3, w.writes)
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "plain", input: "abc", expected: "abc"},
		{name: "short escapes", input: `\b\t\n\f\r\"\\\/`, expected: "\b\t\n\f\r\"\\/"},
		{name: "braced unicode", input: `\u{01}\u{e9}\u{1F600}`, expected: "\x01é😀"},
		{name: "unknown escape", input: `\q`, wantErr: true},
		{name: "dangling backslash", input: `abc\`, wantErr: true},
		{name: "json-style unicode", input: `\u00e9`, wantErr: true},
		{name: "too many digits", input: `\u{1234567}`, wantErr: true},
		{name: "surrogate", input: `\u{d800}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unescape(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUnescape_InvertsEscape(t *testing.T) {
	for _, s := range []string{"", "plain", "tab\there", "\x00\x01\x1f", `q"b\s`, "héllo\r\n"} {
		got, err := Unescape(EscapeString(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}
