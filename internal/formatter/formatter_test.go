package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/cafkit/internal/caf"
)

func TestFormat_IdentityByDefault(t *testing.T) {
	input := "// scene\n#manifest\n  self   as ui.main\n\n\n#commands\nSpawn {  x : 1 }   \n"

	formatted, err := NewFormatter(false).Format(input)
	require.NoError(t, err)
	assert.Equal(t, input, formatted)
}

func TestFormat_Canonical(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty document",
			input:    "",
			expected: "",
		},
		{
			name:     "blank document",
			input:    " \n\n",
			expected: "",
		},
		{
			name:     "comment only",
			input:    "// nothing yet",
			expected: "// nothing yet\n",
		},
		{
			name:     "spacing collapses to defaults",
			input:    "#manifest\n  self   as\tui.main\n\n\n\n#commands\nSpawn   {  x : 1\n  y:[ 1  2 ] }",
			expected: "#manifest\nself as ui.main\n\n#commands\nSpawn {x:1 y:[1 2]}\n",
		},
		{
			name:     "comments are kept",
			input:    "#commands\nClear // wipe\nTint  \"red\" /* why */\n",
			expected: "#commands\nClear // wipe\nTint \"red\" /* why */\n",
		},
		{
			name:     "leading comment stays in front",
			input:    "\n\n// header\n#import\nui.theme as _",
			expected: "\n\n// header\n#import\nui.theme as _\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatted, err := NewFormatter(true).Format(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, formatted)
		})
	}
}

func TestFormat_CanonicalIsStable(t *testing.T) {
	input := "#manifest\n\"a.caf\"  as a\n\n#commands\nMove ( 1  2 )\nShape   Rect{ w:1  h:2 }\n\n"
	f := NewFormatter(true)

	once, err := f.Format(input)
	require.NoError(t, err)
	twice, err := f.Format(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	_, err = caf.ParseDocument(once)
	assert.NoError(t, err)
}

func TestFormat_InvalidInput(t *testing.T) {
	_, err := NewFormatter(false).Format("#commands\nSpawn {x:")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse CAF document")

	var perr *caf.ParseError
	assert.ErrorAs(t, err, &perr)
}
