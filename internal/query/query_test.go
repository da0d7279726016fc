package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/cafkit/internal/caf"
	"github.com/mcncl/cafkit/internal/models"
)

const sceneDoc = `#manifest
self as ui.main

#import
ui.theme as _

#commands
Spawn {x:1 y:2}
Spawn {x:3 y:4.5}
Label "hello"
Clear
`

func TestRun(t *testing.T) {
	doc, err := caf.ParseDocument(sceneDoc)
	require.NoError(t, err)

	tests := []struct {
		name     string
		selector string
		expected []any
	}{
		{"nested field", "$.commands[*].Spawn.x", []any{int64(1), int64(3)}},
		{"float keeps kind", "$.commands[1].Spawn.y", []any{4.5}},
		{"manifest key", "$.manifest[0].key", []any{"ui.main"}},
		{"import alias", "$.imports[*].alias", []any{"_"}},
		{"string payload", "$.commands[2].Label", []any{"hello"}},
		{"no match", "$.commands[*].Missing", []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Run(doc, tt.selector)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.expected, got)
		})
	}
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile("$.commands[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jsonpath '$.commands['")
}

func TestQuery_GetOnNormalizedJSON(t *testing.T) {
	root := models.JSONObject{
		"items": models.JSONArray{
			models.JSONObject{"n": json.Number("7")},
			models.JSONObject{"n": json.Number("8.25")},
		},
	}

	q, err := Compile("$.items[*].n")
	require.NoError(t, err)
	assert.Equal(t, "$.items[*].n", q.String())
	assert.Equal(t, []any{int64(7), 8.25}, q.Get(root))
}

func TestFormat(t *testing.T) {
	results := []any{
		map[string]any{"b": int64(1), "a": "x"},
		int64(3),
	}
	assert.Equal(t, "{\"a\":\"x\",\"b\":1}\n3\n", Format(results, 0))
	assert.Empty(t, Format(nil, 2))
}
