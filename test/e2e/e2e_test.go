package e2e_test

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryYAML = `types:
  - id: Spawn
    kind: struct
    fields:
      - {name: id, type: u32}
      - {name: pos, type: "[f32; 2]"}
      - {name: tags, type: List<String>}
      - {name: shape, type: Shape}
  - id: "[f32; 2]"
    kind: array
    item: f32
    len: 2
  - id: List<String>
    kind: list
    item: String
  - id: Shape
    kind: enum
    variants:
      - {name: Dot}
      - {name: Circle, kind: tuple, fields: [{type: f32}]}
      - {name: Rect, kind: struct, fields: [{name: w, type: f32}, {name: h, type: f32}]}
`

// generateScene writes a document with count Spawn commands and a mix of
// comments and irregular spacing.
func generateScene(count int, rng *rand.Rand) string {
	var sb strings.Builder
	sb.WriteString("// generated scene\n#manifest\nself as scene.generated\n\n#commands")
	shapes := []string{"Dot", "Circle(1.5)", "Rect{w:2.0 h:0.5}"}
	for i := 0; i < count; i++ {
		if i%7 == 0 {
			fmt.Fprintf(&sb, "\n// batch %d", i/7)
		}
		fmt.Fprintf(&sb, "\nSpawn {id:%d  pos:[%d.25 -%d.0]\n  tags:[\"t%d\" \"a\\tb\"] shape:%s}",
			i, rng.Intn(1000), rng.Intn(1000), i, shapes[rng.Intn(len(shapes))])
	}
	sb.WriteString("\n")
	return sb.String()
}

func runCLI(t testing.TB, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../.."}, args...)...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestEndToEnd_LargeSceneRoundTrip converts a large document to JSON and back
// and expects the original bytes.
func TestEndToEnd_LargeSceneRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	dir := t.TempDir()
	scene := filepath.Join(dir, "scene.caf")
	registry := filepath.Join(dir, "types.yaml")
	src := generateScene(500, rand.New(rand.NewSource(1)))
	require.NoError(t, os.WriteFile(scene, []byte(src), 0o644))
	require.NoError(t, os.WriteFile(registry, []byte(registryYAML), 0o644))

	formatted, stderr, err := runCLI(t, "", "fmt", scene)
	require.NoError(t, err, stderr)
	assert.Equal(t, src, formatted)

	jsonOut, stderr, err := runCLI(t, "", "json", scene)
	require.NoError(t, err, stderr)

	rebuilt, stderr, err := runCLI(t, jsonOut, "from-json", "--schema", registry, "--recover", scene)
	require.NoError(t, err, stderr)
	assert.Equal(t, src, rebuilt)

	count, stderr, err := runCLI(t, "", "query", scene, "$.commands[*].Spawn.id")
	require.NoError(t, err, stderr)
	assert.Equal(t, 500, strings.Count(count, "\n"))
}

// TestEndToEnd_CanonicalIsIdempotent formats a document canonically twice.
func TestEndToEnd_CanonicalIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	dir := t.TempDir()
	scene := filepath.Join(dir, "scene.caf")
	require.NoError(t, os.WriteFile(scene, []byte(generateScene(20, rand.New(rand.NewSource(2)))), 0o644))

	_, stderr, err := runCLI(t, "", "fmt", "--canonical", "-w", scene)
	require.NoError(t, err, stderr)
	once, err := os.ReadFile(scene)
	require.NoError(t, err)

	again, stderr, err := runCLI(t, "", "fmt", "--canonical", scene)
	require.NoError(t, err, stderr)
	assert.Equal(t, string(once), again)
	assert.NotContains(t, again, "  pos", "layout whitespace is reset")
	assert.Contains(t, again, "// batch 0", "comments are kept")
}

// TestEndToEnd_EdgeCases runs inputs that must be rejected or accepted as-is.
func TestEndToEnd_EdgeCases(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty file", "", ""},
		{"comments only", "/* nothing */\n// here\n", ""},
		{"crlf line endings", "#commands\r\nClear\r\n", ""},
		{"control characters in strings", "#commands\nSay \"\\u{01}\\u{1f}\\n\"\n", ""},
		{"unknown section", "#scene\n", "expected a section tag"},
		{"two sections on one line", "#manifest #commands\n", "expected a line break before section"},
		{"unterminated comment", "/* open", "line 1"},
	}

	dir := t.TempDir()
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("case%d.caf", i))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			out, stderr, err := runCLI(t, "", "fmt", path)
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, stderr, tt.wantErr)
				return
			}
			require.NoError(t, err, stderr)
			assert.Equal(t, tt.content, out)
		})
	}
}
