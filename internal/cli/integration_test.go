package cli_test

import (
	"bytes"
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
      - {name: at, type: "(f32, f32)"}
      - {name: name, type: String}
  - id: "(f32, f32)"
    kind: tuple
    fields: [{type: f32}, {type: f32}]
  - id: Clear
    kind: struct
`

const sceneDoc = `// scene
#manifest
self as scene.main

#commands
Spawn {at:(1.0 2.5) name:"hero"}   // player
Clear
`

// runCLI runs the cafkit binary from source with args and stdin.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../.."}, args...)...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "types.yaml"), []byte(registryYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.caf"), []byte(sceneDoc), 0o644))
	return dir
}

// TestCLI_FmtRoundTrip checks that fmt reproduces the file byte for byte
func TestCLI_FmtRoundTrip(t *testing.T) {
	dir := setup(t)

	stdout, stderr, err := runCLI(t, "", "fmt", filepath.Join(dir, "scene.caf"))
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, sceneDoc, stdout)
}

// TestCLI_JSONAndBack converts a document to JSON and rebuilds it with layout recovery
func TestCLI_JSONAndBack(t *testing.T) {
	dir := setup(t)
	scene := filepath.Join(dir, "scene.caf")

	jsonOut, stderr, err := runCLI(t, "", "json", scene)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Contains(t, jsonOut, `"name": "hero"`)

	rebuilt, stderr, err := runCLI(t, jsonOut, "from-json",
		"--schema", filepath.Join(dir, "types.yaml"),
		"--recover", scene)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, sceneDoc, rebuilt)
}

// TestCLI_FromJSONToFile writes a fresh commands section to a file
func TestCLI_FromJSONToFile(t *testing.T) {
	dir := setup(t)
	out := filepath.Join(dir, "out.caf")

	_, stderr, err := runCLI(t, `[{"Spawn": {"at": [0, 1], "name": "x"}}]`, "from-json",
		"-s", filepath.Join(dir, "types.yaml"), "-o", out)
	require.NoError(t, err, "CLI command failed: %s", stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "#commands\nSpawn {at:(0 1) name:\"x\"}\n", string(data))
}

// TestCLI_Query runs a JSONPath expression
func TestCLI_Query(t *testing.T) {
	dir := setup(t)

	stdout, stderr, err := runCLI(t, "", "query", filepath.Join(dir, "scene.caf"), "$.commands[0].Spawn.name")
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, "\"hero\"\n", stdout)
}

// TestCLI_Check resolves a manifest graph under an assets root
func TestCLI_Check(t *testing.T) {
	dir := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "game.caf"),
		[]byte("#manifest\nself as game\n\"scene.caf\" as scene.main\n\n#import\nscene.main as _\n"), 0o644))

	stdout, stderr, err := runCLI(t, "", "check", filepath.Join(dir, "game.caf"), "--root", dir)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Contains(t, stdout, "ok: 2 files, 2 manifest keys")
}

// TestCLI_ConfigFile picks the registry up from .cafkit.yml
func TestCLI_ConfigFile(t *testing.T) {
	dir := setup(t)
	cfg := filepath.Join(dir, ".cafkit.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("schema: types.yaml\n"), 0o644))

	stdout, stderr, err := runCLI(t, `[{"Clear": null}]`, "--config", cfg, "from-json")
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, "#commands\nClear\n", stdout)
}

// TestCLI_InvalidDocument reports the line and column of a parse error
func TestCLI_InvalidDocument(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.caf")
	require.NoError(t, os.WriteFile(bad, []byte("#commands\nSpawn {at:"), 0o644))

	_, stderr, err := runCLI(t, "", "fmt", bad)
	assert.Error(t, err, "CLI should fail with an invalid document")
	assert.Contains(t, stderr, "Parse error:")
	assert.Contains(t, stderr, "line 2")
}

// TestCLI_UnknownCommandType names the unregistered type
func TestCLI_UnknownCommandType(t *testing.T) {
	dir := setup(t)

	_, stderr, err := runCLI(t, `[{"Teleport": null}]`, "from-json", "-s", filepath.Join(dir, "types.yaml"))
	assert.Error(t, err)
	assert.Contains(t, stderr, "Conversion error:")
	assert.Contains(t, stderr, "Teleport")
}

// TestCLI_EmptyInput tests from-json with empty stdin
func TestCLI_EmptyInput(t *testing.T) {
	dir := setup(t)

	_, stderr, err := runCLI(t, "", "from-json", "-s", filepath.Join(dir, "types.yaml"))
	assert.Error(t, err, "CLI should fail with empty input")
	assert.Contains(t, stderr, "empty")
}

// TestCLI_Version tests the version flag
func TestCLI_Version(t *testing.T) {
	stdout, stderr, err := runCLI(t, "", "--version")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout+stderr, "0.1.0")
}

// TestCLI_Help tests the help output
func TestCLI_Help(t *testing.T) {
	stdout, stderr, err := runCLI(t, "", "--help")
	require.NoError(t, err)

	helpOutput := stdout + stderr
	assert.Contains(t, helpOutput, "Usage: cafkit")
	for _, cmd := range []string{"fmt", "json", "from-json", "query", "check", "schema"} {
		assert.Contains(t, helpOutput, cmd)
	}
	assert.Contains(t, helpOutput, "--config")
	assert.Contains(t, helpOutput, "--debug")
}
