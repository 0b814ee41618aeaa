package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	harnessScenarios = "../harness/testdata/scenarios"
	harnessGolden    = "../harness/testdata/golden"

	// cliScenario touches no golden file; its single read fails with
	// NOT_SUPPORTED as expected.
	cliScenario = `name: %s
description: Read without a catalog
registry:
  endpoints:
    - id: "{0.0.0.00000000}.{83a9be54-901e-4429-993b-c9088e3028a0}"
      flow: playback
flow:
  - do: read
    expect:
      error: NOT_SUPPORTED
`
)

func writeScenario(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(body), 0o644))
}

func executeTest(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := executeTest(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := executeTest(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := executeTest(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := executeTest(t, "json", t.TempDir())
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	out, err := executeTest(t, "text", harnessScenarios, "--golden", harnessGolden)
	require.NoError(t, err, out)

	assert.Contains(t, out, "✓ main_learn_apply")
	assert.Contains(t, out, "✓ effect_two_devices")
	assert.Contains(t, out, "✓ legacy_catalog")
	assert.Contains(t, out, "Passed: 3, Failed: 0, Total: 3")
}

func TestTestCommandFilterJSON(t *testing.T) {
	out, err := executeTest(t, "json", harnessScenarios, "--golden", harnessGolden, "--filter", "effect_*")
	require.NoError(t, err, out)

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, 1, response.Data.Total)
	require.Len(t, response.Data.Scenarios, 1)
	assert.Equal(t, "effect_two_devices", response.Data.Scenarios[0].Name)
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	root := t.TempDir()
	scenarios := filepath.Join(root, "scenarios")
	writeScenario(t, scenarios, "unsupported", strings.ReplaceAll(cliScenario, "%s", "unsupported"))

	out, err := executeTest(t, "text", scenarios, "--update")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ unsupported (golden updated)")

	trace, err := os.ReadFile(filepath.Join(root, "golden", "unsupported.trace.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(trace), `"error":"NOT_SUPPORTED"`)
	assert.FileExists(t, filepath.Join(root, "golden", "unsupported.catalog.golden"))

	out, err = executeTest(t, "text", scenarios)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ unsupported\n")
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	root := t.TempDir()
	scenarios := filepath.Join(root, "scenarios")
	writeScenario(t, scenarios, "unsupported", strings.ReplaceAll(cliScenario, "%s", "unsupported"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "golden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "golden", "unsupported.trace.golden"), []byte("{}\n"), 0o644))

	out, err := executeTest(t, "text", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ unsupported")
	assert.Contains(t, out, "trace does not match golden file")
	assert.NotContains(t, out, "catalog does not match")
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "bad", "name: bad\nflow: []\n")

	out, err := executeTest(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ bad.yaml")
	assert.Contains(t, out, "failed to load scenario")
	assert.Contains(t, out, "Passed: 0, Failed: 1, Total: 1")
}

func TestTestHelpText(t *testing.T) {
	out, err := executeTest(t, "text", "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "simulated registry")
	assert.Contains(t, out, "--update")
	assert.Contains(t, out, "--filter")
	assert.Contains(t, out, "--golden")
	assert.Contains(t, out, "scenarios-dir")
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test1.yaml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test2.yml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ignore.txt"), []byte(""), 0o644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "fx-bass.yaml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "fx-loudness.yaml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "main-learn.yaml"), []byte(""), 0o644))

	files, err := findScenarioFiles(tmpDir, "fx-*")
	require.NoError(t, err)
	assert.Len(t, files, 2)
	for _, f := range files {
		assert.True(t, strings.HasPrefix(filepath.Base(f), "fx-"), f)
	}

	_, err = findScenarioFiles(tmpDir, "[")
	assert.Error(t, err)
}

func TestFindScenarioFilesSubdirectories(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	require.NoError(t, os.MkdirAll(subDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "root.yaml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "sub.yaml"), []byte(""), 0o644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestGoldenFiles(t *testing.T) {
	g := goldenFiles{dir: filepath.Join(t.TempDir(), "golden"), name: "s"}
	assert.Equal(t, filepath.Join(g.dir, "s.trace.golden"), g.tracePath())
	assert.Equal(t, filepath.Join(g.dir, "s.catalog.golden"), g.catalogPath())

	// Missing goldens are not mismatches.
	mismatches, err := g.compare([]byte("t"), []byte("c"))
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	require.NoError(t, g.write([]byte("t"), []byte("c")))
	mismatches, err = g.compare([]byte("t"), []byte("c"))
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	mismatches, err = g.compare([]byte("t2"), []byte("c2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"trace", "catalog"}, mismatches)
}
