package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "testdata/scenarios"

func TestTestCommandMissingArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{}) // Missing both directories

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg")
}

func TestTestCommandNonExistentTypesDir(t *testing.T) {
	_, _, err := execute(t, "test", "/nonexistent/types", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "types directory not found")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, _, err := execute(t, "test", t.TempDir(), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, _, err := execute(t, "test", t.TempDir(), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "test", t.TempDir(), t.TempDir())
	require.NoError(t, err)

	var res TestResult
	resp := decode(t, out, &res)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Scenarios)
}

func TestTestCommandRunsScenarios(t *testing.T) {
	out, _, err := execute(t, "test", "testdata/types", scenariosDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "[pass] bump\n")
	assert.Contains(t, out, "[pass] team_cycle\n")
	assert.Contains(t, out, "Test Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommandFilterJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "test", "testdata/types", scenariosDir, "--filter", "team*")
	require.NoError(t, err)

	var res TestResult
	decode(t, out, &res)
	assert.Equal(t, TestResult{
		Scenarios: []ScenarioResult{{Name: "team_cycle", Pass: true}},
		Passed:    1,
		Total:     1,
	}, res)
}

// copyScenario copies the bump scenario and its golden file into a fresh
// directory so tests can modify them.
func copyScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"bump.yaml", filepath.Join("golden", "bump.golden")} {
		data, err := os.ReadFile(filepath.Join(scenariosDir, name))
		require.NoError(t, err)
		writeFile(t, dir, name, string(data))
	}
	return dir
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := copyScenario(t)
	golden := filepath.Join(dir, "golden", "bump.golden")
	require.NoError(t, os.WriteFile(golden, []byte("cycles: 3\n"), 0644))

	out, _, err := execute(t, "test", "testdata/types", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "[FAIL] bump")
	assert.Contains(t, out, "does not match golden file")

	out, _, err = execute(t, "test", "testdata/types", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "[pass] bump (golden updated)")

	updated, err := os.ReadFile(golden)
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(scenariosDir, "golden", "bump.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(updated))
}

func TestTestCommandFailedAssertions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wrong.yaml", `name: wrong
description: A lone location is created, not a component
declarations: [plant/plant.cue]
new:
  objects:
    - ref: hall
      type: Location
      fields: {id: 00000000-0000-4000-8000-000000000001, name: hall}
assertions:
  - {type: partition, partition: created, sets: [Component]}
`)
	writeFile(t, dir, "broken.yaml", "name: broken\nassertion: []\n")

	out, _, err := execute(t, "--format", "json", "test", "testdata/types", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var res TestResult
	resp := decode(t, out, &res)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 2, res.Failed)
	for _, s := range res.Scenarios {
		assert.False(t, s.Pass)
		assert.NotEmpty(t, s.Errors, s.Name)
	}
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, "test1.yaml", "")
	writeFile(t, tmpDir, "test2.yml", "")
	writeFile(t, tmpDir, "ignore.txt", "")
	writeFile(t, tmpDir, "golden/test1.yaml", "")

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2, "golden directories are skipped")
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, "plant-move.yaml", "")
	writeFile(t, tmpDir, "plant-bump.yaml", "")
	writeFile(t, tmpDir, "team-cycle.yaml", "")

	files, err := findScenarioFiles(tmpDir, "plant-*")
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.Regexp(t, `plant-\w+\.yaml$`, f)
	}

	_, err = findScenarioFiles(tmpDir, "[")
	assert.Error(t, err)
}

func TestFindScenarioFilesSubdirectories(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "root.yaml", "")
	writeFile(t, tmpDir, "subdir/sub.yaml", "")

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestGoldenFilePath(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"/path/to/scenario.yaml", "/path/to/golden/scenario.golden"},
		{"/path/to/scenario.yml", "/path/to/golden/scenario.golden"},
		{"scenarios/test.yaml", "scenarios/golden/test.golden"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, goldenFilePath(tc.input))
	}
}
