package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDeclarations(t *testing.T) {
	out, _, err := execute(t, "validate", plantTypes)
	require.NoError(t, err)
	assert.Contains(t, out, "Component")
	assert.Contains(t, out, "Location")
	assert.Contains(t, out, "[ok] 3 type(s) declared in 1 file(s)")
}

func TestValidateDeclarationsJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate", orgTypes)
	require.NoError(t, err)

	var res ValidationResult
	resp := decode(t, out, &res)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, res.Valid)
	assert.ElementsMatch(t, []string{"Org", "Team", "Person"}, res.Types)
	assert.Equal(t, 1, res.FileCount)
}

func TestValidateVerboseOutput(t *testing.T) {
	out, errOut, err := execute(t, "--verbose", "validate", plantTypes)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Loading declarations from: "+plantTypes)
	assert.NotContains(t, out, "Loading declarations")
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		code  string
	}{
		{
			name: "empty directory",
			code: ErrCodeNoFiles,
		},
		{
			name:  "syntax error",
			files: map[string]string{"bad.cue": "package bad\n\ntypes: {\n"},
			code:  ErrCodeLoadFailed,
		},
		{
			name:  "no types",
			files: map[string]string{"empty.cue": "package empty\n\nother: 1\n"},
			code:  ErrCodeLoadFailed,
		},
		{
			name:  "unknown strategy",
			files: map[string]string{"s.cue": "package s\n\ntypes: Shift: {strategy: \"per_day\"}\n"},
			code:  ErrCodeLoadFailed,
		},
		{
			name: "undeclared identity field",
			files: map[string]string{"id.cue": `package id

types: Shift: {
	identity: "id"
	fields: [{name: "name"}]
}
`},
			code: ErrCodeDeclareFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}

			out, _, err := execute(t, "validate", dir)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate", "/nonexistent/types")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decode(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "declarations directory not found")
}

func TestLoadTypes_KeepsDeclarationPosition(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "kind.cue", `package kind

types: Shift: {
	fields: [{name: "slots", kind: "tree"}]
}
`)

	_, err := LoadTypes(dir, nil)
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeLoadFailed, le.Code)
	assert.Contains(t, le.Message, "slots.kind")
	assert.True(t, le.Pos.IsValid())
	assert.Contains(t, le.Error(), "kind.cue")
}

func TestLoadModel_Errors(t *testing.T) {
	loaded, err := LoadTypes(plantTypes, nil)
	require.NoError(t, err)

	_, err = LoadModel(loaded.Registry, "testdata/models/missing.yaml")
	assert.Equal(t, ErrCodeNotFound, loadErrorCode(err))

	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "objects:\n  - ref: x\n    typo: Location\n")
	_, err = LoadModel(loaded.Registry, bad)
	assert.Equal(t, ErrCodeModelInvalid, loadErrorCode(err))

	unknown := writeFile(t, dir, "unknown.yaml", "objects:\n  - ref: x\n    type: Pipe\n")
	_, err = LoadModel(loaded.Registry, unknown)
	assert.Equal(t, ErrCodeModelInvalid, loadErrorCode(err))
}
