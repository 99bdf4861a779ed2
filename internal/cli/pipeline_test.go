package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2ts/internal/errs"
)

const storeSpecYAML = `openapi: 3.0.0
info:
  title: Store API
  version: '1.0.0'
paths:
  /pets/{id}:
    get:
      operationId: getPet
      tags: [pets]
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
  /MainAPI/Enums/GetAllRole:
    get:
      operationId: getAllRole
      tags: [enums]
      responses:
        '200':
          description: ok
components:
  schemas:
    Pet:
      type: object
      required: [id]
      properties:
        id:
          type: integer
        role:
          $ref: '#/components/schemas/Role'
    Role:
      type: integer
      enum: [1, 2]
`

func writeSpec(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(p, []byte(storeSpecYAML), 0o600))
	return p
}

// execute runs the CLI and returns what it printed to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	specPath := writeSpec(t)
	outDir := filepath.Join(t.TempDir(), "api")

	out, err := execute(t, "generate", "--input", specPath, "--out", outDir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Planned writes to")
	assert.Contains(t, out, "- services/")

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "dry-run must not create the output directory")
}

func TestGeneratePipeline_WritesAndSkipsUnchanged(t *testing.T) {
	specPath := writeSpec(t)
	outDir := filepath.Join(t.TempDir(), "api")
	report := filepath.Join(t.TempDir(), "report.json")

	out, err := execute(t, "generate", "--input", specPath, "--out", outDir, "--report", report)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote ")
	assert.Contains(t, out, "(0 unchanged)")
	assert.FileExists(t, report)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	out, err = execute(t, "generate", "--input", specPath, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 0 files")
	assert.NotContains(t, out, "(0 unchanged)")
}

func TestGeneratePipeline_IRSnapshot(t *testing.T) {
	specPath := writeSpec(t)
	snap := filepath.Join(t.TempDir(), "nested", "ir.json")

	_, err := execute(t, "generate", "--input", specPath, "--dry-run", "--ir-snapshot", snap)
	require.NoError(t, err)

	data, err := os.ReadFile(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), "getPet")
}

func TestGeneratePipeline_MissingInputFile(t *testing.T) {
	_, err := execute(t, "generate", "--input", filepath.Join(t.TempDir(), "missing.yaml"), "--dry-run")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestGeneratePipeline_NoOperationsHint(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(p, []byte("openapi: 3.0.0\ninfo: {title: Empty, version: '1'}\npaths: {}\n"), 0o600))

	_, err := execute(t, "generate", "--input", p, "--dry-run")
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.StructuralError))
	assert.Contains(t, Render(err), "declares no operations")
}
