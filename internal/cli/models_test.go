package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelsConfigFromFlags(t *testing.T) {
	var captured *ModelsConfig
	modelsRunner = func(ctx context.Context, cfg *ModelsConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { modelsRunner = runModels })

	_, err := execute(t, "models",
		"--input", "spec.yaml",
		"--style", "declaration",
		"--models", "Pet,Role",
		"--enum-patch", "enums.json",
		"--conflict-policy", "schema-first",
	)
	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, "src/models", captured.Out)
	assert.Equal(t, "declaration", captured.Style)
	assert.Equal(t, []string{"Pet", "Role"}, captured.Models)
	assert.Equal(t, "enums.json", captured.EnumPatch)
	assert.Equal(t, "schema-first", captured.ConflictPolicy)
}

func TestModelsConfigValidation(t *testing.T) {
	_, err := execute(t, "models", "--input", "spec.yaml", "--style", "ambient")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)

	_, err = execute(t, "models", "--input", "spec.yaml", "--conflict-policy", "newest")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)

	_, err = execute(t, "models")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestModels_WritesFiles(t *testing.T) {
	specPath := writeSpec(t)
	outDir := filepath.Join(t.TempDir(), "models")

	out, err := execute(t, "models", "--input", specPath, "--out", outDir, "--style", "declaration")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 model files")

	pet, err := os.ReadFile(filepath.Join(outDir, "Pet.d.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(pet), "declare interface Pet")
	assert.Contains(t, string(pet), `import("./Role").Role`)

	role, err := os.ReadFile(filepath.Join(outDir, "Role.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(role), "export enum Role")
}

func TestModels_DryRunWithFilter(t *testing.T) {
	specPath := writeSpec(t)
	outDir := filepath.Join(t.TempDir(), "models")

	out, err := execute(t, "models", "--input", specPath, "--out", outDir, "--models", "Role,Ghost", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Planned writes to")
	assert.Contains(t, out, "- Role.ts")
	assert.NotContains(t, out, "Pet")

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEnumPatchThenModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/MainAPI/Enums/GetAllRole" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Data":[{"Key":1,"Value":"Admin user"},{"Key":2,"Value":"Guest"}]}`))
	}))
	defer srv.Close()

	specPath := writeSpec(t)
	dir := t.TempDir()
	patchPath := filepath.Join(dir, "enums.json")

	out, err := execute(t, "enum-patch", "--input", specPath, "--base-url", srv.URL, "--out", patchPath, "--rate-limit", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Enum patches for 1 enums written")

	out, err = execute(t, "enum-patch", "--input", specPath, "--base-url", srv.URL, "--out", patchPath, "--rate-limit", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")

	outDir := filepath.Join(dir, "models")
	_, err = execute(t, "models", "--input", specPath, "--out", outDir, "--enum-patch", patchPath)
	require.NoError(t, err)

	role, err := os.ReadFile(filepath.Join(outDir, "Role.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(role), "AdminUser = 1")
	assert.Contains(t, string(role), "Guest = 2")
}
