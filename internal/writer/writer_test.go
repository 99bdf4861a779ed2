package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mark3labs/swagger2ts/internal/errs"
	"github.com/mark3labs/swagger2ts/internal/ir"
)

func planned() []ir.PlannedFile {
	return []ir.PlannedFile{
		{Path: "functions/api/pets/listPets.ts", Content: "export const a = 1;\n"},
		{Path: "functions/api/pets/index.ts", Content: "export * from \"./listPets\";\n"},
		{Path: "README.generated.md", Content: "hello\n"},
	}
}

func TestDryRun(t *testing.T) {
	t.Parallel()
	res, err := DryRun{}.Write(planned())
	require.NoError(t, err)
	assert.Len(t, res.Written, 3)
	assert.Zero(t, res.Skipped)
}

func TestFS_Idempotent(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	w := NewFS(root, zaptest.NewLogger(t).Sugar())

	first, err := w.Write(planned())
	require.NoError(t, err)
	assert.Len(t, first.Written, 3)
	assert.Zero(t, first.Skipped)

	info, err := os.Stat(filepath.Join(root, "functions/api/pets/listPets.ts"))
	require.NoError(t, err)

	second, err := w.Write(planned())
	require.NoError(t, err)
	assert.Empty(t, second.Written)
	assert.Equal(t, len(planned()), second.Skipped)

	again, err := os.Stat(filepath.Join(root, "functions/api/pets/listPets.ts"))
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), again.ModTime())
}

func TestFS_OneChangedFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	w := NewFS(root, nil)
	_, err := w.Write(planned())
	require.NoError(t, err)

	files := planned()
	files[1].Content = "export * from \"./other\";\n"
	res, err := w.Write(files)
	require.NoError(t, err)
	require.Len(t, res.Written, 1)
	assert.Equal(t, "functions/api/pets/index.ts", res.Written[0].Path)
	assert.Equal(t, len(files)-1, res.Skipped)

	data, err := os.ReadFile(filepath.Join(root, "functions/api/pets/index.ts"))
	require.NoError(t, err)
	assert.Equal(t, files[1].Content, string(data))

	entries, err := os.ReadDir(filepath.Join(root, "functions/api/pets"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestFS_RejectsEscapingPaths(t *testing.T) {
	t.Parallel()
	w := NewFS(t.TempDir(), nil)
	for _, p := range []string{"../evil.ts", "/abs/evil.ts", "a/../../evil.ts", ""} {
		_, err := w.Write([]ir.PlannedFile{{Path: p, Content: "x"}})
		assert.True(t, errs.IsCode(err, errs.ValidationError), p)
	}
}

func TestFS_IOErrorCarriesPath(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	// A regular file where a directory is needed.
	require.NoError(t, os.WriteFile(filepath.Join(root, "blocked"), []byte("x"), 0o644))
	_, err := NewFS(root, nil).Write([]ir.PlannedFile{{Path: "blocked/a.ts", Content: "x"}})
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.IOError))
	assert.Contains(t, err.Error(), "blocked")
}
