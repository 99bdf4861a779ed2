package layout

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/errs"
	"github.com/mark3labs/swagger2ts/internal/ir"
)

// ScanDirectory plans barrels for an existing tree under base. Paths in the
// result are relative to base. Dependency and hidden directories are skipped.
// An existing non-empty index.ts is never planned over with empty content.
func ScanDirectory(base string, roots []string) ([]ir.PlannedFile, error) {
	var paths []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if p != base && (name == "node_modules" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.IOError, err, base, "barrels: scan directory")
	}

	var out []ir.PlannedFile
	for dir, content := range Plan(paths, roots) {
		rel := path.Join(dir, "index.ts")
		if strings.TrimSpace(content) == "" {
			existing, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(rel)))
			if err == nil && len(strings.TrimSpace(string(existing))) > 0 {
				continue
			}
		}
		out = append(out, ir.PlannedFile{Path: rel, Content: content})
	}
	ir.SortFiles(out)
	return out, nil
}
