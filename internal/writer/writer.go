// Package writer applies planned files to a target directory.
package writer

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mark3labs/swagger2ts/internal/errs"
	"github.com/mark3labs/swagger2ts/internal/ir"
)

// Result reports which files were (or would be) written and how many were
// already up to date.
type Result struct {
	Written []ir.PlannedFile
	Skipped int
}

type Writer interface {
	Write(files []ir.PlannedFile) (*Result, error)
}

// DryRun reports every file as written and touches nothing.
type DryRun struct{}

func (DryRun) Write(files []ir.PlannedFile) (*Result, error) {
	return &Result{Written: append([]ir.PlannedFile(nil), files...)}, nil
}

// FS writes files under Root. A file whose on-disk content already matches is
// skipped without further I/O; anything else is written to a sibling temp
// file and renamed into place. FS does no locking: two writers on the same
// root race.
type FS struct {
	Root   string
	Logger *zap.SugaredLogger
}

// NewFS returns an FS writer rooted at root.
func NewFS(root string, logger *zap.SugaredLogger) *FS {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &FS{Root: root, Logger: logger}
}

func (w *FS) Write(files []ir.PlannedFile) (*Result, error) {
	log := w.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	res := &Result{}
	for _, f := range files {
		target, err := w.resolve(f.Path)
		if err != nil {
			return res, err
		}
		existing, err := os.ReadFile(target)
		switch {
		case err == nil && bytes.Equal(existing, []byte(f.Content)):
			res.Skipped++
			log.Debugw("unchanged", "path", f.Path)
			continue
		case err != nil && !os.IsNotExist(err):
			return res, errs.Wrap(errs.IOError, err, target, "write: read existing file")
		}
		if err := replace(target, []byte(f.Content)); err != nil {
			return res, err
		}
		log.Debugw("wrote", "path", f.Path, "bytes", len(f.Content))
		res.Written = append(res.Written, f)
	}
	return res, nil
}

// resolve maps a planned slash path to a filesystem path under Root.
func (w *FS) resolve(p string) (string, error) {
	clean := path.Clean(strings.TrimSpace(p))
	if clean == "." || path.IsAbs(clean) || filepath.IsAbs(p) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", &errs.Error{Code: errs.ValidationError, Message: "write: planned path must be relative and stay inside the output root", Path: p}
	}
	return filepath.Join(w.Root, filepath.FromSlash(clean)), nil
}

func replace(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.IOError, err, dir, "write: create directory")
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return errs.Wrap(errs.IOError, err, target, "write: create temp file")
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errs.Wrap(errs.IOError, err, tmpName, "write: temp file")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errs.Wrap(errs.IOError, err, tmpName, "write: close temp file")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return errs.Wrap(errs.IOError, err, tmpName, "write: chmod temp file")
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		cleanup()
		return errs.Wrap(errs.IOError, err, target, "write: remove existing file")
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return errs.Wrap(errs.IOError, err, target, "write: rename into place")
	}
	return nil
}
