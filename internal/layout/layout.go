// Package layout post-processes the union of renderer outputs. The barrel
// strategy synthesizes index.ts files that re-export every module below a set
// of root directories.
package layout

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/ir"
)

// Strategy rewrites the planned file set.
type Strategy interface {
	Name() string
	Apply(files []ir.PlannedFile) []ir.PlannedFile
}

// Identity leaves the file set untouched.
type Identity struct{}

func (Identity) Name() string { return "identity" }

func (Identity) Apply(files []ir.PlannedFile) []ir.PlannedFile { return files }

// Barrel emits one index.ts per directory between each eligible file and its
// nearest configured root. A root of "." or "" covers the whole tree.
type Barrel struct {
	Roots []string
}

func (Barrel) Name() string { return "barrel" }

func (b Barrel) Apply(files []ir.PlannedFile) []ir.PlannedFile {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	indexes := Plan(paths, b.Roots)

	out := make([]ir.PlannedFile, 0, len(files)+len(indexes))
	for _, f := range files {
		if _, replaced := indexes[path.Dir(f.Path)]; replaced && path.Base(f.Path) == "index.ts" {
			continue
		}
		out = append(out, f)
	}
	for dir, content := range indexes {
		out = append(out, ir.PlannedFile{Path: path.Join(dir, "index.ts"), Content: content})
	}
	ir.SortFiles(out)
	return out
}

// Eligible reports whether p is a module a barrel should re-export.
func Eligible(p string) bool {
	base := path.Base(p)
	return strings.HasSuffix(base, ".ts") && base != "index.ts" && !strings.HasSuffix(base, ".d.ts")
}

// Plan computes barrel contents keyed by directory for the given file paths.
// Directories that would export nothing are absent.
func Plan(paths, roots []string) map[string]string {
	cleanRoots := make([]string, 0, len(roots))
	for _, r := range roots {
		r = strings.Trim(path.Clean("/"+strings.TrimSpace(r)), "/")
		if r == "" {
			r = "."
		}
		cleanRoots = append(cleanRoots, r)
	}

	targets := map[string]bool{}
	var eligible []string
	for _, p := range paths {
		p = path.Clean(p)
		if !Eligible(p) {
			continue
		}
		root, ok := nearestRoot(path.Dir(p), cleanRoots)
		if !ok {
			continue
		}
		eligible = append(eligible, p)
		for dir := path.Dir(p); ; dir = path.Dir(dir) {
			targets[dir] = true
			if dir == root || dir == "." {
				break
			}
		}
	}

	children := map[string]map[string]bool{}
	add := func(dir, name string) {
		if children[dir] == nil {
			children[dir] = map[string]bool{}
		}
		children[dir][name] = true
	}
	for _, p := range eligible {
		add(path.Dir(p), strings.TrimSuffix(path.Base(p), ".ts"))
	}
	for dir := range targets {
		if dir == "." {
			continue
		}
		if parent := path.Dir(dir); targets[parent] {
			add(parent, path.Base(dir))
		}
	}

	out := make(map[string]string, len(children))
	for dir, set := range children {
		if !targets[dir] || len(set) == 0 {
			continue
		}
		out[dir] = Exports(set)
	}
	return out
}

// Exports renders sorted export lines for the given module names.
func Exports(names map[string]bool) string {
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	var b strings.Builder
	for _, n := range sorted {
		fmt.Fprintf(&b, "export * from \"./%s\";\n", n)
	}
	return b.String()
}

// nearestRoot returns the longest configured root that contains dir.
func nearestRoot(dir string, roots []string) (string, bool) {
	best, bestLen, found := "", 0, false
	for _, r := range roots {
		if r != "." && dir != r && !strings.HasPrefix(dir, r+"/") {
			continue
		}
		n := len(r)
		if r == "." {
			n = 0
		}
		if !found || n > bestLen {
			best, bestLen, found = r, n, true
		}
	}
	return best, found
}
