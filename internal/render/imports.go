package render

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/errs"
	"github.com/mark3labs/swagger2ts/internal/ir"
)

// GlobalClientModule is the module imported in global client mode.
const GlobalClientModule = "@/utils/request"

const defaultClientName = "request"

// ModelImportLines emits one type-only import per referenced model type. A nil
// config means models are ambient declarations and need no import.
func ModelImportLines(types []string, cfg *ir.ModelImportConfig) []string {
	if cfg == nil || len(types) == 0 {
		return nil
	}
	lines := make([]string, 0, len(types))
	for _, t := range types {
		switch cfg.ImportType {
		case ir.ModelImportRelative:
			base := strings.TrimRight(cfg.RelativePath, "/")
			lines = append(lines, fmt.Sprintf("import type { %s } from %s;", t, Quote(base+"/"+t)))
		default:
			lines = append(lines, fmt.Sprintf("import type { %s } from %s;", t, Quote(cfg.PackagePath)))
		}
	}
	return lines
}

// ModelImports collects the referenced types of exprs, drops names in local,
// and returns the import lines for what is left.
func ModelImports(cfg *ir.ModelImportConfig, local map[string]bool, exprs ...string) []string {
	seen := map[string]bool{}
	var types []string
	for _, e := range exprs {
		for _, t := range ReferencedTypes(e) {
			if local[t] || seen[t] {
				continue
			}
			seen[t] = true
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return ModelImportLines(types, cfg)
}

// ClientBinding is what a generated file needs to reach the HTTP client.
type ClientBinding struct {
	// Lines are the import statements.
	Lines []string
	// Instance is the imported identifier.
	Instance string
	// Callee is the expression invoked to send a request.
	Callee string
}

// ClientImport synthesizes the client import for a file at fromFile. A nil
// config behaves like global mode.
func ClientImport(cfg *ir.ClientImportConfig, fromFile string) (ClientBinding, error) {
	if err := cfg.Validate(); err != nil {
		return ClientBinding{}, err
	}
	mode := ir.ClientGlobal
	name := defaultClientName
	if cfg != nil {
		mode = cfg.Mode
		if n := strings.TrimSpace(cfg.ImportName); n != "" {
			name = n
		}
	}
	switch mode {
	case ir.ClientGlobal:
		return ClientBinding{
			Lines:    []string{fmt.Sprintf("import %s from %s;", name, Quote(GlobalClientModule))},
			Instance: name,
			Callee:   name,
		}, nil
	case ir.ClientLocal:
		target := path.Clean(strings.TrimPrefix(cfg.ClientPath, "./"))
		if strings.HasPrefix(target, "../") || path.IsAbs(target) {
			return ClientBinding{}, &errs.Error{Code: errs.ValidationError, Message: "client import: clientPath must stay inside the output root", Path: cfg.ClientPath}
		}
		if path.Ext(target) == "" {
			target += ".ts"
		}
		return ClientBinding{
			Lines:    []string{fmt.Sprintf("import %s from %s;", name, Quote(RelImport(fromFile, target)))},
			Instance: name,
			Callee:   name,
		}, nil
	default:
		return ClientBinding{
			Lines:    []string{fmt.Sprintf("import * as %s from %s;", name, Quote(cfg.ClientPackage))},
			Instance: name,
			Callee:   name + ".request",
		}, nil
	}
}

// Imports joins import groups into a block followed by a blank line.
func Imports(groups ...[]string) string {
	var b strings.Builder
	for _, g := range groups {
		for _, line := range g {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	return b.String()
}
