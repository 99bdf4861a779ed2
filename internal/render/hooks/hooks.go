// Package hooks renders query and mutation hooks for a terminal library. The
// supported terminals differ only in the package and alias they import.
package hooks

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/errs"
	"github.com/mark3labs/swagger2ts/internal/ir"
	"github.com/mark3labs/swagger2ts/internal/naming"
	"github.com/mark3labs/swagger2ts/internal/render"
)

// Terminal describes a hook-factory library.
type Terminal struct {
	Name    string
	Package string
	Alias   string
}

// DefaultTerminals returns the built-in terminals in name order. Each call
// returns a fresh slice.
func DefaultTerminals() []Terminal {
	return []Terminal{
		{Name: "react-query", Package: "@tanstack/react-query", Alias: "rq"},
		{Name: "vue-query", Package: "@tanstack/vue-query", Alias: "vq"},
	}
}

// Terminals lists the built-in terminal names in sorted order.
func Terminals() []string {
	defaults := DefaultTerminals()
	names := make([]string, 0, len(defaults))
	for _, t := range defaults {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the built-in terminal named name.
func Lookup(name string) (Terminal, error) {
	for _, t := range DefaultTerminals() {
		if t.Name == name {
			return t, nil
		}
	}
	return Terminal{}, errs.Newf(errs.ValidationError, "unknown terminal %q (allowed: %s)", name, strings.Join(Terminals(), ", "))
}

// Renderer emits {terminal}/{namespace}/{op}.query.ts and .mutation.ts files.
// Hooks call the functions produced by the spec-function renderer.
type Renderer struct {
	terminal Terminal
}

func New(t Terminal) *Renderer { return &Renderer{terminal: t} }

func (r *Renderer) ID() string { return "hooks:" + r.terminal.Name }

func (r *Renderer) Render(in *ir.GeneratorInput) (*render.Output, error) {
	out := &render.Output{}
	for i := range in.Endpoints {
		ep := render.Describe(&in.Endpoints[i], out)
		dir := path.Join(r.terminal.Name, render.NamespaceDir(ep.EndpointItem))
		if ep.SupportsQuery {
			file := path.Join(dir, ep.OperationName+".query.ts")
			out.Add(file, r.queryFile(in, ep, file))
		}
		if ep.SupportsMutation {
			file := path.Join(dir, ep.OperationName+".mutation.ts")
			out.Add(file, r.mutationFile(in, ep, file))
		}
	}
	return out, nil
}

func (r *Renderer) imports(in *ir.GeneratorInput, ep render.Endpoint, file string) string {
	lib := []string{fmt.Sprintf("import * as %s from %s;", r.terminal.Alias, render.Quote(r.terminal.Package))}
	local := []string{fmt.Sprintf("import { %s } from %s;", ep.OperationName,
		render.Quote(render.RelImport(file, render.FunctionFile(ep.EndpointItem))))}
	if ep.LocalInput() {
		local = append(local, fmt.Sprintf("import type { %s } from %s;", ep.In,
			render.Quote(render.RelImport(file, render.SpecFile(ep.EndpointItem)))))
	}
	models := render.ModelImports(in.ModelImport, map[string]bool{ep.In: ep.LocalInput()}, ep.In, ep.Out)
	return render.Imports(lib, local, models)
}

// queryKey renders the key tuple: namespace segments, operation name, input.
func queryKey(ep render.Endpoint) string {
	parts := make([]string, 0, len(ep.Namespace)+2)
	for _, ns := range ep.Namespace {
		parts = append(parts, render.Quote(ns))
	}
	parts = append(parts, render.Quote(ep.OperationName))
	if ep.Shape != render.ShapeNone {
		parts = append(parts, "input")
	}
	return "[" + strings.Join(parts, ", ") + "] as const"
}

func (r *Renderer) queryFile(in *ir.GeneratorInput, ep render.Endpoint, file string) string {
	a := r.terminal.Alias
	hook := "use" + naming.ToPascalCase(ep.OperationName) + "Query"
	keyFn := ep.OperationName + "QueryKey"
	params := ep.Params()
	if params != "" {
		params += ", "
	}

	var b strings.Builder
	b.WriteString(r.imports(in, ep, file))
	fmt.Fprintf(&b, "export const %s = (%s) => %s;\n\n", keyFn, ep.Param(), queryKey(ep))
	b.WriteString(render.DocComment("", ep.EndpointItem))
	fmt.Fprintf(&b, "export function %s(%squeryOptions?: Omit<%s.UseQueryOptions<%s>, \"queryKey\" | \"queryFn\">) {\n",
		hook, params, a, ep.Out)
	keyArg := ""
	if ep.Shape != render.ShapeNone {
		keyArg = "input"
	}
	fmt.Fprintf(&b, "  return %s.useQuery({\n", a)
	fmt.Fprintf(&b, "    queryKey: %s(%s),\n", keyFn, keyArg)
	fmt.Fprintf(&b, "    queryFn: () => %s(%s),\n", ep.OperationName, ep.Args())
	b.WriteString("    ...queryOptions,\n")
	b.WriteString("  });\n}\n")
	return b.String()
}

func (r *Renderer) mutationFile(in *ir.GeneratorInput, ep render.Endpoint, file string) string {
	a := r.terminal.Alias
	hook := "use" + naming.ToPascalCase(ep.OperationName) + "Mutation"
	vars := "void"
	if ep.Shape != render.ShapeNone {
		vars = ep.In
	}
	opts := ""
	call := ep.OperationName + "()"
	switch {
	case ep.Shape != render.ShapeNone && ep.HasRequestOptions:
		opts = "options?: " + render.RequestOptionsType + ", "
		call = ep.OperationName + "(input, options)"
	case ep.Shape != render.ShapeNone:
		call = ep.OperationName + "(input)"
	case ep.HasRequestOptions:
		opts = "options?: " + render.RequestOptionsType + ", "
		call = ep.OperationName + "(options)"
	}
	fnParam := ""
	if ep.Shape != render.ShapeNone {
		fnParam = "input: " + vars
	}

	var b strings.Builder
	b.WriteString(r.imports(in, ep, file))
	b.WriteString(render.DocComment("", ep.EndpointItem))
	fmt.Fprintf(&b, "export function %s(%smutationOptions?: Omit<%s.UseMutationOptions<%s, unknown, %s>, \"mutationFn\">) {\n",
		hook, opts, a, ep.Out, vars)
	fmt.Fprintf(&b, "  return %s.useMutation({\n", a)
	fmt.Fprintf(&b, "    mutationFn: (%s) => %s,\n", fnParam, call)
	b.WriteString("    ...mutationOptions,\n")
	b.WriteString("  });\n}\n")
	return b.String()
}
