// Package specfn renders, per endpoint, a request descriptor file and a typed
// async function that sends the request through the configured client.
package specfn

import (
	"fmt"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/ir"
	"github.com/mark3labs/swagger2ts/internal/render"
)

// ID identifies this renderer in the registry and in execution reports.
const ID = "spec-function"

type Renderer struct{}

func New() *Renderer { return &Renderer{} }

func (*Renderer) ID() string { return ID }

func (r *Renderer) Render(in *ir.GeneratorInput) (*render.Output, error) {
	out := &render.Output{}
	for i := range in.Endpoints {
		ep := render.Describe(&in.Endpoints[i], out)
		out.Add(render.SpecFile(ep.EndpointItem), specFile(ep))
		fn, err := functionFile(in, ep)
		if err != nil {
			return nil, err
		}
		out.Add(render.FunctionFile(ep.EndpointItem), fn)
	}
	return out, nil
}

func specFile(ep render.Endpoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "export const %s = {\n", render.SpecConst(ep.EndpointItem))
	fmt.Fprintf(&b, "  operationName: %s,\n", render.Quote(ep.OperationName))
	fmt.Fprintf(&b, "  method: %s,\n", render.Quote(string(ep.Method)))
	fmt.Fprintf(&b, "  path: %s,\n", render.Quote(ep.Path))
	fmt.Fprintf(&b, "  pathFields: %s,\n", stringArray(ep.PathFields))
	fmt.Fprintf(&b, "  queryFields: %s,\n", stringArray(ep.QueryFields))
	fmt.Fprintf(&b, "  headerFields: %s,\n", stringArray(ep.HeaderFields))
	if ep.HasBody() {
		fmt.Fprintf(&b, "  bodyField: %s,\n", render.Quote(ep.RequestBodyField))
	}
	fmt.Fprintf(&b, "  deprecated: %t,\n", ep.Deprecated)
	b.WriteString("} as const;\n")

	if ep.LocalInput() {
		b.WriteString("\n")
		b.WriteString(render.DocComment("", ep.EndpointItem))
		fmt.Fprintf(&b, "export interface %s {\n", ep.In)
		for _, f := range ep.PathFields {
			fmt.Fprintf(&b, "  %s: string | number;\n", render.Key(f))
		}
		for _, f := range ep.QueryFields {
			fmt.Fprintf(&b, "  %s?: unknown;\n", render.Key(f))
		}
		if ep.HasBody() {
			fmt.Fprintf(&b, "  %s: unknown;\n", render.Key(ep.RequestBodyField))
		}
		b.WriteString("}\n")
	}
	return b.String()
}

func functionFile(in *ir.GeneratorInput, ep render.Endpoint) (string, error) {
	file := render.FunctionFile(ep.EndpointItem)
	client, err := render.ClientImport(in.ClientImport, file)
	if err != nil {
		return "", err
	}
	specImport := render.RelImport(file, render.SpecFile(ep.EndpointItem))
	local := []string{fmt.Sprintf("import { %s } from %s;", render.SpecConst(ep.EndpointItem), render.Quote(specImport))}
	if ep.LocalInput() {
		local = append(local, fmt.Sprintf("import type { %s } from %s;", ep.In, render.Quote(specImport)))
	}
	models := render.ModelImports(in.ModelImport, map[string]bool{ep.In: ep.LocalInput()}, ep.In, ep.Out)

	var b strings.Builder
	b.WriteString(render.Imports(client.Lines, local, models))
	b.WriteString(render.DocComment("", ep.EndpointItem))
	fmt.Fprintf(&b, "export async function %s(%s): Promise<%s> {\n", ep.OperationName, ep.Params(), ep.Out)
	fmt.Fprintf(&b, "  return %s<%s>({\n", client.Callee, ep.Out)
	fmt.Fprintf(&b, "    method: %s.method,\n", render.SpecConst(ep.EndpointItem))
	fmt.Fprintf(&b, "    url: %s,\n", ep.URL(in.Project.BasePath))
	if q := ep.Query(); q != "" {
		fmt.Fprintf(&b, "    params: %s,\n", q)
	}
	if body := ep.Body(); body != "" {
		fmt.Fprintf(&b, "    data: %s,\n", body)
	}
	if ep.Meta.Flag(ir.MetaSkipAuthRefresh) {
		b.WriteString("    skipAuthRefresh: true,\n")
	}
	if ep.HasRequestOptions {
		b.WriteString("    ...options,\n")
	}
	b.WriteString("  });\n}\n")
	return b.String(), nil
}

func stringArray(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = render.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
