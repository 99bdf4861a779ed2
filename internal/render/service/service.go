// Package service renders one service class per top-level namespace with one
// static method per endpoint. Call styles differ only in how the client call
// is assembled from the URL, query and body.
package service

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

// Style is a client call convention.
type Style string

const (
	// Axios passes positional arguments: client.get(url, config) and
	// client.post(url, data, config).
	Axios Style = "axios"
	// Fetch calls client.request(method, url, { query, body }).
	Fetch Style = "fetch"
	// Umi calls client(url, { method, params, data }).
	Umi Style = "umi"
)

// Styles lists the supported call styles.
func Styles() []Style { return []Style{Axios, Fetch, Umi} }

// ParseStyle validates a call style name.
func ParseStyle(s string) (Style, error) {
	for _, st := range Styles() {
		if string(st) == strings.ToLower(strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", errs.Newf(errs.ValidationError, "unknown service style %q (allowed: axios, fetch, umi)", s)
}

type Renderer struct {
	style Style
}

func New(style Style) *Renderer { return &Renderer{style: style} }

func (r *Renderer) ID() string { return "service-" + string(r.style) }

type group struct {
	name      string
	endpoints []render.Endpoint
}

func (r *Renderer) Render(in *ir.GeneratorInput) (*render.Output, error) {
	out := &render.Output{}
	byName := map[string]*group{}
	for i := range in.Endpoints {
		ep := render.Describe(&in.Endpoints[i], out)
		name := naming.ToPascalCase(firstNamespace(ep.EndpointItem))
		if name == "" {
			name = "Default"
		}
		g, ok := byName[name]
		if !ok {
			g = &group{name: name}
			byName[name] = g
		}
		g.endpoints = append(g.endpoints, ep)
	}
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		g := byName[n]
		file := path.Join("services", string(r.style), g.name+"Service.ts")
		content, err := r.renderGroup(in, g, file, out)
		if err != nil {
			return nil, err
		}
		out.Add(file, content)
	}
	return out, nil
}

func firstNamespace(ep *ir.EndpointItem) string {
	if len(ep.Namespace) == 0 {
		return ir.DefaultNamespace
	}
	return ep.Namespace[0]
}

func (r *Renderer) renderGroup(in *ir.GeneratorInput, g *group, file string, out *render.Output) (string, error) {
	client, err := render.ClientImport(in.ClientImport, file)
	if err != nil {
		return "", err
	}
	var (
		eps        []render.Endpoint
		local      []string
		exprs      []string
		localTypes = map[string]bool{}
		methods    = map[string]bool{}
	)
	for _, ep := range g.endpoints {
		if methods[ep.OperationName] {
			out.Warnf("%sService: duplicate method %s skipped", g.name, ep.OperationName)
			continue
		}
		methods[ep.OperationName] = true
		eps = append(eps, ep)
		if ep.LocalInput() {
			localTypes[ep.In] = true
			local = append(local, fmt.Sprintf("import type { %s } from %s;", ep.In,
				render.Quote(render.RelImport(file, render.SpecFile(ep.EndpointItem)))))
		}
		exprs = append(exprs, ep.In, ep.Out)
	}
	models := render.ModelImports(in.ModelImport, localTypes, exprs...)

	var b strings.Builder
	b.WriteString(render.Imports(client.Lines, local, models))
	fmt.Fprintf(&b, "export class %sService {\n", g.name)
	for i, ep := range eps {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(render.DocComment("  ", ep.EndpointItem))
		fmt.Fprintf(&b, "  static %s(%s): Promise<%s> {\n", ep.OperationName, ep.Params(), ep.Out)
		fmt.Fprintf(&b, "    return %s;\n", r.call(client, in.Project.BasePath, ep))
		b.WriteString("  }\n")
	}
	b.WriteString("}\n")
	return b.String(), nil
}

func (r *Renderer) call(client render.ClientBinding, basePath string, ep render.Endpoint) string {
	url := ep.URL(basePath)
	query, body := ep.Query(), ep.Body()
	method := strings.ToLower(string(ep.Method))

	var cfg []string
	switch r.style {
	case Axios:
		if query != "" {
			cfg = append(cfg, "params: "+query)
		}
		if ep.Meta.Flag(ir.MetaSkipAuthRefresh) {
			cfg = append(cfg, "skipAuthRefresh: true")
		}
		if ep.HasRequestOptions {
			cfg = append(cfg, "...options")
		}
		args := []string{url}
		switch ep.Method {
		case ir.POST, ir.PUT, ir.PATCH:
			if body == "" {
				body = "undefined"
			}
			args = append(args, body)
		case ir.DELETE:
			if body != "" {
				cfg = append([]string{"data: " + body}, cfg...)
			}
		}
		if len(cfg) > 0 {
			args = append(args, object(cfg))
		}
		return fmt.Sprintf("%s.%s<%s>(%s)", client.Instance, method, ep.Out, strings.Join(args, ", "))
	case Fetch:
		if query != "" {
			cfg = append(cfg, "query: "+query)
		}
		if body != "" {
			cfg = append(cfg, "body: "+body)
		}
		if ep.Meta.Flag(ir.MetaSkipAuthRefresh) {
			cfg = append(cfg, "skipAuthRefresh: true")
		}
		if ep.HasRequestOptions {
			cfg = append(cfg, "...options")
		}
		args := []string{render.Quote(string(ep.Method)), url}
		if len(cfg) > 0 {
			args = append(args, object(cfg))
		}
		return fmt.Sprintf("%s.request<%s>(%s)", client.Instance, ep.Out, strings.Join(args, ", "))
	default:
		cfg = append(cfg, "method: "+render.Quote(string(ep.Method)))
		if query != "" {
			cfg = append(cfg, "params: "+query)
		}
		if body != "" {
			cfg = append(cfg, "data: "+body)
		}
		if ep.Meta.Flag(ir.MetaSkipAuthRefresh) {
			cfg = append(cfg, "skipAuthRefresh: true")
		}
		if ep.HasRequestOptions {
			cfg = append(cfg, "...options")
		}
		return fmt.Sprintf("%s<%s>(%s, %s)", client.Callee, ep.Out, url, object(cfg))
	}
}

func object(fields []string) string {
	return "{ " + strings.Join(fields, ", ") + " }"
}
