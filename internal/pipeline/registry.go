package pipeline

import (
	"sort"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/errs"
	"github.com/mark3labs/swagger2ts/internal/render"
	"github.com/mark3labs/swagger2ts/internal/render/hooks"
	"github.com/mark3labs/swagger2ts/internal/render/service"
	"github.com/mark3labs/swagger2ts/internal/render/specfn"
)

// Factory builds a renderer.
type Factory func() render.Renderer

// Registry maps renderer ids to factories. Build one per pipeline; there is
// no package-level registry.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry holding the spec-function and service
// renderers plus one hooks renderer per terminal. With no terminals given it
// registers hooks.DefaultTerminals.
func NewRegistry(terminals ...hooks.Terminal) *Registry {
	r := &Registry{factories: map[string]Factory{}}
	r.Register(specfn.ID, func() render.Renderer { return specfn.New() })
	for _, st := range service.Styles() {
		st := st
		r.Register("service-"+string(st), func() render.Renderer { return service.New(st) })
	}
	if len(terminals) == 0 {
		terminals = hooks.DefaultTerminals()
	}
	for _, term := range terminals {
		term := term
		r.Register(TerminalID(term.Name), func() render.Renderer { return hooks.New(term) })
	}
	return r
}

// TerminalID is the renderer id of the hooks renderer for terminal.
func TerminalID(terminal string) string { return "hooks:" + terminal }

// Register adds or replaces a factory.
func (r *Registry) Register(id string, f Factory) {
	r.factories[id] = f
}

// IDs lists registered renderer ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Build instantiates the requested renderers plus one hooks renderer per
// terminal, in request order without duplicates. Hooks and services import
// the spec-function output, so requesting either pulls spec-function in
// first.
func (r *Registry) Build(ids, terminals []string) ([]render.Renderer, error) {
	want := make([]string, 0, len(ids)+len(terminals)+1)
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			want = append(want, id)
		}
	}
	for _, t := range terminals {
		if t = strings.TrimSpace(t); t != "" {
			want = append(want, TerminalID(t))
		}
	}
	needsFn := false
	for _, id := range want {
		if strings.HasPrefix(id, "hooks:") || strings.HasPrefix(id, "service-") {
			needsFn = true
		}
	}
	if needsFn {
		want = append([]string{specfn.ID}, want...)
	}

	seen := map[string]bool{}
	out := make([]render.Renderer, 0, len(want))
	for _, id := range want {
		if seen[id] {
			continue
		}
		seen[id] = true
		f, ok := r.factories[id]
		if !ok {
			return nil, errs.Newf(errs.ValidationError, "unknown renderer %q (available: %s)", id, strings.Join(r.IDs(), ", "))
		}
		out = append(out, f())
	}
	return out, nil
}
