// Package parser converts a loaded OpenAPI v3 document into the generator IR.
//
// The parser records field names only. Resolving parameter and body types into
// TypeScript is left to the renderers, so the IR stays renderer-agnostic.
package parser

import (
	"net/url"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/swagger2ts/internal/errs"
	"github.com/mark3labs/swagger2ts/internal/ir"
	"github.com/mark3labs/swagger2ts/internal/naming"
)

// Option configures how the GeneratorInput is built from an OpenAPI doc.
type Option func(*config)

type config struct {
	packageName    string
	basePath       string
	terminals      []string
	retryOwnership string
	includeTags    map[string]struct{}
	excludeTags    map[string]struct{}
	clientImport   *ir.ClientImportConfig
	modelImport    *ir.ModelImportConfig
}

// WithPackageName overrides the package name derived from info.title.
func WithPackageName(name string) Option {
	return func(c *config) { c.packageName = strings.TrimSpace(name) }
}

// WithBasePath overrides the base path derived from the first server URL.
func WithBasePath(p string) Option {
	return func(c *config) { c.basePath = strings.TrimSpace(p) }
}

func WithTerminals(terminals []string) Option {
	return func(c *config) { c.terminals = append([]string(nil), terminals...) }
}

func WithRetryOwnership(note string) Option {
	return func(c *config) { c.retryOwnership = strings.TrimSpace(note) }
}

// WithIncludeTags keeps only endpoints that have at least one of the given tags.
func WithIncludeTags(tags []string) Option {
	return func(c *config) { c.includeTags = tagSet(c.includeTags, tags) }
}

// WithExcludeTags removes endpoints that have any of the given tags.
func WithExcludeTags(tags []string) Option {
	return func(c *config) { c.excludeTags = tagSet(c.excludeTags, tags) }
}

func WithClientImport(cfg *ir.ClientImportConfig) Option {
	return func(c *config) { c.clientImport = cfg }
}

func WithModelImport(cfg *ir.ModelImportConfig) Option {
	return func(c *config) { c.modelImport = cfg }
}

func tagSet(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

// Parse builds the GeneratorInput for doc. Paths are visited in sorted order
// and each path's methods in ir.MethodOrder, so the endpoint list is already
// close to canonical before any transform pass runs.
func Parse(doc *openapi3.T, opts ...Option) (*ir.GeneratorInput, error) {
	if doc == nil {
		return nil, errs.New(errs.StructuralError, "missing field: document")
	}
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.clientImport.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.modelImport.Validate(); err != nil {
		return nil, err
	}

	in := &ir.GeneratorInput{
		Project: ir.ProjectContext{
			PackageName:    cfg.packageName,
			BasePath:       cfg.basePath,
			Terminals:      cfg.terminals,
			RetryOwnership: cfg.retryOwnership,
		},
		Endpoints:    []ir.EndpointItem{},
		ClientImport: cfg.clientImport,
		ModelImport:  cfg.modelImport,
	}
	if in.Project.PackageName == "" && doc.Info != nil {
		in.Project.PackageName = naming.ToKebabCase(doc.Info.Title)
	}
	if in.Project.PackageName == "" {
		in.Project.PackageName = "api"
	}
	if in.Project.BasePath == "" {
		in.Project.BasePath = serverBasePath(doc.Servers)
	}
	if in.Project.Terminals == nil {
		in.Project.Terminals = []string{}
	}

	pathKeys := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	seen := 0
	for _, p := range pathKeys {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		for _, m := range ir.MethodOrder {
			op := operation(item, m)
			if op == nil {
				continue
			}
			seen++
			tags := cleanTags(op.Tags)
			if !allowByTags(tags, cfg) {
				continue
			}
			in.Endpoints = append(in.Endpoints, buildEndpoint(p, m, item, op, tags))
		}
	}
	if seen == 0 {
		return nil, errs.New(errs.StructuralError, "missing field: paths/operations")
	}
	return in, nil
}

func operation(item *openapi3.PathItem, m ir.HTTPMethod) *openapi3.Operation {
	switch m {
	case ir.GET:
		return item.Get
	case ir.POST:
		return item.Post
	case ir.PUT:
		return item.Put
	case ir.PATCH:
		return item.Patch
	case ir.DELETE:
		return item.Delete
	}
	return nil
}

func buildEndpoint(path string, m ir.HTTPMethod, item *openapi3.PathItem, op *openapi3.Operation, tags []string) ir.EndpointItem {
	ep := ir.EndpointItem{
		Namespace:     Namespace(tags),
		OperationName: OperationName(op.OperationID, m, path),
		Method:        m,
		Path:          path,
		Summary:       strings.TrimSpace(op.Summary),
		Deprecated:    op.Deprecated,
		QueryFields:   []string{},
		PathFields:    []string{},
	}

	params := mergeParams(item.Parameters, op.Parameters)
	var single *openapi3.SchemaRef
	for _, key := range sortedKeys(params) {
		prm := params[key]
		switch prm.In {
		case openapi3.ParameterInPath:
			ep.PathFields = append(ep.PathFields, prm.Name)
			single = prm.Schema
		case openapi3.ParameterInQuery:
			ep.QueryFields = append(ep.QueryFields, prm.Name)
			single = prm.Schema
		case openapi3.ParameterInHeader:
			ep.HeaderFields = append(ep.HeaderFields, prm.Name)
		}
	}
	sort.Strings(ep.PathFields)
	sort.Strings(ep.QueryFields)
	sort.Strings(ep.HeaderFields)

	var bodyType string
	multipart := false
	if op.RequestBody != nil && op.RequestBody.Value != nil {
		mime, media := pickMedia(op.RequestBody.Value.Content)
		multipart = strings.HasPrefix(mime, "multipart/")
		ep.RequestBodyField = "body"
		if media != nil && media.Schema != nil && media.Schema.Ref != "" {
			if name := naming.ToCamelCase(RefName(media.Schema.Ref)); name != "" {
				ep.RequestBodyField = name
			}
		}
		switch {
		case multipart:
			bodyType = "FormData"
		case media != nil:
			bodyType = TypeOf(media.Schema)
		default:
			bodyType = "unknown"
		}
	}
	ep.HasRequestOptions = len(ep.HeaderFields) > 0 || multipart

	switch ep.FieldCount() {
	case 0:
		ep.InputTypeName = "void"
	case 1:
		if ep.HasBody() {
			ep.InputTypeName = bodyType
		} else {
			ep.InputTypeName = TypeOf(single)
		}
	default:
		ep.InputTypeName = naming.ToPascalCase(ep.OperationName) + "Input"
	}
	ep.OutputTypeName = outputType(op.Responses)
	return ep
}

// Namespace derives the endpoint grouping from the first tag: slash-split,
// each segment kebab-cased. Tagless operations land in "default".
func Namespace(tags []string) []string {
	if len(tags) > 0 {
		var ns []string
		for _, seg := range strings.Split(tags[0], "/") {
			if k := naming.ToKebabCase(seg); k != "" {
				ns = append(ns, k)
			}
		}
		if len(ns) > 0 {
			return ns
		}
	}
	return []string{ir.DefaultNamespace}
}

// OperationName returns the camelCased operationId, or a name built from the
// method and the path segments when no id is declared.
// Example: GET /pets/{petId} -> "getPetsPetId"
func OperationName(operationID string, m ir.HTTPMethod, path string) string {
	if name := naming.ToCamelCase(operationID); name != "" {
		return name
	}
	parts := []string{strings.ToLower(string(m))}
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}")
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return naming.ToCamelCase(strings.Join(parts, " "))
}

// RefName returns the last segment of a JSON reference.
// Example: "#/components/schemas/Pet" -> "Pet"
func RefName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// TypeOf maps a schema to a TypeScript type expression. Referenced schemas are
// named by their component name.
func TypeOf(ref *openapi3.SchemaRef) string {
	if ref == nil {
		return "unknown"
	}
	if ref.Ref != "" {
		return RefName(ref.Ref)
	}
	s := ref.Value
	if s == nil {
		return "unknown"
	}
	switch s.Type {
	case openapi3.TypeString:
		if s.Format == "binary" {
			return "Blob"
		}
		return "string"
	case openapi3.TypeInteger, openapi3.TypeNumber:
		return "number"
	case openapi3.TypeBoolean:
		return "boolean"
	case openapi3.TypeArray:
		item := TypeOf(s.Items)
		if strings.Contains(item, "|") {
			item = "(" + item + ")"
		}
		return item + "[]"
	case openapi3.TypeObject:
		return "Record<string, unknown>"
	}
	if len(s.Properties) > 0 {
		return "Record<string, unknown>"
	}
	return "unknown"
}

func outputType(responses openapi3.Responses) string {
	codes := make([]string, 0, len(responses))
	for code := range responses {
		if strings.HasPrefix(code, "2") {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	codes = append(codes, "default")
	for _, code := range codes {
		rref := responses[code]
		if rref == nil || rref.Value == nil {
			continue
		}
		_, media := pickMedia(rref.Value.Content)
		if media == nil || media.Schema == nil {
			continue
		}
		return TypeOf(media.Schema)
	}
	return "void"
}

// pickMedia prefers JSON content, then falls back to the first media type in
// sorted order.
func pickMedia(content openapi3.Content) (string, *openapi3.MediaType) {
	if len(content) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "application/json" || strings.HasSuffix(k, "+json") {
			return k, content[k]
		}
	}
	return keys[0], content[keys[0]]
}

// mergeParams merges path-level parameters with operation-level ones; the
// operation wins on an (in, name) collision.
func mergeParams(base, op openapi3.Parameters) map[string]*openapi3.Parameter {
	out := make(map[string]*openapi3.Parameter, len(base)+len(op))
	for _, list := range []openapi3.Parameters{base, op} {
		for _, pref := range list {
			if pref == nil || pref.Value == nil {
				continue
			}
			p := pref.Value
			if strings.TrimSpace(p.Name) == "" {
				continue
			}
			out[p.In+":"+p.Name] = p
		}
	}
	return out
}

func sortedKeys(m map[string]*openapi3.Parameter) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cleanTags(in []string) []string {
	tags := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func allowByTags(tags []string, cfg *config) bool {
	if len(cfg.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := cfg.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := cfg.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

func serverBasePath(servers openapi3.Servers) string {
	for _, s := range servers {
		if s == nil || strings.TrimSpace(s.URL) == "" {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(s.URL))
		if err != nil {
			return ""
		}
		return strings.TrimRight(u.Path, "/")
	}
	return ""
}
