package render

import (
	"regexp"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/ir"
)

// Shape is how a generated function receives its input.
type Shape int

const (
	// ShapeNone: no input parameter.
	ShapeNone Shape = iota
	// ShapeSingle: the sole path/query/body field is passed directly.
	ShapeSingle
	// ShapeObject: fields are passed as properties of one input object.
	ShapeObject
)

// InputShape classifies ep by its field count.
func InputShape(ep *ir.EndpointItem) Shape {
	switch n := ep.FieldCount(); {
	case n == 0:
		return ShapeNone
	case n == 1:
		return ShapeSingle
	}
	return ShapeObject
}

// RequestOptionsType is the optional trailing parameter of endpoints that
// accept headers or multipart bodies.
const RequestOptionsType = "{ headers?: Record<string, string>; signal?: AbortSignal }"

// Endpoint wraps an IR endpoint with normalized type names and the
// expressions renderers use to reach its input fields.
type Endpoint struct {
	*ir.EndpointItem
	Shape Shape
	// In and Out are the normalized input and output type expressions.
	In  string
	Out string
}

// Describe normalizes ep's type names, recording a warning on out for every
// expression replaced with "unknown".
func Describe(ep *ir.EndpointItem, out *Output) Endpoint {
	e := Endpoint{EndpointItem: ep, Shape: InputShape(ep)}
	e.In = normalizeWarn(ep, "input", ep.InputTypeName, out)
	e.Out = normalizeWarn(ep, "output", ep.OutputTypeName, out)
	if e.Out == "" {
		e.Out = "void"
	}
	return e
}

func normalizeWarn(ep *ir.EndpointItem, what, expr string, out *Output) string {
	if strings.TrimSpace(expr) == "" {
		return "void"
	}
	n := NormalizeTypeRef(expr)
	if n == "unknown" && strings.TrimSpace(expr) != "unknown" && out != nil {
		out.Warnf("%s: %s type %q is not a valid type expression, using unknown", ep.OperationName, what, expr)
	}
	return n
}

// Param is the input parameter declaration, or "".
func (e Endpoint) Param() string {
	if e.Shape == ShapeNone {
		return ""
	}
	return "input: " + e.In
}

// Params is the full parameter list including request options.
func (e Endpoint) Params() string {
	var ps []string
	if p := e.Param(); p != "" {
		ps = append(ps, p)
	}
	if e.HasRequestOptions {
		ps = append(ps, "options?: "+RequestOptionsType)
	}
	return strings.Join(ps, ", ")
}

// Args is the call argument list matching Params.
func (e Endpoint) Args() string {
	var as []string
	if e.Shape != ShapeNone {
		as = append(as, "input")
	}
	if e.HasRequestOptions {
		as = append(as, "options")
	}
	return strings.Join(as, ", ")
}

// Field is the expression that reads field name from the input.
func (e Endpoint) Field(name string) string {
	if e.Shape == ShapeSingle {
		return "input"
	}
	return Prop("input", name)
}

// Query is an object literal of the query fields, or "".
func (e Endpoint) Query() string {
	if len(e.QueryFields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e.QueryFields))
	for _, q := range e.QueryFields {
		parts = append(parts, Key(q)+": "+e.Field(q))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Body is the request body expression, or "".
func (e Endpoint) Body() string {
	if !e.HasBody() {
		return ""
	}
	return e.Field(e.RequestBodyField)
}

var pathParam = regexp.MustCompile(`\{([^{}]+)\}`)

// URL renders the request URL under basePath, interpolating declared path
// fields as encoded template expressions.
func (e Endpoint) URL(basePath string) string {
	declared := make(map[string]bool, len(e.PathFields))
	for _, f := range e.PathFields {
		declared[f] = true
	}
	full := strings.TrimRight(basePath, "/") + e.Path
	templated := false
	rendered := pathParam.ReplaceAllStringFunc(full, func(m string) string {
		name := m[1 : len(m)-1]
		if !declared[name] {
			return m
		}
		templated = true
		return "${encodeURIComponent(String(" + e.Field(name) + "))}"
	})
	if !templated {
		return Quote(full)
	}
	return "`" + strings.ReplaceAll(rendered, "`", "\\`") + "`"
}

// LocalInput reports whether the input type is the interface synthesized in
// the endpoint's spec file.
func (e Endpoint) LocalInput() bool { return e.Shape == ShapeObject }
