// Package render defines the Renderer contract and the helpers shared by the
// concrete TypeScript renderers: type-reference normalization, import
// synthesis and endpoint input access.
package render

import (
	"fmt"
	"path"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/ir"
	"github.com/mark3labs/swagger2ts/internal/naming"
)

// Renderer turns the IR into planned files. Implementations never touch the
// filesystem; an error aborts the pipeline before anything is written.
type Renderer interface {
	ID() string
	Render(in *ir.GeneratorInput) (*Output, error)
}

// Output is the result of one renderer.
type Output struct {
	Files    []ir.PlannedFile
	Warnings []string
}

// Add appends a file with the generated-code header.
func (o *Output) Add(p, body string) {
	o.Files = append(o.Files, ir.PlannedFile{Path: p, Content: Header + body})
}

// Warnf records a non-fatal problem.
func (o *Output) Warnf(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// Header starts every generated TypeScript file.
const Header = "/* eslint-disable */\n// Code generated by swagger2ts. DO NOT EDIT.\n\n"

// NamespaceDir joins an endpoint's namespace into a slash path.
func NamespaceDir(ep *ir.EndpointItem) string {
	if len(ep.Namespace) == 0 {
		return ir.DefaultNamespace
	}
	return path.Join(ep.Namespace...)
}

// SpecFile is where the request descriptor and input interface live.
func SpecFile(ep *ir.EndpointItem) string {
	return path.Join("spec/endpoints", NamespaceDir(ep), ep.OperationName+".ts")
}

// FunctionFile is where the typed async request function lives.
func FunctionFile(ep *ir.EndpointItem) string {
	return path.Join("functions/api", NamespaceDir(ep), ep.OperationName+".ts")
}

// SpecConst names the request descriptor exported from SpecFile.
func SpecConst(ep *ir.EndpointItem) string { return ep.OperationName + "Spec" }

// RelImport returns the extensionless module specifier that imports toFile
// from fromFile. Both paths are relative to the output root.
// Example: ("functions/api/pets/listPets.ts", "spec/endpoints/pets/listPets.ts")
// -> "../../../spec/endpoints/pets/listPets"
func RelImport(fromFile, toFile string) string {
	from := strings.Split(path.Dir(path.Clean(fromFile)), "/")
	if len(from) == 1 && from[0] == "." {
		from = nil
	}
	to := strings.Split(path.Clean(toFile), "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	parts := make([]string, 0, len(from)-i+len(to)-i)
	for range from[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[i:]...)
	rel := strings.Join(parts, "/")
	rel = strings.TrimSuffix(strings.TrimSuffix(rel, ".ts"), ".d")
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// Quote renders s as a double-quoted TypeScript string literal.
func Quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// Prop renders a property access on obj, bracketed when name is not a plain
// identifier.
func Prop(obj, name string) string {
	if naming.IsIdentifier(name) {
		return obj + "." + name
	}
	return obj + "[" + Quote(name) + "]"
}

// Key renders name as an object-literal key.
func Key(name string) string {
	if naming.IsIdentifier(name) {
		return name
	}
	return Quote(name)
}

// DocComment renders a one-line JSDoc block for summary, marking deprecated
// endpoints. Returns "" when there is nothing to say.
func DocComment(indent string, ep *ir.EndpointItem) string {
	summary := strings.Join(strings.Fields(ep.Summary), " ")
	summary = strings.ReplaceAll(summary, "*/", "* /")
	switch {
	case summary != "" && ep.Deprecated:
		return indent + "/** " + summary + " @deprecated */\n"
	case summary != "":
		return indent + "/** " + summary + " */\n"
	case ep.Deprecated:
		return indent + "/** @deprecated */\n"
	}
	return ""
}
