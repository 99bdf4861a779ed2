package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/errs"
	"github.com/mark3labs/swagger2ts/internal/naming"
	"github.com/mark3labs/swagger2ts/internal/render"
)

// Style selects how model files are declared.
type Style string

const (
	// StyleDeclaration writes ambient globals into Name.d.ts files.
	StyleDeclaration Style = "declaration"
	// StyleModule writes exported declarations into Name.ts files.
	StyleModule Style = "module"
)

// ParseStyle validates a style string.
func ParseStyle(s string) (Style, error) {
	switch st := Style(strings.ToLower(strings.TrimSpace(s))); st {
	case StyleDeclaration, StyleModule:
		return st, nil
	case "":
		return StyleModule, nil
	}
	return "", errs.Newf(errs.ValidationError, "unknown model style %q (want declaration or module)", s)
}

// ConflictPolicy decides which source wins when a schema and a patch both
// name or describe the same enum member.
type ConflictPolicy string

const (
	PatchFirst  ConflictPolicy = "patch-first"
	SchemaFirst ConflictPolicy = "schema-first"
)

// ParseConflictPolicy validates a policy string.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PatchFirst, SchemaFirst:
		return p, nil
	case "":
		return PatchFirst, nil
	}
	return "", errs.Newf(errs.ValidationError, "unknown conflict policy %q (want patch-first or schema-first)", s)
}

// RenderOptions configures Render. Names restricts output to the listed
// models; Patches, when set, is merged into a copy of the IR first.
type RenderOptions struct {
	Style   Style
	Names   []string
	Patches *EnumPatchDocument
	Policy  ConflictPolicy
}

// Render writes one file per model. Enums are always module files.
func Render(m *IR, opts RenderOptions) (*render.Output, error) {
	style, err := ParseStyle(string(opts.Style))
	if err != nil {
		return nil, err
	}
	out := &render.Output{Warnings: []string{}}
	if m == nil {
		return out, nil
	}
	if opts.Patches != nil {
		policy, err := ParseConflictPolicy(string(opts.Policy))
		if err != nil {
			return nil, err
		}
		m = m.clone()
		for _, w := range MergeEnumPatches(m, opts.Patches, policy) {
			out.Warnf("%s", w)
		}
	}

	allow := map[string]bool{}
	for _, n := range opts.Names {
		if n = strings.TrimSpace(n); n == "" {
			continue
		}
		allow[n] = true
		if _, ok := m.Find(n); !ok {
			out.Warnf("model %q not found", n)
		}
	}

	r := &modelRenderer{ir: m, style: style}
	for i := range m.Models {
		n := &m.Models[i]
		if len(allow) > 0 && !allow[n.Name] {
			continue
		}
		file, body := r.file(n)
		out.Add(file, body)
	}
	return out, nil
}

type modelRenderer struct {
	ir    *IR
	style Style
}

func (r *modelRenderer) isEnum(name string) bool {
	n, ok := r.ir.Find(name)
	if !ok {
		return false
	}
	_, enum := n.Kind.(*Enum)
	return enum
}

func (r *modelRenderer) file(n *Node) (string, string) {
	if e, ok := n.Kind.(*Enum); ok {
		return n.Name + ".ts", docBlock("", n.Description) + enumBody(n.Name, e)
	}
	decl, ext := "export ", ".ts"
	if r.style == StyleDeclaration {
		decl, ext = "declare ", ".d.ts"
	}

	var b strings.Builder
	b.WriteString(docBlock("", n.Description))
	switch k := n.Kind.(type) {
	case *Interface:
		fmt.Fprintf(&b, "%sinterface %s {\n", decl, n.Name)
		for _, p := range k.Properties {
			b.WriteString(docBlock("  ", p.Description))
			opt := ""
			if !p.Required {
				opt = "?"
			}
			fmt.Fprintf(&b, "  %s%s: %s;\n", render.Key(p.Name), opt, nullable(r.typeExpr(n.Name, p.Type), p.Nullable))
		}
		b.WriteString("}\n")
	case *Alias:
		fmt.Fprintf(&b, "%stype %s = %s;\n", decl, n.Name, nullable(r.typeExpr(n.Name, k.Target), k.Nullable))
	default:
		fmt.Fprintf(&b, "%stype %s = unknown;\n", decl, n.Name)
	}
	return n.Name + ext, b.String()
}

// typeExpr renders t as seen from inside model self. Module style refers to
// other models through inline import types so files never import each other
// statically. Enums are never global, so declaration style imports them too.
func (r *modelRenderer) typeExpr(self string, t Type) string {
	switch v := t.(type) {
	case String:
		return "string"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Object:
		return "Record<string, unknown>"
	case Literal:
		return v.Value
	case Ref:
		if v.Name == self {
			return v.Name
		}
		if r.style == StyleModule || r.isEnum(v.Name) {
			return fmt.Sprintf("import(%q).%s", "./"+v.Name, v.Name)
		}
		return v.Name
	case Array:
		item := r.typeExpr(self, v.Item)
		if u, ok := v.Item.(Union); ok && len(u.Variants) > 1 {
			item = "(" + item + ")"
		}
		return item + "[]"
	case Union:
		if len(v.Variants) == 0 {
			return "unknown"
		}
		parts := make([]string, len(v.Variants))
		for i, variant := range v.Variants {
			parts[i] = r.typeExpr(self, variant)
		}
		return strings.Join(parts, " | ")
	}
	return "unknown"
}

func nullable(expr string, ok bool) string {
	if ok {
		return expr + " | null"
	}
	return expr
}

func enumBody(name string, e *Enum) string {
	var b strings.Builder
	fmt.Fprintf(&b, "export enum %s {\n", name)
	for _, m := range e.Members {
		b.WriteString(docBlock("  ", m.Comment))
		fmt.Fprintf(&b, "  %s = %s,\n", render.Key(m.Name), enumValue(m.Value, e.StringValued))
	}
	b.WriteString("}\n")
	return b.String()
}

func enumValue(v string, stringValued bool) string {
	if !stringValued {
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return v
		}
	}
	return render.Quote(v)
}

func docBlock(indent, text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}
	return indent + "/** " + strings.ReplaceAll(text, "*/", "* /") + " */\n"
}

func (m *IR) clone() *IR {
	c := &IR{Models: make([]Node, len(m.Models))}
	copy(c.Models, m.Models)
	for i, n := range c.Models {
		if e, ok := n.Kind.(*Enum); ok {
			cp := *e
			cp.Members = append([]EnumMember(nil), e.Members...)
			c.Models[i].Kind = &cp
		}
	}
	return c
}

// sanitizeMemberNames turns member names into identifiers and resolves
// collisions by suffixing.
func sanitizeMemberNames(e *Enum) {
	names := make([]string, len(e.Members))
	for i, m := range e.Members {
		id := m.Name
		if !naming.IsIdentifier(id) {
			id = naming.ToIdentifier(id)
		}
		if id == "" {
			id = "Value" + strconv.Itoa(i+1)
		}
		names[i] = id
	}
	for i, n := range naming.Unique(names) {
		e.Members[i].Name = n
	}
}
