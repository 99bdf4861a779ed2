package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/swagger2ts/internal/errs"
)

// Extensions that carry enum member names and comments.
var (
	enumNameExtensions    = []string{"x-enum-varnames", "x-enumNames"}
	enumCommentExtensions = []string{"x-enum-descriptions", "x-enumDescriptions"}
)

// Parse classifies every named schema in doc into an Interface, Enum or
// Alias node.
func Parse(doc *openapi3.T) (*IR, error) {
	m := &IR{Models: []Node{}}
	if doc == nil || doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return m, nil
	}
	p := &schemaParser{schemas: doc.Components.Schemas}
	names := make([]string, 0, len(p.schemas))
	for name := range p.schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node, err := p.node(name, p.schemas[name])
		if err != nil {
			return nil, err
		}
		m.Models = append(m.Models, node)
	}
	return m, nil
}

type schemaParser struct {
	schemas openapi3.Schemas
}

func (p *schemaParser) node(name string, ref *openapi3.SchemaRef) (Node, error) {
	n := Node{Name: name}
	if ref == nil {
		return n, shapeError(name, "schema is empty")
	}
	if ref.Ref != "" {
		n.Kind = &Alias{Target: Ref{Name: refName(ref.Ref)}, Nullable: p.nullable(ref, map[string]bool{name: true})}
		return n, nil
	}
	s := ref.Value
	if s == nil {
		return n, shapeError(name, "schema is empty")
	}
	n.Description = strings.TrimSpace(s.Description)

	switch {
	case len(s.Enum) > 0 && (s.Type == openapi3.TypeString || s.Type == openapi3.TypeInteger || s.Type == openapi3.TypeNumber || s.Type == ""):
		e, err := enumKind(name, s)
		if err != nil {
			return n, err
		}
		n.Kind = e
	case s.Type == openapi3.TypeObject || (s.Type == "" && (len(s.Properties) > 0 || len(s.AllOf) > 0)):
		iface, err := p.interfaceKind(name, s, map[string]bool{name: true})
		if err != nil {
			return n, err
		}
		n.Kind = iface
	default:
		t, err := p.typeOf(name, ref)
		if err != nil {
			return n, err
		}
		n.Kind = &Alias{Target: t, Nullable: s.Nullable}
	}
	return n, nil
}

func (p *schemaParser) interfaceKind(name string, s *openapi3.Schema, seen map[string]bool) (*Interface, error) {
	props := map[string]Property{}
	if err := p.collectProperties(name, s, props, seen); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	iface := &Interface{Properties: make([]Property, 0, len(keys))}
	for _, k := range keys {
		iface.Properties = append(iface.Properties, props[k])
	}
	return iface, nil
}

// collectProperties gathers own properties and those of allOf members; later
// members override earlier ones.
func (p *schemaParser) collectProperties(name string, s *openapi3.Schema, into map[string]Property, seen map[string]bool) error {
	for _, part := range s.AllOf {
		if part == nil {
			continue
		}
		target := part.Value
		if part.Ref != "" {
			rn := refName(part.Ref)
			if seen[rn] {
				continue
			}
			seen[rn] = true
			if r := p.schemas[rn]; r != nil && r.Value != nil {
				target = r.Value
			}
		}
		if target == nil {
			continue
		}
		if err := p.collectProperties(name, target, into, seen); err != nil {
			return err
		}
	}
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	for propName, pref := range s.Properties {
		t, err := p.typeOf(name+"."+propName, pref)
		if err != nil {
			return err
		}
		prop := Property{
			Name:     propName,
			Type:     t,
			Required: required[propName],
			Nullable: p.nullable(pref, map[string]bool{}),
		}
		if pref != nil && pref.Value != nil && pref.Ref == "" {
			prop.Description = strings.TrimSpace(pref.Value.Description)
		}
		into[propName] = prop
	}
	return nil
}

// nullable resolves nullability through component references, stopping on
// cycles.
func (p *schemaParser) nullable(ref *openapi3.SchemaRef, seen map[string]bool) bool {
	if ref == nil {
		return false
	}
	if ref.Ref == "" {
		return ref.Value != nil && ref.Value.Nullable
	}
	name := refName(ref.Ref)
	if seen[name] {
		return false
	}
	seen[name] = true
	if target, ok := p.schemas[name]; ok && target != nil {
		return p.nullable(target, seen)
	}
	return ref.Value != nil && ref.Value.Nullable
}

func (p *schemaParser) typeOf(loc string, ref *openapi3.SchemaRef) (Type, error) {
	if ref == nil {
		return Object{}, nil
	}
	if ref.Ref != "" {
		return Ref{Name: refName(ref.Ref)}, nil
	}
	s := ref.Value
	if s == nil {
		return nil, shapeError(loc, "schema is empty")
	}
	if variants := s.OneOf; len(variants) > 0 || len(s.AnyOf) > 0 {
		variants = append(append(openapi3.SchemaRefs{}, s.OneOf...), s.AnyOf...)
		u := Union{}
		for _, v := range variants {
			t, err := p.typeOf(loc, v)
			if err != nil {
				return nil, err
			}
			u.Variants = append(u.Variants, t)
		}
		return u, nil
	}
	switch s.Type {
	case openapi3.TypeString:
		if len(s.Enum) > 0 {
			return literalUnion(s.Enum, true), nil
		}
		return String{}, nil
	case openapi3.TypeInteger, openapi3.TypeNumber:
		if len(s.Enum) > 0 {
			return literalUnion(s.Enum, false), nil
		}
		return Number{}, nil
	case openapi3.TypeBoolean:
		return Boolean{}, nil
	case openapi3.TypeArray:
		item, err := p.typeOf(loc+"[]", s.Items)
		if err != nil {
			return nil, err
		}
		return Array{Item: item}, nil
	case openapi3.TypeObject, "":
		return Object{}, nil
	}
	return nil, shapeError(loc, fmt.Sprintf("unsupported schema type %q", s.Type))
}

func literalUnion(values []interface{}, quoted bool) Type {
	u := Union{}
	for _, v := range values {
		if v == nil {
			continue
		}
		lit := scalarString(v)
		if quoted {
			lit = strconv.Quote(lit)
		}
		u.Variants = append(u.Variants, Literal{Value: lit})
	}
	if len(u.Variants) == 1 {
		return u.Variants[0]
	}
	return u
}

func enumKind(name string, s *openapi3.Schema) (*Enum, error) {
	e := &Enum{StringValued: s.Type == openapi3.TypeString}
	names := extensionStrings(s.Extensions, enumNameExtensions)
	comments := extensionStrings(s.Extensions, enumCommentExtensions)
	pos := 0
	for _, v := range s.Enum {
		if v == nil {
			continue
		}
		if _, isString := v.(string); isString && s.Type == "" {
			e.StringValued = true
		}
		m := EnumMember{Value: scalarString(v), Name: fmt.Sprintf("Value%d", pos+1)}
		if pos < len(names) && strings.TrimSpace(names[pos]) != "" {
			m.Name = strings.TrimSpace(names[pos])
			m.Explicit = true
		}
		if pos < len(comments) {
			m.Comment = strings.TrimSpace(comments[pos])
		}
		e.Members = append(e.Members, m)
		pos++
	}
	if len(e.Members) == 0 {
		return nil, shapeError(name, "enum has no non-null values")
	}
	return e, nil
}

// extensionStrings reads the first present extension in keys as a list of
// strings. kin-openapi stores decoded JSON values, but raw messages are
// accepted as well.
func extensionStrings(ext map[string]interface{}, keys []string) []string {
	for _, k := range keys {
		raw, ok := ext[k]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case []string:
			return v
		case []interface{}:
			out := make([]string, len(v))
			for i, item := range v {
				if item != nil {
					out[i] = scalarString(item)
				}
			}
			return out
		case json.RawMessage:
			var items []interface{}
			if err := json.Unmarshal(v, &items); err == nil {
				return extensionStrings(map[string]interface{}{k: items}, []string{k})
			}
		}
	}
	return nil
}

// scalarString renders a decoded JSON scalar the way it would be written in
// source: integers without a fraction, everything else verbatim.
func scalarString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return fmt.Sprint(v)
}

func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func shapeError(loc, msg string) error {
	return &errs.Error{Code: errs.SchemaShapeError, Message: "model: " + msg, Path: loc}
}
