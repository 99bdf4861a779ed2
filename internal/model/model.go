// Package model converts named schemas into TypeScript type declarations and
// merges curated enum metadata into them.
package model

// IR holds one node per named schema, sorted by name.
type IR struct {
	Models []Node
}

// Find returns the node named name.
func (m *IR) Find(name string) (*Node, bool) {
	for i := range m.Models {
		if m.Models[i].Name == name {
			return &m.Models[i], true
		}
	}
	return nil, false
}

type Node struct {
	Name        string
	Description string
	Kind        Kind
}

// Kind is one of *Interface, *Enum or *Alias.
type Kind interface{ isKind() }

// Interface is an object schema. Properties are sorted by name.
type Interface struct {
	Properties []Property
}

// Enum is a string or numeric schema with a closed value list.
type Enum struct {
	Members      []EnumMember
	StringValued bool
}

// Alias names any other schema shape.
type Alias struct {
	Target   Type
	Nullable bool
}

func (*Interface) isKind() {}
func (*Enum) isKind()      {}
func (*Alias) isKind()     {}

type Property struct {
	Name        string
	Type        Type
	Required    bool
	Nullable    bool
	Description string
}

// EnumMember is one enum value. Explicit is set when the name came from the
// schema (x-enum-varnames) or a patch rather than positional defaulting.
type EnumMember struct {
	Name     string
	Value    string
	Comment  string
	Explicit bool
}

// Type is one of String, Number, Boolean, Object, Ref, Array, Union or
// Literal.
type Type interface{ isType() }

type (
	String  struct{}
	Number  struct{}
	Boolean struct{}
	Object  struct{}
	Ref     struct{ Name string }
	Array   struct{ Item Type }
	Union   struct{ Variants []Type }
	// Literal holds the literal as it appears in source, quotes included.
	Literal struct{ Value string }
)

func (String) isType()  {}
func (Number) isType()  {}
func (Boolean) isType() {}
func (Object) isType()  {}
func (Ref) isType()     {}
func (Array) isType()   {}
func (Union) isType()   {}
func (Literal) isType() {}
