package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2ts/internal/errs"
)

const storeSpec = `openapi: 3.0.0
info:
  title: Store
  version: "1.0.0"
paths: {}
components:
  schemas:
    Order:
      type: object
      description: A placed order.
      required: [id]
      properties:
        id:
          type: integer
        status:
          $ref: '#/components/schemas/OrderStatus'
        customer:
          $ref: '#/components/schemas/Customer'
        notes:
          type: string
          nullable: true
        lines:
          type: array
          items:
            $ref: '#/components/schemas/OrderLine'
        "x-trace":
          type: string
    OrderStatus:
      type: integer
      enum: [0, 1, 2]
      x-enum-varnames: [Pending, Paid, Shipped]
      x-enum-descriptions: ["", "Payment received", ""]
    Customer:
      type: object
      nullable: true
      properties:
        name:
          type: string
    OrderLine:
      type: object
      properties:
        sku:
          type: string
    Color:
      type: string
      enum: [red, green]
    Tags:
      type: array
      items:
        type: string
    Mode:
      oneOf:
        - type: string
        - type: integer
    Special:
      allOf:
        - $ref: '#/components/schemas/OrderLine'
        - type: object
          properties:
            qty:
              type: integer
    Customer2:
      $ref: '#/components/schemas/Customer'
`

func loadModels(t *testing.T, src string) *IR {
	t.Helper()
	doc, err := openapi3.NewLoader().LoadFromData([]byte(src))
	require.NoError(t, err)
	m, err := Parse(doc)
	require.NoError(t, err)
	return m
}

func fileContent(t *testing.T, files map[string]string, name string) string {
	t.Helper()
	content, ok := files[name]
	require.True(t, ok, "missing %s", name)
	return content
}

func renderMap(t *testing.T, m *IR, opts RenderOptions) (map[string]string, []string) {
	t.Helper()
	out, err := Render(m, opts)
	require.NoError(t, err)
	files := map[string]string{}
	for _, f := range out.Files {
		files[f.Path] = f.Content
	}
	return files, out.Warnings
}

func TestParse_Classification(t *testing.T) {
	t.Parallel()
	m := loadModels(t, storeSpec)

	var names []string
	for _, n := range m.Models {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"Color", "Customer", "Customer2", "Mode", "Order", "OrderLine", "OrderStatus", "Special", "Tags"}, names)

	order, ok := m.Find("Order")
	require.True(t, ok)
	iface, ok := order.Kind.(*Interface)
	require.True(t, ok)
	var props []string
	for _, p := range iface.Properties {
		props = append(props, p.Name)
	}
	assert.Equal(t, []string{"customer", "id", "lines", "notes", "status", "x-trace"}, props)
	assert.True(t, iface.Properties[1].Required)
	assert.True(t, iface.Properties[0].Nullable, "nullability follows the $ref")
	assert.True(t, iface.Properties[3].Nullable)
	assert.False(t, iface.Properties[4].Nullable)

	status, _ := m.Find("OrderStatus")
	e, ok := status.Kind.(*Enum)
	require.True(t, ok)
	assert.False(t, e.StringValued)
	assert.Equal(t, EnumMember{Name: "Paid", Value: "1", Comment: "Payment received", Explicit: true}, e.Members[1])

	color, _ := m.Find("Color")
	ce := color.Kind.(*Enum)
	assert.True(t, ce.StringValued)
	assert.Equal(t, []EnumMember{{Name: "Value1", Value: "red"}, {Name: "Value2", Value: "green"}}, ce.Members)

	tags, _ := m.Find("Tags")
	assert.Equal(t, &Alias{Target: Array{Item: String{}}}, tags.Kind)

	mode, _ := m.Find("Mode")
	assert.Equal(t, &Alias{Target: Union{Variants: []Type{String{}, Number{}}}}, mode.Kind)

	special, _ := m.Find("Special")
	si := special.Kind.(*Interface)
	require.Len(t, si.Properties, 2)
	assert.Equal(t, "qty", si.Properties[0].Name)
	assert.Equal(t, "sku", si.Properties[1].Name)

	alias, _ := m.Find("Customer2")
	assert.Equal(t, &Alias{Target: Ref{Name: "Customer"}, Nullable: true}, alias.Kind)
}

func TestParse_UnknownTypeIsShapeError(t *testing.T) {
	t.Parallel()
	doc := &openapi3.T{Components: &openapi3.Components{Schemas: openapi3.Schemas{
		"Weird": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: "file"}},
	}}}
	_, err := Parse(doc)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.SchemaShapeError))
}

func TestParse_NoComponents(t *testing.T) {
	t.Parallel()
	m, err := Parse(&openapi3.T{})
	require.NoError(t, err)
	assert.Empty(t, m.Models)
}

func TestRender_Styles(t *testing.T) {
	t.Parallel()
	m := loadModels(t, storeSpec)

	decl, _ := renderMap(t, m, RenderOptions{Style: StyleDeclaration})
	order := fileContent(t, decl, "Order.d.ts")
	assert.Contains(t, order, "/** A placed order. */\ndeclare interface Order {")
	assert.Contains(t, order, "  customer?: Customer | null;")
	assert.Contains(t, order, "  id: number;")
	assert.Contains(t, order, "  lines?: OrderLine[];")
	assert.Contains(t, order, "  notes?: string | null;")
	assert.Contains(t, order, `  status?: import("./OrderStatus").OrderStatus;`)
	assert.Contains(t, order, `  "x-trace"?: string;`)
	assert.Contains(t, fileContent(t, decl, "Tags.d.ts"), "declare type Tags = string[];")
	_, ok := decl["Order.ts"]
	assert.False(t, ok)

	status := fileContent(t, decl, "OrderStatus.ts")
	assert.Contains(t, status, "export enum OrderStatus {\n  Pending = 0,\n  /** Payment received */\n  Paid = 1,\n  Shipped = 2,\n}")

	mod, _ := renderMap(t, m, RenderOptions{Style: StyleModule})
	order = fileContent(t, mod, "Order.ts")
	assert.Contains(t, order, "export interface Order {")
	assert.Contains(t, order, `  customer?: import("./Customer").Customer | null;`)
	assert.Contains(t, order, `  lines?: import("./OrderLine").OrderLine[];`)
	assert.Contains(t, fileContent(t, mod, "Color.ts"), "  Value1 = \"red\",")
	assert.Contains(t, fileContent(t, mod, "Mode.ts"), "export type Mode = string | number;")
	assert.True(t, strings.HasPrefix(order, "/* eslint-disable */"))
}

func TestRender_NameFilter(t *testing.T) {
	t.Parallel()
	m := loadModels(t, storeSpec)
	files, warnings := renderMap(t, m, RenderOptions{Style: StyleModule, Names: []string{"Order", "Missing"}})
	assert.Len(t, files, 1)
	fileContent(t, files, "Order.ts")
	assert.Equal(t, []string{`model "Missing" not found`}, warnings)
}

func TestParseStyleAndPolicy(t *testing.T) {
	t.Parallel()
	st, err := ParseStyle("Declaration")
	require.NoError(t, err)
	assert.Equal(t, StyleDeclaration, st)
	_, err = ParseStyle("ambient")
	assert.True(t, errs.IsCode(err, errs.ValidationError))

	p, err := ParseConflictPolicy("schema-first")
	require.NoError(t, err)
	assert.Equal(t, SchemaFirst, p)
	_, err = ParseConflictPolicy("newest-wins")
	assert.True(t, errs.IsCode(err, errs.ValidationError))

	_, err = Render(&IR{}, RenderOptions{Style: "bogus"})
	assert.True(t, errs.IsCode(err, errs.ValidationError))
}

const roleSpec = `openapi: 3.0.0
info:
  title: Roles
  version: "1.0.0"
paths: {}
components:
  schemas:
    Role:
      type: integer
      enum: [0, 1]
      x-enum-varnames: [Owner, A]
`

func TestMergeEnumPatches_ConflictPolicy(t *testing.T) {
	t.Parallel()
	doc := &EnumPatchDocument{SchemaVersion: "1", Patches: []EnumPatch{{
		EnumName: "Role",
		Members: []EnumPatchMember{
			{Value: "1", SuggestedName: "B", Comment: "from patch"},
			{Value: "9", SuggestedName: "Ghost"},
		},
	}, {
		EnumName: "Nope",
	}}}

	cases := []struct {
		policy ConflictPolicy
		want   string
	}{
		{PatchFirst, "B"},
		{SchemaFirst, "A"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.policy), func(t *testing.T) {
			t.Parallel()
			m := loadModels(t, roleSpec)
			warnings := MergeEnumPatches(m, doc, tc.policy)
			assert.Equal(t, []string{`enum patch for "Nope": no such model`}, warnings)
			role, _ := m.Find("Role")
			e := role.Kind.(*Enum)
			require.Len(t, e.Members, 2, "patches never add members")
			assert.Equal(t, tc.want, e.Members[1].Name)
			assert.Equal(t, "from patch", e.Members[1].Comment)
			assert.Equal(t, "Owner", e.Members[0].Name)
		})
	}
}

func TestMergeEnumPatches_SchemaFirstKeepsPositionalNames(t *testing.T) {
	t.Parallel()
	doc := &EnumPatchDocument{SchemaVersion: "1", Patches: []EnumPatch{{
		EnumName: "Role",
		Members:  []EnumPatchMember{{Value: "1", SuggestedName: "B", Comment: "second"}},
	}}}
	const plainRole = `openapi: 3.0.0
info: {title: Roles, version: "1.0.0"}
paths: {}
components:
  schemas:
    Role:
      type: integer
      enum: [0, 1]
`
	cases := []struct {
		policy ConflictPolicy
		want   string
	}{
		{PatchFirst, "B"},
		{SchemaFirst, "Value2"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.policy), func(t *testing.T) {
			t.Parallel()
			m := loadModels(t, plainRole)
			assert.Empty(t, MergeEnumPatches(m, doc, tc.policy))
			role, _ := m.Find("Role")
			e := role.Kind.(*Enum)
			require.Len(t, e.Members, 2)
			assert.Equal(t, tc.want, e.Members[1].Name)
			assert.Equal(t, "second", e.Members[1].Comment)
		})
	}
}

func TestMergeEnumPatches_SanitizesAndDedups(t *testing.T) {
	t.Parallel()
	m := loadModels(t, `openapi: 3.0.0
info: {title: T, version: "1"}
paths: {}
components:
  schemas:
    Level:
      type: string
      enum: [lo, hi, max]
`)
	MergeEnumPatches(m, &EnumPatchDocument{SchemaVersion: "1", Patches: []EnumPatch{{
		EnumName: "Level",
		Members: []EnumPatchMember{
			{Value: "lo", SuggestedName: "very low"},
			{Value: "hi", SuggestedName: "Very-Low"},
			{Value: "max", SuggestedName: "9"},
		},
	}}}, PatchFirst)
	level, _ := m.Find("Level")
	var names []string
	for _, mem := range level.Kind.(*Enum).Members {
		names = append(names, mem.Name)
	}
	assert.Equal(t, []string{"VeryLow", "VeryLow2", "Value9"}, names)
}

func TestRender_PatchesApplyToCopy(t *testing.T) {
	t.Parallel()
	m := loadModels(t, roleSpec)
	doc := &EnumPatchDocument{SchemaVersion: "1", Patches: []EnumPatch{{
		EnumName: "Role",
		Members:  []EnumPatchMember{{Value: "1", SuggestedName: "Member"}},
	}}}
	files, _ := renderMap(t, m, RenderOptions{Patches: doc, Policy: PatchFirst})
	assert.Contains(t, fileContent(t, files, "Role.ts"), "  Member = 1,")

	role, _ := m.Find("Role")
	assert.Equal(t, "A", role.Kind.(*Enum).Members[1].Name)
}

func TestReadEnumPatchDocument(t *testing.T) {
	t.Parallel()
	doc, err := ReadEnumPatchDocument([]byte(`{
  "schema_version": "1",
  "patches": [{"enum_name": "Role", "members": [{"value": 0, "suggested_name": "Admin", "comment": "Admin"}], "source": "materal-api", "confidence": 0.7}]
}`))
	require.NoError(t, err)
	require.Len(t, doc.Patches, 1)
	assert.Equal(t, "0", doc.Patches[0].Members[0].Value)
	require.NotNil(t, doc.Patches[0].Confidence)
	assert.InDelta(t, 0.7, *doc.Patches[0].Confidence, 1e-9)

	bare, err := ReadEnumPatchDocument([]byte(`[{"enum_name": "Role", "members": [{"value": "1"}]}]`))
	require.NoError(t, err)
	assert.Equal(t, "1", bare.SchemaVersion)
	assert.Equal(t, "Role", bare.Patches[0].EnumName)

	_, err = ReadEnumPatchDocument([]byte(`{"schema_version": "2", "patches": []}`))
	assert.True(t, errs.IsCode(err, errs.ValidationError))
	_, err = ReadEnumPatchDocument([]byte(`{not json`))
	assert.True(t, errs.IsCode(err, errs.ParseError))
}

func TestEnumPatchFileRoundTrip(t *testing.T) {
	t.Parallel()
	conf := 0.7
	doc := &EnumPatchDocument{SchemaVersion: "1", Patches: []EnumPatch{{
		EnumName: "Role",
		Members:  []EnumPatchMember{{Value: "0", SuggestedName: "Admin", Comment: "Admin"}},
		Source:   "materal-api", Confidence: &conf,
	}}}
	data, err := MarshalEnumPatchDocument(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"schema_version": "1"`)
	assert.Contains(t, string(data), `"suggested_name": "Admin"`)
	assert.True(t, strings.HasSuffix(string(data), "}\n"))

	path := filepath.Join(t.TempDir(), "enums.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	loaded, err := LoadEnumPatchFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	_, err = LoadEnumPatchFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errs.IsCode(err, errs.IOError))
}
