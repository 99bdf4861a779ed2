package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mark3labs/swagger2ts/internal/errs"
)

// PatchSchemaVersion is the only document version understood.
const PatchSchemaVersion = "1"

// EnumPatchDocument carries curated enum member names and comments.
type EnumPatchDocument struct {
	SchemaVersion string      `json:"schema_version"`
	Patches       []EnumPatch `json:"patches"`
}

type EnumPatch struct {
	EnumName   string            `json:"enum_name"`
	Members    []EnumPatchMember `json:"members"`
	Source     string            `json:"source,omitempty"`
	Confidence *float64          `json:"confidence,omitempty"`
}

type EnumPatchMember struct {
	Value         string `json:"value"`
	SuggestedName string `json:"suggested_name,omitempty"`
	Comment       string `json:"comment,omitempty"`
}

// UnmarshalJSON accepts numeric and boolean values and stores them in their
// source form.
func (m *EnumPatchMember) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value         json.RawMessage `json:"value"`
		SuggestedName string          `json:"suggested_name"`
		Comment       string          `json:"comment"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.SuggestedName, m.Comment = raw.SuggestedName, raw.Comment
	m.Value = ""
	if len(raw.Value) == 0 || string(raw.Value) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Value, &s); err == nil {
		m.Value = s
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw.Value))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v.(type) {
	case json.Number, bool:
		m.Value = scalarString(v)
		return nil
	}
	return fmt.Errorf("member value must be a scalar, got %s", raw.Value)
}

// ReadEnumPatchDocument decodes a patch document. A bare array of patches is
// accepted and treated as the current version.
func ReadEnumPatchDocument(data []byte) (*EnumPatchDocument, error) {
	trimmed := bytes.TrimSpace(data)
	doc := &EnumPatchDocument{}
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &doc.Patches); err != nil {
			return nil, errs.Wrap(errs.ParseError, err, "", "enum patch: invalid JSON")
		}
		doc.SchemaVersion = PatchSchemaVersion
	} else if err := json.Unmarshal(trimmed, doc); err != nil {
		return nil, errs.Wrap(errs.ParseError, err, "", "enum patch: invalid JSON")
	}
	if doc.SchemaVersion != PatchSchemaVersion {
		return nil, errs.Newf(errs.ValidationError, "enum patch: unsupported schema_version %q", doc.SchemaVersion)
	}
	if doc.Patches == nil {
		doc.Patches = []EnumPatch{}
	}
	return doc, nil
}

// LoadEnumPatchFile reads and decodes the patch document at path.
func LoadEnumPatchFile(path string) (*EnumPatchDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.IOError, err, path, "enum patch: read failed")
	}
	doc, err := ReadEnumPatchDocument(data)
	if err != nil {
		var e *errs.Error
		if errors.As(err, &e) && e.Path == "" {
			e.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// MarshalEnumPatchDocument renders doc as indented JSON with a trailing
// newline.
func MarshalEnumPatchDocument(doc *EnumPatchDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// MergeEnumPatches applies doc to the enums in m, matching members by value.
// Patch entries never add members. Returned warnings name patches for enums
// the IR does not have.
func MergeEnumPatches(m *IR, doc *EnumPatchDocument, policy ConflictPolicy) []string {
	warnings := []string{}
	if m == nil || doc == nil {
		return warnings
	}
	for _, p := range doc.Patches {
		node, ok := m.Find(p.EnumName)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("enum patch for %q: no such model", p.EnumName))
			continue
		}
		e, ok := node.Kind.(*Enum)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("enum patch for %q: model is not an enum", p.EnumName))
			continue
		}
		byValue := make(map[string]EnumPatchMember, len(p.Members))
		for _, pm := range p.Members {
			byValue[pm.Value] = pm
		}
		for i := range e.Members {
			pm, ok := byValue[e.Members[i].Value]
			if !ok {
				continue
			}
			mergeMember(&e.Members[i], pm, policy)
		}
		sanitizeMemberNames(e)
	}
	return warnings
}

func mergeMember(m *EnumMember, pm EnumPatchMember, policy ConflictPolicy) {
	name := strings.TrimSpace(pm.SuggestedName)
	comment := strings.TrimSpace(pm.Comment)
	switch policy {
	case SchemaFirst:
		// Names stay as loaded; only an empty comment may be filled.
		if comment != "" && m.Comment == "" {
			m.Comment = comment
		}
	default:
		if name != "" {
			m.Name, m.Explicit = name, true
		}
		if comment != "" {
			m.Comment = comment
		}
	}
}
