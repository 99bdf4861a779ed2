// Package enumpatch builds enum patch documents from a live API that exposes
// one "GetAll" listing endpoint per enum.
package enumpatch

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Marker precedes the enum name in listing endpoint paths.
const Marker = "/Enums/GetAll"

// Target is one enum listing endpoint.
type Target struct {
	EnumName string
	Path     string
}

// ExtractEnumName returns the enum named by a listing path.
// Example: "/MainAPI/Enums/GetAllOrderStatus" -> "OrderStatus", true
// Example: "/MainAPI/Orders/GetAll" -> "", false
func ExtractEnumName(path string) (string, bool) {
	i := strings.Index(path, Marker)
	if i < 0 {
		return "", false
	}
	name := path[i+len(Marker):]
	if name == "" || strings.ContainsAny(name, "/?#") {
		return "", false
	}
	return name, true
}

// Discover lists listing endpoints whose enum has a schema of the same name,
// sorted by path. The first path found for a name wins.
func Discover(doc *openapi3.T) []Target {
	targets := []Target{}
	if doc == nil || doc.Components == nil {
		return targets
	}
	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	seen := map[string]bool{}
	for _, p := range paths {
		name, ok := ExtractEnumName(p)
		if !ok || seen[name] {
			continue
		}
		if _, exists := doc.Components.Schemas[name]; !exists {
			continue
		}
		seen[name] = true
		targets = append(targets, Target{EnumName: name, Path: p})
	}
	return targets
}
