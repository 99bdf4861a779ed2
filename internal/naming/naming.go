// Package naming provides the case conversions used for generated file names
// and TypeScript identifiers.
package naming

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits s on runs of characters that are neither letters nor digits.
// Case boundaries inside a word are preserved, not split.
func Words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ToPascalCase upper-cases the first letter of every word and joins them.
// The remaining letters keep their case.
// Example: "admin user" -> "AdminUser"
// Example: "list_pets" -> "ListPets"
// Example: "getByID" -> "GetByID"
func ToPascalCase(s string) string {
	// Casers carry state and are not safe for concurrent use.
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(caser.String(w))
	}
	return b.String()
}

// ToCamelCase is ToPascalCase with the first rune lower-cased.
func ToCamelCase(s string) string {
	p := ToPascalCase(s)
	if p == "" {
		return ""
	}
	runes := []rune(p)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// ToKebabCase lower-cases s and joins its words with hyphens. Lower-to-upper
// transitions and the end of an acronym start a new word.
// Example: "UserAdmin" -> "user-admin"
// Example: "HTTPServer" -> "http-server"
// Example: "Pet Store" -> "pet-store"
func ToKebabCase(s string) string {
	var parts []string
	for _, w := range Words(s) {
		parts = append(parts, splitCase(w)...)
	}
	for i := range parts {
		parts[i] = strings.ToLower(parts[i])
	}
	return strings.Join(parts, "-")
}

func splitCase(w string) []string {
	runes := []rune(w)
	var out []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := unicode.IsUpper(cur) && (unicode.IsLower(prev) || unicode.IsDigit(prev))
		if !boundary && unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			boundary = true
		}
		if boundary {
			out = append(out, string(runes[start:i]))
			start = i
		}
	}
	return append(out, string(runes[start:]))
}

// ToIdentifier converts free text into a PascalCase identifier. A result that
// starts with a digit is prefixed with "Value".
// Example: "Admin User" -> "AdminUser"
// Example: "2" -> "Value2"
func ToIdentifier(s string) string {
	id := ToPascalCase(s)
	if id == "" {
		return ""
	}
	if r := []rune(id)[0]; unicode.IsDigit(r) {
		id = "Value" + id
	}
	return id
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// IsIdentifier reports whether s is a plain ASCII TypeScript identifier.
func IsIdentifier(s string) bool {
	return identRe.MatchString(s)
}

// Unique makes names distinct by suffixing repeats with 2, 3, ... in order of
// appearance. A suffixed name that is itself taken keeps counting.
// Example: [A A B A] -> [A A2 B A3]
func Unique(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	next := make(map[string]int, len(names))
	for i, n := range names {
		candidate := n
		if used[candidate] {
			k := max(next[n], 2)
			for used[n+strconv.Itoa(k)] {
				k++
			}
			candidate = n + strconv.Itoa(k)
			next[n] = k + 1
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}
