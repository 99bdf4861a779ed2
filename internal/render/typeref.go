package render

import (
	"sort"
	"strings"
	"unicode"
)

// Tokens that never need an import.
var (
	primitives = map[string]bool{
		"string": true, "number": true, "boolean": true, "any": true, "unknown": true,
		"void": true, "null": true, "undefined": true, "never": true, "object": true,
		"bigint": true, "symbol": true, "true": true, "false": true,
	}
	builtins = map[string]bool{
		"Array": true, "Record": true, "Partial": true, "Promise": true, "Map": true,
		"Set": true, "Date": true, "Readonly": true, "ReadonlyArray": true, "Pick": true,
		"Omit": true, "Required": true, "Blob": true, "File": true, "FormData": true,
	}
)

// NormalizeTypeRef returns expr unchanged when it is a well-formed type
// expression and "unknown" otherwise.
// Example: "Pet[]" -> "Pet[]"
// Example: "Record<string, Pet" -> "unknown"
func NormalizeTypeRef(expr string) string {
	expr = strings.TrimSpace(expr)
	if _, ok := parseType(expr); !ok {
		return "unknown"
	}
	return expr
}

// ReferencedTypes lists the named types expr refers to, excluding primitives,
// built-ins and object-literal keys. Qualified names contribute their first
// segment. The result is sorted and deduplicated; an unparseable expr yields
// nil.
// Example: "Record<string, Pet | { owner: Owner }>[]" -> [Owner Pet]
func ReferencedTypes(expr string) []string {
	refs, ok := parseType(strings.TrimSpace(expr))
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(refs))
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if primitives[r] || builtins[r] || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

type tokKind int

const (
	tokIdent tokKind = iota
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind tokKind
	text string
}

func tokenize(s string) ([]token, bool) {
	var toks []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isIdentStart(r):
			j := i + 1
			for j < len(rs) && isIdentPart(rs[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, string(rs[i:j])})
			i = j
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			j := i + 1
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			toks = append(toks, token{tokNumber, string(rs[i:j])})
			i = j
		case r == '"' || r == '\'':
			j := i + 1
			for j < len(rs) && rs[j] != r {
				if rs[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(rs) {
				return nil, false
			}
			toks = append(toks, token{tokString, string(rs[i : j+1])})
			i = j + 1
		case strings.ContainsRune("|&[]<>(){}:;,.?", r):
			toks = append(toks, token{tokPunct, string(r)})
			i++
		default:
			return nil, false
		}
	}
	return toks, true
}

func isIdentStart(r rune) bool { return r == '_' || r == '$' || unicode.IsLetter(r) }
func isIdentPart(r rune) bool  { return isIdentStart(r) || unicode.IsDigit(r) }

// typeParser is a recursive-descent parser over a small TypeScript type
// grammar:
//
//	union   = ["|"] inter { "|" inter }
//	inter   = postfix { "&" postfix }
//	postfix = primary { "[" "]" }
//	primary = name [ "<" union { "," union } ">" ] | "(" union ")"
//	        | "{" { member } "}" | string | number
//	member  = ident ["?"] ":" union [";" | ","]
type typeParser struct {
	toks []token
	pos  int
	refs []string
}

func parseType(expr string) ([]string, bool) {
	if expr == "" {
		return nil, false
	}
	toks, ok := tokenize(expr)
	if !ok || len(toks) == 0 {
		return nil, false
	}
	p := &typeParser{toks: toks}
	if !p.union() || p.pos != len(p.toks) {
		return nil, false
	}
	return p.refs, true
}

func (p *typeParser) peek(text string) bool {
	return p.pos < len(p.toks) && p.toks[p.pos].kind == tokPunct && p.toks[p.pos].text == text
}

func (p *typeParser) accept(text string) bool {
	if p.peek(text) {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) union() bool {
	p.accept("|")
	if !p.inter() {
		return false
	}
	for p.accept("|") {
		if !p.inter() {
			return false
		}
	}
	return true
}

func (p *typeParser) inter() bool {
	if !p.postfix() {
		return false
	}
	for p.accept("&") {
		if !p.postfix() {
			return false
		}
	}
	return true
}

func (p *typeParser) postfix() bool {
	if !p.primary() {
		return false
	}
	for p.accept("[") {
		if !p.accept("]") {
			return false
		}
	}
	return true
}

func (p *typeParser) primary() bool {
	if p.pos >= len(p.toks) {
		return false
	}
	tok := p.toks[p.pos]
	switch tok.kind {
	case tokString, tokNumber:
		p.pos++
		return true
	case tokIdent:
		p.pos++
		p.refs = append(p.refs, tok.text)
		for p.accept(".") {
			if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokIdent {
				return false
			}
			p.pos++
		}
		if p.accept("<") {
			if !p.union() {
				return false
			}
			for p.accept(",") {
				if !p.union() {
					return false
				}
			}
			return p.accept(">")
		}
		return true
	}
	switch {
	case p.accept("("):
		return p.union() && p.accept(")")
	case p.accept("{"):
		for !p.accept("}") {
			if !p.member() {
				return false
			}
		}
		return true
	}
	return false
}

func (p *typeParser) member() bool {
	if p.pos >= len(p.toks) {
		return false
	}
	if k := p.toks[p.pos].kind; k != tokIdent && k != tokString {
		return false
	}
	p.pos++
	p.accept("?")
	if !p.accept(":") || !p.union() {
		return false
	}
	if !p.accept(";") {
		p.accept(",")
	}
	return true
}
