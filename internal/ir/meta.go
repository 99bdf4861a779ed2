package ir

import "sort"

// Reserved Meta keys. Renderers treat an absent key as its documented default.
const (
	// MetaSkipAuthRefresh marks endpoints that must not be wrapped in the
	// client's auth-refresh retry (default false).
	MetaSkipAuthRefresh = "skipAuthRefresh"
	// MetaQueryHeuristic records why a non-GET endpoint became query-capable
	// (default "": not reclassified).
	MetaQueryHeuristic = "queryHeuristic"
)

// Meta is the open extension bag optional passes use to attach flags to an
// endpoint without widening EndpointItem. encoding/json emits it key-sorted.
type Meta map[string]string

// Set stores value under key, allocating the map on first use.
func (m *Meta) Set(key, value string) {
	if *m == nil {
		*m = make(Meta)
	}
	(*m)[key] = value
}

// Flag reports whether key holds "true". Absent keys are false.
func (m Meta) Flag(key string) bool {
	return m[key] == "true"
}

// Keys returns the keys in sorted order.
func (m Meta) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
