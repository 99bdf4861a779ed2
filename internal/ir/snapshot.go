package ir

import (
	"encoding/json"
	"sort"
)

// MarshalSnapshot renders v as indented JSON with a trailing newline. Used for
// IR snapshots and execution reports.
func MarshalSnapshot(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// SortFiles orders files by path in place.
func SortFiles(files []PlannedFile) {
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}
