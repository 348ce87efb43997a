package render

import (
	"slices"
	"strings"
)

// HiddenField is a hidden input emitted before the visible widgets.
type HiddenField struct {
	Name  string
	Value string
}

// SortedHiddenFields orders RenderOptions.Hidden by name so output is stable.
// Blank names are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	out := make([]HiddenField, 0, len(fields))
	for name, value := range fields {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, HiddenField{Name: name, Value: value})
		}
	}
	if len(out) == 0 {
		return nil
	}
	slices.SortFunc(out, func(a, b HiddenField) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
