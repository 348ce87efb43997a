package render

import (
	"strings"

	"github.com/goliatone/go-toolform/pkg/model"
)

// ErrorMapping splits an error payload into field-level messages keyed by
// input name and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrorPayload attaches messages to the deepest form field whose path is
// a prefix of the error location. Locations may be bracketed input names,
// dotted paths or JSON pointers; a leading "body" segment is ignored.
// Messages that match no field become form-level.
func MapErrorPayload(form model.FormModel, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{}
	if len(payload) == 0 {
		return mapping
	}

	for location, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		name := matchField(form.Fields, locationSegments(location))
		if name == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[name] = append(mapping.Fields[name], messages...)
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MergeFormErrors concatenates messages, trimming whitespace and removing
// duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func locationSegments(location string) []string {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil
	}
	segments := strings.FieldsFunc(location, func(r rune) bool {
		switch r {
		case '.', '/', '[', ']':
			return true
		}
		return false
	})
	if len(segments) > 0 && segments[0] == "#" {
		segments = segments[1:]
	}
	if len(segments) > 0 && segments[0] == "body" {
		segments = segments[1:]
	}
	return segments
}

func matchField(fields []model.Field, segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	best := ""
	bestDepth := 0
	var walk func([]model.Field)
	walk = func(fields []model.Field) {
		for _, field := range fields {
			if depth := prefixDepth(field.Path, segments); depth > bestDepth {
				best, bestDepth = field.Name, depth
			}
			walk(field.Nested)
		}
	}
	walk(fields)
	return best
}

// prefixDepth returns len(path) when path is a prefix of segments, or when
// segments only omit a trailing "value" segment of a wrapped scalar.
func prefixDepth(path, segments []string) int {
	if len(path) == 0 {
		return 0
	}
	if len(path) > len(segments) {
		if len(path) == len(segments)+1 && path[len(path)-1] == "value" {
			path = path[:len(path)-1]
		} else {
			return 0
		}
	}
	for i, segment := range path {
		if segments[i] != segment {
			return 0
		}
	}
	return len(path)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
