package params

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/goliatone/go-toolform/pkg/model"
)

var wordRun = regexp.MustCompile(`\w+`)

// Entry is one submitted leaf. Path takes precedence over Name; Name is only
// split into segments when no explicit Path is available.
type Entry struct {
	Name string
	Path []string
	Raw  string
	Kind model.ValueKind
}

// Segments returns the path the entry writes to.
func (e Entry) Segments() []string {
	if len(e.Path) > 0 {
		return e.Path
	}
	return SplitName(e.Name)
}

// Encode rebuilds the nested params object from flat entries. Intermediate
// maps are created on demand and the parsed leaf is assigned at the final
// segment; later entries win on collisions.
func Encode(entries []Entry) map[string]any {
	out := make(map[string]any)
	for _, entry := range entries {
		segments := entry.Segments()
		if len(segments) == 0 {
			continue
		}
		current := out
		for _, segment := range segments[:len(segments)-1] {
			next, ok := current[segment].(map[string]any)
			if !ok {
				next = make(map[string]any)
				current[segment] = next
			}
			current = next
		}
		current[segments[len(segments)-1]] = ParseTyped(entry.Raw, entry.Kind)
	}
	return out
}

// ParseLeaf attempts a strict JSON literal parse and falls back to the raw
// string. Numbers decode as float64.
func ParseLeaf(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}

// ParseTyped decodes raw according to the declared kind. Number leaves stay
// json.Number; text that is not a JSON number is kept as is. Unknown or
// empty kinds behave like ValueKindAuto.
func ParseTyped(raw string, kind model.ValueKind) any {
	switch kind {
	case model.ValueKindString:
		return raw
	case model.ValueKindNumber:
		if number, ok := parseNumber(raw); ok {
			return number
		}
		return raw
	case model.ValueKindBoolean:
		return parseBool(raw)
	default:
		return ParseLeaf(raw)
	}
}

// parseNumber accepts only JSON number literals and keeps their exact text,
// so large integers survive re-encoding.
func parseNumber(raw string) (json.Number, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return "", false
	}
	decoder := json.NewDecoder(strings.NewReader(trimmed))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return "", false
	}
	number, ok := value.(json.Number)
	return number, ok
}

// Truthy reports whether raw is one of the checkbox spellings of true.
func Truthy(raw string) bool {
	return parseBool(raw)
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "on", "1", "yes", "checked":
		return true
	default:
		return false
	}
}

// SplitName extracts path segments from a bracketed input name by taking
// every run of word characters. Names containing other characters do not
// round-trip; prefer Entry.Path.
func SplitName(name string) []string {
	return wordRun.FindAllString(name, -1)
}
