package params

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/goliatone/go-toolform/pkg/model"
)

// FromForm maps submitted HTML form values onto entries using the form's own
// field paths. Toggles that were not submitted encode as false. Names the
// form does not know fall back to SplitName with auto decoding, sorted for
// deterministic output.
func FromForm(form model.FormModel, values url.Values) []Entry {
	leaves := form.Leaves()
	entries := make([]Entry, 0, len(leaves))
	known := make(map[string]struct{}, len(leaves))

	for _, leaf := range leaves {
		known[leaf.Name] = struct{}{}
		submitted, ok := values[leaf.Name]
		if leaf.ValueKind == model.ValueKindBoolean {
			raw := "false"
			if ok && len(submitted) > 0 {
				raw = submitted[len(submitted)-1]
				if raw == "" {
					raw = "true"
				}
			}
			entries = append(entries, leafEntry(leaf, raw))
			continue
		}
		if !ok || len(submitted) == 0 {
			continue
		}
		entries = append(entries, leafEntry(leaf, submitted[len(submitted)-1]))
	}

	return append(entries, unknownEntries(values, known)...)
}

// FromValues maps values keyed by input name (as collected by the terminal
// renderer) onto entries. Non-string values are kept as JSON literals.
func FromValues(form model.FormModel, values map[string]any) []Entry {
	leaves := form.Leaves()
	entries := make([]Entry, 0, len(leaves))
	for _, leaf := range leaves {
		value, ok := values[leaf.Name]
		if !ok {
			continue
		}
		entries = append(entries, leafEntry(leaf, rawString(value)))
	}
	return entries
}

// Defaults returns the entries a form submits when every widget keeps its
// prefilled value.
func Defaults(form model.FormModel) []Entry {
	leaves := form.Leaves()
	entries := make([]Entry, 0, len(leaves))
	for _, leaf := range leaves {
		raw := leaf.Value
		if leaf.ValueKind == model.ValueKindBoolean {
			raw = fmt.Sprint(leaf.Checked)
		}
		entries = append(entries, leafEntry(leaf, raw))
	}
	return entries
}

func leafEntry(leaf model.Field, raw string) Entry {
	kind := leaf.ValueKind
	if kind == "" {
		kind = model.ValueKindAuto
	}
	return Entry{
		Name: leaf.Name,
		Path: append([]string(nil), leaf.Path...),
		Raw:  raw,
		Kind: kind,
	}
}

func unknownEntries(values url.Values, known map[string]struct{}) []Entry {
	var names []string
	for name := range values {
		if _, ok := known[name]; ok {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		submitted := values[name]
		if len(submitted) == 0 {
			continue
		}
		entries = append(entries, Entry{
			Name: name,
			Raw:  submitted[len(submitted)-1],
			Kind: model.ValueKindAuto,
		})
	}
	return entries
}

func rawString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case nil:
		return "null"
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(data)
	}
}
