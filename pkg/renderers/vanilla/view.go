package vanilla

import (
	"encoding/json"
	"strings"

	"github.com/goliatone/go-toolform/pkg/model"
	"github.com/goliatone/go-toolform/pkg/params"
	"github.com/goliatone/go-toolform/pkg/render"
)

const controlIDPrefix = "tf-"

// fieldView projects a field and the per-request options into the map the
// component templates read.
func fieldView(field model.Field, widget string, options render.RenderOptions) map[string]any {
	value := field.Value
	checked := field.Checked
	if submitted, ok := options.Values[field.Name]; ok {
		value = submitted
		// a present checkbox with no value attribute submits ""
		checked = strings.TrimSpace(submitted) == "" || params.Truthy(submitted)
	}
	if widget == model.WidgetToggle {
		value = "true"
	}

	inputType := "text"
	if widget == model.WidgetNumber {
		inputType = "number"
	}

	pathJSON, _ := json.Marshal(field.Path)

	return map[string]any{
		"name":        field.Name,
		"id":          controlID(field.Path),
		"label":       field.Label,
		"type_tag":    field.TypeTag,
		"widget":      widget,
		"value_kind":  string(field.ValueKind),
		"value":       value,
		"checked":     checked,
		"placeholder": field.Placeholder,
		"help":        field.HelpText,
		"step":        field.Step,
		"rows":        rows(field.Rows),
		"input_type":  inputType,
		"path_json":   string(pathJSON),
		"errors":      stringsToAny(options.Errors[field.Name]),
	}
}

// controlID derives a DOM id from the field path. Characters outside
// [A-Za-z0-9_-] collapse to '-'.
func controlID(path []string) string {
	var b strings.Builder
	b.WriteString(controlIDPrefix)
	for idx, segment := range path {
		if idx > 0 {
			b.WriteByte('-')
		}
		for _, r := range segment {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
				b.WriteRune(r)
			default:
				b.WriteByte('-')
			}
		}
	}
	return b.String()
}

func rows(n int) int {
	if n <= 0 {
		return 4
	}
	return n
}

func stringsToAny(values []string) []any {
	if len(values) == 0 {
		return nil
	}
	out := make([]any, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func hiddenView(hidden map[string]string) []any {
	fields := render.SortedHiddenFields(hidden)
	if len(fields) == 0 {
		return nil
	}
	out := make([]any, 0, len(fields))
	for _, field := range fields {
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}
