package model

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
)

// ValueKind declares how a submitted raw string turns back into a JSON value.
// It travels with every leaf so decoding never has to guess.
type ValueKind string

const (
	ValueKindString  ValueKind = "string"
	ValueKindNumber  ValueKind = "number"
	ValueKindBoolean ValueKind = "boolean"
	ValueKindJSON    ValueKind = "json"
	// ValueKindAuto attempts a JSON literal parse and falls back to raw text.
	ValueKindAuto ValueKind = "auto"
)

// Built-in widget identifiers.
const (
	WidgetGroup        = "group"
	WidgetToggle       = "toggle"
	WidgetNumber       = "number"
	WidgetJSONTextarea = "json-textarea"
	WidgetText         = "text"
)

// Field models an individual input (or a collapsible group of inputs) inside a
// generated tool form. Path holds the schema keys from the root down to the
// value the field submits; Name is the bracket-encoded form of the same walk
// and doubles as the HTML input name.
type Field struct {
	Name        string            `json:"name"`
	Path        []string          `json:"path"`
	Type        FieldType         `json:"type"`
	Widget      string            `json:"widget,omitempty"`
	Label       string            `json:"label,omitempty"`
	TypeTag     string            `json:"typeTag,omitempty"`
	ValueKind   ValueKind         `json:"valueKind,omitempty"`
	Default     any               `json:"default,omitempty"`
	Value       string            `json:"value,omitempty"`
	Checked     bool              `json:"checked,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	HelpText    string            `json:"helpText,omitempty"`
	Step        string            `json:"step,omitempty"`
	Rows        int               `json:"rows,omitempty"`
	Nested      []Field           `json:"nested,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// IsGroup reports whether the field only wraps nested fields.
func (f Field) IsGroup() bool {
	return f.Type == FieldTypeObject
}

// FormModel is the top-level representation renderers consume.
type FormModel struct {
	ToolID      string            `json:"toolId"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Empty       bool              `json:"empty,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Leaves returns every non-group field in render order.
func (f FormModel) Leaves() []Field {
	var out []Field
	collectLeaves(f.Fields, &out)
	return out
}

// Lookup finds a leaf field by its input name.
func (f FormModel) Lookup(name string) (Field, bool) {
	for _, leaf := range f.Leaves() {
		if leaf.Name == name {
			return leaf, true
		}
	}
	return Field{}, false
}

func collectLeaves(fields []Field, out *[]Field) {
	for _, field := range fields {
		if field.IsGroup() {
			collectLeaves(field.Nested, out)
			continue
		}
		*out = append(*out, field)
	}
}
