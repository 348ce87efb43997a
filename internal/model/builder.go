package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-toolform/pkg/schema"
)

const (
	arrayPlaceholder = `["value1", "value2"]`
	arrayHelpText    = `JSON array, e.g. ["value1", "value2"]`
	arrayRows        = 3
)

// Builder converts tool parameter schemas into form models.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	if options.WidgetResolver != nil {
		opts.WidgetResolver = options.WidgetResolver
	}
	if options.EndpointFormat != "" {
		opts.EndpointFormat = options.EndpointFormat
	}
	return &Builder{opts: opts}
}

// Build transforms a parameter schema into a FormModel. It never fails:
// a missing or non-object schema yields an Empty form and malformed leaves
// degrade to text inputs.
func (b *Builder) Build(toolID string, root schema.Node) FormModel {
	form := FormModel{
		ToolID: toolID,
		Method: "POST",
	}
	if toolID != "" {
		form.Endpoint = fmt.Sprintf(b.opts.EndpointFormat, toolID)
	}
	if root.Kind != schema.KindGroup {
		form.Empty = true
		return form
	}
	form.Fields = b.fields(root.Children, "", nil)
	return form
}

func (b *Builder) fields(nodes []schema.Node, parentName string, parentPath []string) []Field {
	if len(nodes) == 0 {
		return nil
	}
	fields := make([]Field, 0, len(nodes))
	for _, node := range nodes {
		name := node.Key
		if parentName != "" {
			name = parentName + "[" + node.Key + "]"
		}
		path := appendPath(parentPath, node.Key)

		var field Field
		switch node.Kind {
		case schema.KindGroup:
			field = b.group(node, name, path)
		case schema.KindArray:
			field = b.array(node, name, path)
		default:
			field = b.scalar(node, name, path)
		}
		field.Widget = b.opts.WidgetResolver(field)
		fields = append(fields, field)
	}
	return fields
}

func (b *Builder) group(node schema.Node, name string, path []string) Field {
	label := b.opts.Labeler(node.Key)
	if node.TypeTag != "" {
		label = fmt.Sprintf("%s (%s)", label, node.TypeTag)
	}
	return Field{
		Name:    name,
		Path:    path,
		Type:    FieldTypeObject,
		Label:   label,
		TypeTag: node.TypeTag,
		Nested:  b.fields(node.Children, name, path),
	}
}

func (b *Builder) array(node schema.Node, name string, path []string) Field {
	field := Field{
		Name:        name,
		Path:        path,
		Type:        FieldTypeArray,
		Label:       b.opts.Labeler(node.Key),
		TypeTag:     node.TypeTag,
		ValueKind:   ValueKindJSON,
		Placeholder: arrayPlaceholder,
		HelpText:    arrayHelpText,
		Rows:        arrayRows,
	}
	if len(node.Items) > 0 {
		field.Default = node.Items
	}
	return field
}

func (b *Builder) scalar(node schema.Node, name string, path []string) Field {
	if node.Wrapped {
		name += "[" + schema.ValueKey + "]"
		path = appendPath(path, schema.ValueKey)
	}

	field := Field{
		Name:    name,
		Path:    path,
		Label:   b.opts.Labeler(node.Key),
		TypeTag: node.TypeTag,
		Default: node.Value,
	}

	switch value := node.Value.(type) {
	case bool:
		field.Type = FieldTypeBoolean
		field.ValueKind = ValueKindBoolean
		field.Checked = value
	case json.Number:
		field.Type = FieldTypeNumber
		field.ValueKind = ValueKindNumber
		field.Value = value.String()
		field.Placeholder = value.String()
		field.Step = "any"
	case float64, float32, int, int64, int32:
		literal := stringify(value)
		field.Type = FieldTypeNumber
		field.ValueKind = ValueKindNumber
		field.Value = literal
		field.Placeholder = literal
		field.Step = "any"
	case string:
		field.Type = FieldTypeString
		field.ValueKind = ValueKindString
		field.Value = value
		field.Placeholder = value
	default:
		literal := stringify(value)
		field.Type = FieldTypeString
		field.ValueKind = ValueKindJSON
		field.Value = literal
		field.Placeholder = literal
	}

	field.HelpText = helpText(node)
	return field
}

func helpText(node schema.Node) string {
	text := "type: " + runtimeType(node.Value)
	if node.TypeTag != "" {
		text += ", TYPE: " + node.TypeTag
	}
	return text
}

func runtimeType(value any) string {
	switch value.(type) {
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64, int32:
		return "number"
	case string:
		return "string"
	case nil:
		return "null"
	default:
		return "object"
	}
}

func stringify(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}

// DefaultWidget picks the widget for a field from its type alone.
func DefaultWidget(field Field) string {
	switch field.Type {
	case FieldTypeObject:
		return WidgetGroup
	case FieldTypeArray:
		return WidgetJSONTextarea
	case FieldTypeBoolean:
		return WidgetToggle
	case FieldTypeNumber:
		return WidgetNumber
	default:
		return WidgetText
	}
}

// PathName encodes a segment path as a bracketed input name.
func PathName(path []string) string {
	if len(path) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(path[0])
	for _, segment := range path[1:] {
		b.WriteByte('[')
		b.WriteString(segment)
		b.WriteByte(']')
	}
	return b.String()
}

func appendPath(path []string, segment string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, segment)
}
