// Package apidoc describes the backend REST surface consumed by the console
// as an OpenAPI 3 document, with one request schema per known tool form.
package apidoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-toolform/pkg/model"
)

// TypeTagExtension carries the backend type tag of a parameter.
const TypeTagExtension = "x-type-tag"

const openAPIVersion = "3.0.3"

// Info is the document header.
type Info struct {
	Title   string
	Version string
	// ServerURL is the backend root, listed under servers when set.
	ServerURL string
}

// Tool is one tool to describe. Form may be nil when the details were not
// fetched; the tool then contributes no schema.
type Tool struct {
	ID          string
	Name        string
	Description string
	Form        *model.FormModel
}

// Build assembles and validates the document.
func Build(ctx context.Context, info Info, tools []Tool) (*openapi3.T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(info.Title) == "" {
		info.Title = "Tool backend"
	}
	if strings.TrimSpace(info.Version) == "" {
		info.Version = "1.0.0"
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}

	doc := &openapi3.T{
		OpenAPI:    openAPIVersion,
		Info:       &openapi3.Info{Title: info.Title, Version: info.Version},
		Paths:      openapi3.NewPaths(),
		Components: &components,
	}
	if info.ServerURL != "" {
		doc.Servers = openapi3.Servers{{URL: strings.TrimRight(info.ServerURL, "/")}}
	}

	addBackendPaths(doc)

	seen := make(map[string]string, len(tools))
	for _, tool := range tools {
		if tool.Form == nil {
			continue
		}
		name := SchemaName(tool.ID)
		if other, ok := seen[name]; ok {
			return nil, fmt.Errorf("apidoc: tools %q and %q map to schema %q", other, tool.ID, name)
		}
		seen[name] = tool.ID

		schema := FormSchema(*tool.Form)
		schema.Title = firstNonEmpty(tool.Name, tool.ID)
		schema.Description = tool.Description
		components.Schemas[name] = openapi3.NewSchemaRef("", schema)
	}

	if err := doc.Validate(ctx,
		openapi3.DisableExamplesValidation(),
		openapi3.DisableSchemaDefaultsValidation(),
	); err != nil {
		return nil, fmt.Errorf("apidoc: validate: %w", err)
	}
	return doc, nil
}

// Marshal encodes doc as indented JSON.
func Marshal(doc *openapi3.T) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("apidoc: document is nil")
	}
	return json.MarshalIndent(doc, "", "  ")
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SchemaName returns the component name of a tool's request schema.
func SchemaName(toolID string) string {
	name := unsafeName.ReplaceAllString(strings.TrimSpace(toolID), "_")
	if name == "" {
		name = "tool"
	}
	return name + "_params"
}

// FormSchema converts a form into the JSON schema of the params object the
// form submits. Groups become objects tagged with their type.
func FormSchema(form model.FormModel) *openapi3.Schema {
	root := openapi3.NewObjectSchema()
	for _, field := range form.Fields {
		addField(root, nil, field)
	}
	return root
}

func addField(root *openapi3.Schema, parent []string, field model.Field) {
	if len(field.Path) == 0 {
		return
	}
	if field.IsGroup() {
		group := ensureObject(root, field.Path)
		if field.TypeTag != "" {
			group.Extensions = map[string]any{TypeTagExtension: field.TypeTag}
		}
		for _, nested := range field.Nested {
			addField(root, field.Path, nested)
		}
		return
	}

	container := ensureObject(root, field.Path[:len(field.Path)-1])
	key := field.Path[len(field.Path)-1]
	container.Properties[key] = openapi3.NewSchemaRef("", leafSchema(field))
}

func ensureObject(root *openapi3.Schema, path []string) *openapi3.Schema {
	current := root
	for _, segment := range path {
		if current.Properties == nil {
			current.Properties = openapi3.Schemas{}
		}
		ref, ok := current.Properties[segment]
		if !ok || ref == nil || ref.Value == nil || !isObject(ref.Value) {
			ref = openapi3.NewSchemaRef("", openapi3.NewObjectSchema())
			current.Properties[segment] = ref
		}
		current = ref.Value
	}
	if current.Properties == nil {
		current.Properties = openapi3.Schemas{}
	}
	return current
}

func isObject(schema *openapi3.Schema) bool {
	return schema.Type != nil && schema.Type.Is(openapi3.TypeObject)
}

func leafSchema(field model.Field) *openapi3.Schema {
	var schema *openapi3.Schema
	switch {
	case field.Type == model.FieldTypeArray:
		schema = openapi3.NewArraySchema().WithItems(openapi3.NewSchema())
	case field.ValueKind == model.ValueKindBoolean:
		schema = openapi3.NewBoolSchema()
	case field.ValueKind == model.ValueKindNumber:
		schema = openapi3.NewFloat64Schema()
	case field.ValueKind == model.ValueKindString:
		schema = openapi3.NewStringSchema()
	default:
		schema = openapi3.NewSchema()
	}
	if field.Default != nil {
		schema.Default = defaultValue(field.Default)
	}
	if field.TypeTag != "" {
		schema.Extensions = map[string]any{TypeTagExtension: field.TypeTag}
	}
	schema.Description = field.HelpText
	return schema
}

func defaultValue(value any) any {
	switch v := value.(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = defaultValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = defaultValue(item)
		}
		return out
	}
	return value
}

func addBackendPaths(doc *openapi3.T) {
	object := openapi3.NewObjectSchema()
	ack := openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema())
	toolID := openapi3.NewPathParameter("tool_id").WithSchema(openapi3.NewStringSchema())

	listTools := operation("listTools", "List tools", http.StatusOK, "Tool list wrapped in RESULT",
		openapi3.NewObjectSchema().WithProperty("RESULT", openapi3.NewArraySchema().WithItems(
			openapi3.NewObjectSchema().
				WithProperty("TOOL_ID", openapi3.NewStringSchema()).
				WithProperty("TOOL_NAME", openapi3.NewStringSchema()).
				WithProperty("DESCRIPTION", openapi3.NewStringSchema()),
		)))
	setPath(doc, "/api/tools", http.MethodGet, listTools)

	details := operation("toolDetails", "Tool details and parameter schema", http.StatusOK, "Tool details",
		openapi3.NewObjectSchema().
			WithProperty("TOOL_ID", openapi3.NewStringSchema()).
			WithProperty("VERSION", openapi3.NewStringSchema()).
			WithProperty("PARAM", openapi3.NewObjectSchema()))
	details.AddParameter(toolID)
	setPath(doc, "/api/tools/{tool_id}/details", http.MethodPost, details)

	use := operation("useTool", "Invoke a tool", http.StatusOK, "Raw tool result", object)
	use.AddParameter(toolID)
	use.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
		WithDescription("Nested params object; see the <tool>_params component schemas").
		WithRequired(true).
		WithJSONSchema(openapi3.NewObjectSchema())}
	setPath(doc, "/api/tools/{tool_id}/use", http.MethodPost, use)

	config := openapi3.NewObjectSchema().
		WithProperty("config", openapi3.NewObjectSchema()).
		WithProperty("sap_config", openapi3.NewObjectSchema())
	setPath(doc, "/api/config", http.MethodGet, operation("getConfig", "Backend configuration", http.StatusOK, "Configuration", config))
	saveConfig := operation("saveConfig", "Save backend configuration", http.StatusOK, "Acknowledgement", ack)
	saveConfig.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
		WithRequired(true).
		WithJSONSchema(openapi3.NewObjectSchema().
			WithProperty("sap", openapi3.NewObjectSchema()).
			WithProperty("mcp", openapi3.NewObjectSchema()))}
	setPath(doc, "/api/config", http.MethodPost, saveConfig)

	status := openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewStringSchema().WithEnum("running", "stopped")).
		WithProperty("host", openapi3.NewStringSchema()).
		WithProperty("port", openapi3.NewIntegerSchema()).
		WithProperty("pid", openapi3.NewIntegerSchema()).
		WithProperty("error", openapi3.NewStringSchema())
	setPath(doc, "/api/service/status", http.MethodGet, operation("serviceStatus", "Companion service status", http.StatusOK, "Status", status))
	serviceResult := openapi3.NewObjectSchema().
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("status", status)
	setPath(doc, "/api/service/start", http.MethodPost, operation("startService", "Start the companion service", http.StatusOK, "Result", serviceResult))
	setPath(doc, "/api/service/stop", http.MethodPost, operation("stopService", "Stop the companion service", http.StatusOK, "Result", serviceResult))

	logs := operation("logs", "Log tail", http.StatusOK, "Log lines",
		openapi3.NewObjectSchema().
			WithProperty("status", openapi3.NewStringSchema()).
			WithProperty("data", openapi3.NewStringSchema()).
			WithProperty("level", openapi3.NewStringSchema()).
			WithProperty("total_lines", openapi3.NewIntegerSchema()))
	logs.AddParameter(openapi3.NewQueryParameter("level").
		WithSchema(openapi3.NewStringSchema().WithEnum("all", "INFO", "WARNING", "ERROR", "CRITICAL")))
	logs.AddParameter(openapi3.NewQueryParameter("limit").
		WithSchema(openapi3.NewIntegerSchema().WithMin(1)))
	setPath(doc, "/api/logs", http.MethodGet, logs)
	setPath(doc, "/api/logs", http.MethodDelete, operation("clearLogs", "Clear the log file", http.StatusOK, "Acknowledgement", ack))

	setPath(doc, "/api/test-api", http.MethodPost, operation("testAPI", "Test the upstream connection", http.StatusOK, "Outcome",
		openapi3.NewObjectSchema().
			WithProperty("success", openapi3.NewBoolSchema()).
			WithProperty("message", openapi3.NewStringSchema())))
}

func operation(id, summary string, status int, description string, body *openapi3.Schema) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	op.AddResponse(status, openapi3.NewResponse().WithDescription(description).WithJSONSchema(body))
	op.AddResponse(0, openapi3.NewResponse().WithDescription("Error with detail or message"))
	return op
}

func setPath(doc *openapi3.T, path, method string, op *openapi3.Operation) {
	item := doc.Paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
		doc.Paths.Set(path, item)
	}
	item.SetOperation(method, op)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
