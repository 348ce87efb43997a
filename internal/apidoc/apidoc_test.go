package apidoc_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-toolform/internal/apidoc"
	"github.com/goliatone/go-toolform/pkg/testsupport"
)

const stockParams = `{
  "WERKS": {"type": "CHAR", "value": "1000"},
  "OPTIONS": {"type": "STRUCT", "QTY": {"type": "INT4", "value": 5}, "FLAG": true},
  "ITEMS": ["A", "B"]
}`

func property(t *testing.T, schema *openapi3.Schema, path ...string) *openapi3.Schema {
	t.Helper()
	current := schema
	for _, segment := range path {
		ref, ok := current.Properties[segment]
		require.Truef(t, ok, "missing property %q", segment)
		require.NotNil(t, ref.Value)
		current = ref.Value
	}
	return current
}

func TestFormSchema(t *testing.T) {
	form := testsupport.MustBuildForm(t, "ZMM_STOCK", stockParams)
	schema := apidoc.FormSchema(form)

	werks := property(t, schema, "WERKS", "value")
	assert.True(t, werks.Type.Is(openapi3.TypeString))
	assert.Equal(t, "1000", werks.Default)
	assert.Equal(t, "CHAR", werks.Extensions[apidoc.TypeTagExtension])

	options := property(t, schema, "OPTIONS")
	assert.True(t, options.Type.Is(openapi3.TypeObject))
	assert.Equal(t, "STRUCT", options.Extensions[apidoc.TypeTagExtension])

	qty := property(t, schema, "OPTIONS", "QTY", "value")
	assert.True(t, qty.Type.Is(openapi3.TypeNumber))
	assert.Equal(t, float64(5), qty.Default)

	flag := property(t, schema, "OPTIONS", "FLAG")
	assert.True(t, flag.Type.Is(openapi3.TypeBoolean))
	assert.Equal(t, true, flag.Default)

	items := property(t, schema, "ITEMS")
	assert.True(t, items.Type.Is(openapi3.TypeArray))
	assert.Equal(t, []any{"A", "B"}, items.Default)
}

func TestBuild_ValidDocument(t *testing.T) {
	form := testsupport.MustBuildForm(t, "ZMM_STOCK", stockParams)
	doc, err := apidoc.Build(context.Background(), apidoc.Info{ServerURL: "http://backend/"}, []apidoc.Tool{
		{ID: "ZMM_STOCK", Name: "Stock", Description: "Plant stock", Form: &form},
		{ID: "ZSD_ORDER"},
	})
	require.NoError(t, err)

	assert.Equal(t, "http://backend", doc.Servers[0].URL)
	for _, path := range []string{"/api/tools", "/api/tools/{tool_id}/details", "/api/tools/{tool_id}/use", "/api/config", "/api/service/status", "/api/logs", "/api/test-api"} {
		assert.NotNilf(t, doc.Paths.Value(path), "missing path %s", path)
	}
	logs := doc.Paths.Value("/api/logs")
	require.NotNil(t, logs.Get)
	require.NotNil(t, logs.Delete)
	assert.NotNil(t, logs.Get.Parameters.GetByInAndName(openapi3.ParameterInQuery, "limit"))

	require.Len(t, doc.Components.Schemas, 1)
	ref := doc.Components.Schemas[apidoc.SchemaName("ZMM_STOCK")]
	require.NotNil(t, ref)
	assert.Equal(t, "Stock", ref.Value.Title)
	assert.Equal(t, "Plant stock", ref.Value.Description)

	data, err := apidoc.Marshal(doc)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "3.0.3", decoded["openapi"])
}

func TestSchemaName(t *testing.T) {
	assert.Equal(t, "ZMM_STOCK_params", apidoc.SchemaName("ZMM_STOCK"))
	assert.Equal(t, "Z_TOOL_1_params", apidoc.SchemaName("Z/TOOL 1"))
	assert.Equal(t, "tool_params", apidoc.SchemaName("  "))
}

func TestBuild_SchemaNameCollision(t *testing.T) {
	form := testsupport.MustBuildForm(t, "A B", `{"X": 1}`)
	_, err := apidoc.Build(context.Background(), apidoc.Info{}, []apidoc.Tool{
		{ID: "A B", Form: &form},
		{ID: "A/B", Form: &form},
	})
	require.Error(t, err)
}

func TestBuild_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := apidoc.Build(ctx, apidoc.Info{}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
