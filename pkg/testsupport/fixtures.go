package testsupport

import (
	"bytes"
	"context"
	"io"
	"testing"

	pkgmodel "github.com/goliatone/go-toolform/pkg/model"
	"github.com/goliatone/go-toolform/pkg/schema"
)

// MustParseSchema parses an inline PARAM payload, failing the test on error.
func MustParseSchema(t *testing.T, raw string) schema.Node {
	t.Helper()

	node, err := schema.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return node
}

// MustBuildForm builds a form model for toolID from an inline PARAM payload
// using the default builder.
func MustBuildForm(t *testing.T, toolID, raw string, options ...pkgmodel.BuilderOption) pkgmodel.FormModel {
	t.Helper()
	return pkgmodel.NewBuilder(options...).Build(toolID, MustParseSchema(t, raw))
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
