package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-toolform/pkg/client"
	"github.com/goliatone/go-toolform/pkg/model"
	"github.com/goliatone/go-toolform/pkg/orchestrator"
	"github.com/goliatone/go-toolform/pkg/render"
)

type stubSource struct {
	details map[string]client.ToolDetails
	calls   int
}

func (s *stubSource) ToolDetails(_ context.Context, id string) (client.ToolDetails, error) {
	s.calls++
	details, ok := s.details[id]
	if !ok {
		return client.ToolDetails{}, errors.New("unknown tool")
	}
	return details, nil
}

func newSource() *stubSource {
	return &stubSource{details: map[string]client.ToolDetails{
		"ZMM_STOCK": {
			ID:          "ZMM_STOCK",
			Name:        "Stock",
			Version:     "3",
			Description: "Plant stock",
			Param:       json.RawMessage(`{"WERKS":{"type":"CHAR","value":"1000"},"OPTIONS":{"DEPTH":2,"TAGS":[]}}`),
		},
		"BROKEN": {ID: "BROKEN", Param: json.RawMessage(`"nope"`)},
	}}
}

func TestForm_BuildsDecoratedModel(t *testing.T) {
	source := newSource()
	orch := orchestrator.New(orchestrator.WithSource(source))

	built, err := orch.Form(context.Background(), orchestrator.Request{ToolID: "ZMM_STOCK"})
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	form := built.Form
	if form.Title != "Stock" || form.Description != "Plant stock" || form.Metadata["tool.version"] != "3" {
		t.Fatalf("unexpected form header: %+v", form)
	}
	leaf, ok := form.Lookup("OPTIONS[TAGS]")
	if !ok || leaf.Widget != model.WidgetJSONTextarea {
		t.Fatalf("expected json textarea for array, got %+v", leaf)
	}
	if form.Fields[1].Widget != model.WidgetGroup {
		t.Fatalf("expected group widget, got %q", form.Fields[1].Widget)
	}
}

func TestForm_UnparseableParamYieldsEmptyForm(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithSource(newSource()))
	built, err := orch.Form(context.Background(), orchestrator.Request{ToolID: "BROKEN"})
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if !built.Form.Empty {
		t.Fatalf("expected empty form")
	}
}

func TestForm_UsesSuppliedDetails(t *testing.T) {
	source := newSource()
	orch := orchestrator.New(orchestrator.WithSource(source))
	details := client.ToolDetails{Param: json.RawMessage(`{"A":1}`)}

	built, err := orch.Form(context.Background(), orchestrator.Request{ToolID: "LOCAL", Details: &details})
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if source.calls != 0 {
		t.Fatalf("expected source to be bypassed")
	}
	if built.Form.ToolID != "LOCAL" || built.Form.Endpoint != "/api/tools/LOCAL/use" {
		t.Fatalf("unexpected form identity: %+v", built.Form)
	}
}

func TestForm_Errors(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithSource(newSource()))
	if _, err := orch.Form(context.Background(), orchestrator.Request{}); err == nil {
		t.Fatalf("expected error without tool id")
	}
	if _, err := orch.Form(context.Background(), orchestrator.Request{ToolID: "MISSING"}); err == nil || !strings.Contains(err.Error(), "MISSING") {
		t.Fatalf("expected source error, got %v", err)
	}
	if _, err := orchestrator.New().Form(context.Background(), orchestrator.Request{ToolID: "X"}); err == nil {
		t.Fatalf("expected error without source")
	}
}

func TestGenerate_RendersWithDefaultRenderer(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithSource(newSource()))
	out, err := orch.Generate(context.Background(), orchestrator.Request{
		ToolID:        "ZMM_STOCK",
		RenderOptions: render.RenderOptions{Values: map[string]string{"WERKS[value]": "2000"}},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(out)
	for _, fragment := range []string{`data-tool-id="ZMM_STOCK"`, `name="WERKS[value]" value="2000"`, `<h2 class="tf-form-title">Stock</h2>`} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, html)
		}
	}

	if _, err := orch.Generate(context.Background(), orchestrator.Request{ToolID: "ZMM_STOCK", Renderer: "pdf"}); err == nil {
		t.Fatalf("expected unknown renderer error")
	}
}

func TestPresetTransformer(t *testing.T) {
	files := fstest.MapFS{
		"presets.yaml": &fstest.MapFile{Data: []byte(`
ZMM_STOCK:
  title: Plant stock
  fields:
    WERKS[value]:
      label: Plant
      placeholder: "0001"
    OPTIONS.DEPTH:
      widget: text
      helpText: levels to expand
    GHOST:
      label: ignored
`)},
	}
	preset, err := orchestrator.NewPresetTransformerFromFS(files, "presets.yaml")
	if err != nil {
		t.Fatalf("load preset: %v", err)
	}
	orch := orchestrator.New(orchestrator.WithSource(newSource()), orchestrator.WithSchemaTransformer(preset))

	built, err := orch.Form(context.Background(), orchestrator.Request{ToolID: "ZMM_STOCK"})
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if built.Form.Title != "Plant stock" {
		t.Fatalf("title = %q", built.Form.Title)
	}
	werks, _ := built.Form.Lookup("WERKS[value]")
	if werks.Label != "Plant" || werks.Placeholder != "0001" {
		t.Fatalf("werks patch not applied: %+v", werks)
	}
	depth, _ := built.Form.Lookup("OPTIONS[DEPTH]")
	if depth.Widget != model.WidgetText || depth.HelpText != "levels to expand" {
		t.Fatalf("depth patch not applied or overridden by decorators: %+v", depth)
	}
}

func TestPresetTransformer_RejectsEmptyDocument(t *testing.T) {
	if _, err := orchestrator.NewPresetTransformer([]byte("  ")); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestTransformerFunc(t *testing.T) {
	called := false
	orch := orchestrator.New(
		orchestrator.WithSource(newSource()),
		orchestrator.WithSchemaTransformer(orchestrator.TransformerFunc(func(_ context.Context, form *model.FormModel) error {
			called = true
			form.Title = "custom"
			return nil
		})),
	)
	built, err := orch.Form(context.Background(), orchestrator.Request{ToolID: "ZMM_STOCK"})
	if err != nil || !called || built.Form.Title != "custom" {
		t.Fatalf("transformer func not applied: %v %+v", err, built.Form.Title)
	}
}
