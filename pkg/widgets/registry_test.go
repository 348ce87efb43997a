package widgets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-toolform/pkg/model"
	"github.com/goliatone/go-toolform/pkg/schema"
)

func TestResolve_ExplicitWidgetWins(t *testing.T) {
	reg := NewRegistry()
	field := model.Field{
		Type: model.FieldTypeBoolean,
		Metadata: map[string]string{
			"widget": "custom-toggle",
		},
	}

	if got, ok := reg.Resolve(field); !ok || got != "custom-toggle" {
		t.Fatalf("expected explicit widget to win, got %q (ok=%v)", got, ok)
	}
}

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name   string
		field  model.Field
		expect string
	}{
		{name: "group", field: model.Field{Type: model.FieldTypeObject}, expect: WidgetGroup},
		{name: "toggle", field: model.Field{Type: model.FieldTypeBoolean}, expect: WidgetToggle},
		{name: "number", field: model.Field{Type: model.FieldTypeNumber}, expect: WidgetNumber},
		{name: "array", field: model.Field{Type: model.FieldTypeArray}, expect: WidgetJSONTextarea},
		{name: "string fallback", field: model.Field{Type: model.FieldTypeString}, expect: WidgetText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reg.Resolve(tc.field)
			if !ok || got != tc.expect {
				t.Fatalf("expected %q, got %q (ok=%v)", tc.expect, got, ok)
			}
		})
	}
}

func TestResolve_PriorityAndOrder(t *testing.T) {
	reg := NewEmptyRegistry()
	reg.Register("low", 10, func(model.Field) bool { return true })
	reg.Register("high", 50, func(model.Field) bool { return true })
	reg.Register("high-late", 50, func(model.Field) bool { return true })

	if got, _ := reg.Resolve(model.Field{}); got != "high" {
		t.Fatalf("expected earliest highest priority rule, got %q", got)
	}
}

func TestResolve_EmptyRegistry(t *testing.T) {
	reg := NewEmptyRegistry()
	if got, ok := reg.Resolve(model.Field{Type: model.FieldTypeString}); ok {
		t.Fatalf("expected no resolution, got %q", got)
	}
	reg.SetFallback("plain")
	if got := reg.ResolveName(model.Field{}); got != "plain" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestRegistry_AsBuilderResolverAndDecorator(t *testing.T) {
	reg := NewRegistry()
	reg.Register("password", 95, func(field model.Field) bool {
		return field.Label == "secret"
	})

	builder := model.NewBuilder(model.WithWidgetResolver(reg.ResolveName))
	form := builder.Build("T", schema.MustParse(`{"secret": "x", "opts": {"on": true}}`))

	got := map[string]string{}
	for _, leaf := range form.Leaves() {
		got[leaf.Name] = leaf.Widget
	}
	want := map[string]string{"secret": "password", "opts[on]": WidgetToggle}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("widget mismatch (-want +got):\n%s", diff)
	}

	form.Fields[1].Nested[0].Metadata = map[string]string{"widget": "switch"}
	if err := reg.Decorate(&form); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if form.Fields[1].Nested[0].Widget != "switch" {
		t.Fatalf("decorator did not apply explicit widget: %+v", form.Fields[1].Nested[0])
	}
}
