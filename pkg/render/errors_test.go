package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-toolform/pkg/model"
	"github.com/goliatone/go-toolform/pkg/render"
	"github.com/goliatone/go-toolform/pkg/schema"
)

func TestMapErrorPayload(t *testing.T) {
	form := model.NewBuilder().Build("T", schema.MustParse(`{
		"header": {"doc": "4500", "items": {"pos": 10}},
		"WERKS": {"type": "CHAR", "value": "1000"}
	}`))

	mapping := render.MapErrorPayload(form, map[string][]string{
		"body.header.items.pos": {"must be positive", " must be positive "},
		"/header/doc":           {"unknown document"},
		"WERKS":                 {"invalid plant"},
		"header[items][pos][0]": {"too deep"},
		"other":                 {"unexpected field"},
		"":                      {"request rejected", ""},
	})

	wantFields := map[string][]string{
		"header[items][pos]": {"must be positive", "too deep"},
		"header[doc]":        {"unknown document"},
		"WERKS[value]":       {"invalid plant"},
	}
	sortMessages(mapping.Fields)
	if diff := cmp.Diff(wantFields, mapping.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"request rejected", "unexpected field"}
	if diff := cmp.Diff(wantForm, sortedCopy(mapping.Form)); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	got := render.MergeFormErrors([]string{"a", " b "}, "a", "", "c")
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}
