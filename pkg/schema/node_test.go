package schema_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-toolform/pkg/schema"
)

func TestParse_PreservesKeyOrderAndKinds(t *testing.T) {
	node, err := schema.Parse([]byte(`{
		"zeta": "z",
		"alpha": 1.50,
		"flags": [1, 2],
		"outer": {"type": "STRUCT", "inner": true, "name": "ignored as label"}
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if node.Kind != schema.KindGroup {
		t.Fatalf("expected root group, got %s", node.Kind)
	}

	var keys []string
	var kinds []schema.Kind
	for _, child := range node.Children {
		keys = append(keys, child.Key)
		kinds = append(kinds, child.Kind)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "flags", "outer"}, keys); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
	wantKinds := []schema.Kind{schema.KindScalar, schema.KindScalar, schema.KindArray, schema.KindGroup}
	if diff := cmp.Diff(wantKinds, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}

	alpha, _ := node.Child("alpha")
	if alpha.Value != json.Number("1.50") {
		t.Fatalf("expected number literal preserved, got %#v", alpha.Value)
	}

	outer, _ := node.Child("outer")
	if outer.TypeTag != "STRUCT" {
		t.Fatalf("expected type tag STRUCT, got %q", outer.TypeTag)
	}
	if _, ok := outer.Child("type"); ok {
		t.Fatalf("type tag must not become a child field")
	}
	if _, ok := outer.Child("name"); !ok {
		t.Fatalf("name entry should remain a regular field")
	}
}

func TestParse_WrappedScalar(t *testing.T) {
	node := schema.MustParse(`{"MATNR": {"type": "CHAR", "value": "100-200"}}`)
	child, ok := node.Child("MATNR")
	if !ok {
		t.Fatalf("missing child")
	}
	if child.Kind != schema.KindScalar || !child.Wrapped {
		t.Fatalf("expected wrapped scalar, got %+v", child)
	}
	if child.TypeTag != "CHAR" || child.Value != "100-200" {
		t.Fatalf("unexpected wrapped scalar %+v", child)
	}
}

func TestParse_NoParameters(t *testing.T) {
	for _, input := range []string{"", "   ", "null", `"text"`, "42", "[1,2]"} {
		node, err := schema.Parse([]byte(input))
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if !node.Empty() {
			t.Fatalf("expected empty node for %q, got %s", input, node.Kind)
		}
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := schema.Parse([]byte(`{"a": `))
	if !errors.Is(err, schema.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
	_, err = schema.Parse([]byte(`{"a": 1} {"b": 2}`))
	if !errors.Is(err, schema.ErrInvalidSchema) {
		t.Fatalf("expected trailing data error, got %v", err)
	}
}

func TestFromValue_SortsMapKeys(t *testing.T) {
	node := schema.FromValue(map[string]any{
		"b": "x",
		"a": map[string]any{"d": 1.0, "c": false},
	})
	if diff := cmp.Diff("a", node.Children[0].Key); diff != "" {
		t.Fatalf("unexpected first key (-want +got):\n%s", diff)
	}
	if node.Children[0].Children[0].Key != "c" {
		t.Fatalf("nested keys not sorted: %+v", node.Children[0].Children)
	}
	if !schema.FromValue("scalar").Empty() {
		t.Fatalf("non-object value should be empty")
	}
}

func TestNode_MarshalJSONRoundTrip(t *testing.T) {
	input := `{"b":1,"a":{"type":"T","x":"y"},"w":{"type":"CHAR","value":"v"},"l":[1,"2"]}`
	node := schema.MustParse(input)
	out, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if diff := cmp.Diff(input, string(out)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNode_Walk(t *testing.T) {
	node := schema.MustParse(`{"a": {"b": {"c": 1}}, "d": 2}`)
	var paths [][]string
	node.Walk(func(path []string, n schema.Node) bool {
		paths = append(paths, path)
		return n.Key != "b"
	})
	want := [][]string{{"a"}, {"a", "b"}, {"d"}}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("walk mismatch (-want +got):\n%s", diff)
	}
}
