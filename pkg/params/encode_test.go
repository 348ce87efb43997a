package params_test

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-toolform/pkg/model"
	"github.com/goliatone/go-toolform/pkg/params"
	"github.com/goliatone/go-toolform/pkg/schema"
)

func TestParseLeaf(t *testing.T) {
	cases := []struct {
		raw  string
		want any
	}{
		{raw: "42", want: float64(42)},
		{raw: "not json", want: "not json"},
		{raw: "true", want: true},
		{raw: `["x","y"]`, want: []any{"x", "y"}},
		{raw: "null", want: nil},
		{raw: "", want: ""},
		{raw: `{"a":1}`, want: map[string]any{"a": float64(1)}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, params.ParseLeaf(tc.raw)); diff != "" {
			t.Fatalf("ParseLeaf(%q) mismatch (-want +got):\n%s", tc.raw, diff)
		}
	}
}

func TestParseTyped(t *testing.T) {
	cases := []struct {
		raw  string
		kind model.ValueKind
		want any
	}{
		{raw: "007", kind: model.ValueKindString, want: "007"},
		{raw: "true", kind: model.ValueKindString, want: "true"},
		{raw: " 1.5 ", kind: model.ValueKindNumber, want: json.Number("1.5")},
		{raw: "abc", kind: model.ValueKindNumber, want: "abc"},
		{raw: "NaN", kind: model.ValueKindNumber, want: "NaN"},
		{raw: "+Inf", kind: model.ValueKindNumber, want: "+Inf"},
		{raw: "-infinity", kind: model.ValueKindNumber, want: "-infinity"},
		{raw: "0x10", kind: model.ValueKindNumber, want: "0x10"},
		{raw: `"5"`, kind: model.ValueKindNumber, want: `"5"`},
		{raw: "12345678901234567890", kind: model.ValueKindNumber, want: json.Number("12345678901234567890")},
		{raw: "on", kind: model.ValueKindBoolean, want: true},
		{raw: "false", kind: model.ValueKindBoolean, want: false},
		{raw: `[1]`, kind: model.ValueKindJSON, want: []any{float64(1)}},
		{raw: "42", kind: "", want: float64(42)},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, params.ParseTyped(tc.raw, tc.kind)); diff != "" {
			t.Fatalf("ParseTyped(%q, %q) mismatch (-want +got):\n%s", tc.raw, tc.kind, diff)
		}
	}
}

func TestSplitName(t *testing.T) {
	if diff := cmp.Diff([]string{"outer", "inner", "leaf"}, params.SplitName("outer[inner][leaf]")); diff != "" {
		t.Fatalf("split mismatch (-want +got):\n%s", diff)
	}
	if got := params.SplitName("[]"); len(got) != 0 {
		t.Fatalf("expected no segments, got %v", got)
	}
}

func TestEncode_BracketNameWithoutPath(t *testing.T) {
	got := params.Encode([]params.Entry{{Name: "outer[inner]", Raw: "7"}})
	want := map[string]any{"outer": map[string]any{"inner": float64(7)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("encode mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_PathWinsOverName(t *testing.T) {
	got := params.Encode([]params.Entry{{
		Name: "odd-key[x.y]",
		Path: []string{"odd-key", "x.y"},
		Raw:  "v",
		Kind: model.ValueKindString,
	}})
	want := map[string]any{"odd-key": map[string]any{"x.y": "v"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("encode mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_LaterEntryReplacesScalar(t *testing.T) {
	got := params.Encode([]params.Entry{
		{Name: "a", Raw: "x", Kind: model.ValueKindString},
		{Name: "a[b]", Raw: "y", Kind: model.ValueKindString},
	})
	want := map[string]any{"a": map[string]any{"b": "y"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("encode mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_SkipsEntriesWithoutSegments(t *testing.T) {
	got := params.Encode([]params.Entry{{Name: "--", Raw: "x"}})
	if len(got) != 0 {
		t.Fatalf("expected empty params, got %v", got)
	}
}

func TestEncode_EmptySchemaYieldsEmptyObject(t *testing.T) {
	form := model.NewBuilder().Build("T", schema.MustParse(""))
	got := params.Encode(params.FromForm(form, url.Values{}))
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil params, got %#v", got)
	}
}

func TestDefaults_RoundTripsSchemaValues(t *testing.T) {
	form := model.NewBuilder().Build("T", schema.MustParse(`{
		"plant": "1000",
		"qty": 2.5,
		"active": true,
		"header": {"type": "STRUCT", "doc": "4500", "items": {"pos": 10}}
	}`))

	got := params.Encode(params.Defaults(form))
	want := map[string]any{
		"plant":  "1000",
		"qty":    json.Number("2.5"),
		"active": true,
		"header": map[string]any{
			"doc":   "4500",
			"items": map[string]any{"pos": json.Number("10")},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaults_LargeIntegersEncodeExactly(t *testing.T) {
	form := model.NewBuilder().Build("T", schema.MustParse(`{"id": 12345678901234567890, "n": 9007199254740993}`))

	data, err := json.Marshal(params.Encode(params.Defaults(form)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `{"id":12345678901234567890,"n":9007199254740993}`; got != want {
		t.Fatalf("encoded %s, want %s", got, want)
	}
}

func TestFromValues_NonJSONNumbersStayText(t *testing.T) {
	form := model.NewBuilder().Build("T", schema.MustParse(`{"qty": 2}`))

	for _, raw := range []string{"NaN", "+Inf", "-Inf"} {
		encoded := params.Encode(params.FromValues(form, map[string]any{"qty": raw}))
		data, err := json.Marshal(encoded)
		if err != nil {
			t.Fatalf("marshal %q: %v", raw, err)
		}
		if want := `{"qty":"` + raw + `"}`; string(data) != want {
			t.Fatalf("encoded %s, want %s", data, want)
		}
	}
}

func TestFromForm_TogglesAndUnknownNames(t *testing.T) {
	form := model.NewBuilder().Build("T", schema.MustParse(`{
		"flag": true,
		"other": false,
		"code": "x",
		"list": []
	}`))

	values := url.Values{
		"other":       {"on"},
		"code":        {"007"},
		"list":        {`["a","b"]`},
		"extra[deep]": {"3"},
	}
	got := params.Encode(params.FromForm(form, values))
	want := map[string]any{
		"flag":  false,
		"other": true,
		"code":  "007",
		"list":  []any{"a", "b"},
		"extra": map[string]any{"deep": float64(3)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestFromForm_WrappedScalarKeepsValueKey(t *testing.T) {
	form := model.NewBuilder().Build("T", schema.MustParse(`{"WERKS": {"type": "CHAR", "value": "1000"}}`))
	got := params.Encode(params.FromForm(form, url.Values{"WERKS[value]": {"2000"}}))
	want := map[string]any{"WERKS": map[string]any{"value": "2000"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("wrapped mismatch (-want +got):\n%s", diff)
	}
}

func TestFromValues(t *testing.T) {
	form := model.NewBuilder().Build("T", schema.MustParse(`{"a": {"n": 1, "s": "x"}, "b": true}`))
	got := params.Encode(params.FromValues(form, map[string]any{
		"a[n]": 9,
		"a[s]": "y",
		"b":    false,
		"zzz":  "ignored",
	}))
	want := map[string]any{
		"a": map[string]any{"n": json.Number("9"), "s": "y"},
		"b": false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}
