package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-toolform/pkg/render"
	"github.com/goliatone/go-toolform/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	confirm      []bool
	textAreas    []string
	selectIdx    []int
	infoMessages []string
	inputCfgs    []InputConfig
	confirmCfgs  []ConfirmConfig
	textCfgs     []TextAreaConfig
	inputPos     int
	confirmPos   int
	textPos      int
	selectPos    int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputCfgs = append(s.inputCfgs, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.confirmCfgs = append(s.confirmCfgs, cfg)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.textCfgs = append(s.textCfgs, cfg)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

const sampleSchema = `{
  "WERKS": {"type": "CHAR", "value": "1000"},
  "outer": {"type": "ZOUTER", "inner": 5, "flag": false},
  "ITEMS": []
}`

func TestCollect_PromptsEveryLeafAndEncodes(t *testing.T) {
	form := testsupport.MustBuildForm(t, "ZMM_STOCK", sampleSchema)
	driver := &stubDriver{
		inputs:    []string{"2000", "7"},
		confirm:   []bool{true},
		textAreas: []string{` ["A","B"] `},
	}
	renderer, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	got, err := renderer.Collect(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := map[string]any{
		"WERKS": map[string]any{"value": "2000"},
		"outer": map[string]any{"inner": json.Number("7"), "flag": true},
		"ITEMS": []any{"A", "B"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}

	if driver.inputCfgs[0].Default != "1000" || driver.inputCfgs[1].Default != "5" {
		t.Fatalf("expected schema defaults, got %+v", driver.inputCfgs)
	}
	if driver.confirmCfgs[0].Default {
		t.Fatalf("expected flag to default to false")
	}
	if len(driver.infoMessages) != 1 || driver.infoMessages[0] != "▸ outer (ZOUTER)" {
		t.Fatalf("expected group header, got %v", driver.infoMessages)
	}
}

func TestCollect_PrefillAndErrors(t *testing.T) {
	form := testsupport.MustBuildForm(t, "T", `{"COUNT": 1, "FLAG": true}`)
	driver := &stubDriver{inputs: []string{"3"}, confirm: []bool{false}}
	renderer, _ := New(WithPromptDriver(driver))

	_, err := renderer.Collect(context.Background(), form, render.RenderOptions{
		Values:     map[string]string{"COUNT": "9", "FLAG": "off"},
		Errors:     map[string][]string{"COUNT": {"too large"}},
		FormErrors: []string{"backend said no"},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if driver.inputCfgs[0].Default != "9" {
		t.Fatalf("expected prefill, got %q", driver.inputCfgs[0].Default)
	}
	if driver.confirmCfgs[0].Default {
		t.Fatalf("expected prefilled toggle to be off")
	}
	want := []string{"✗ backend said no", "✗ COUNT: too large"}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_EmptyForm(t *testing.T) {
	form := testsupport.MustBuildForm(t, "T", `null`)
	driver := &stubDriver{}
	renderer, _ := New(WithPromptDriver(driver))

	got, err := renderer.Collect(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil params, got %#v", got)
	}
	if len(driver.infoMessages) != 1 || driver.infoMessages[0] != "This tool takes no parameters." {
		t.Fatalf("unexpected info: %v", driver.infoMessages)
	}
}

func TestRender_OutputFormats(t *testing.T) {
	form := testsupport.MustBuildForm(t, "T", `{"outer": {"inner": 5}, "NAME": "x"}`)

	cases := []struct {
		format OutputFormat
		want   string
		ctype  string
	}{
		{OutputFormatJSON, "{\n  \"NAME\": \"y\",\n  \"outer\": {\n    \"inner\": 7\n  }\n}", "application/json"},
		{OutputFormatFormURLEncoded, "NAME=y&outer%5Binner%5D=7", "application/x-www-form-urlencoded"},
		{OutputFormatPrettyText, "NAME = y\nouter[inner] = 7\n", "text/plain"},
	}
	for _, tc := range cases {
		t.Run(string(tc.format), func(t *testing.T) {
			driver := &stubDriver{inputs: []string{"7", "y"}}
			renderer, _ := New(WithPromptDriver(driver), WithOutputFormat(tc.format))
			out, err := renderer.Render(context.Background(), form, render.RenderOptions{})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if string(out) != tc.want {
				t.Fatalf("output = %q, want %q", out, tc.want)
			}
			if renderer.ContentType() != tc.ctype {
				t.Fatalf("content type = %q", renderer.ContentType())
			}
		})
	}
}

func TestSubmitTransformer(t *testing.T) {
	form := testsupport.MustBuildForm(t, "T", `{"A": "x"}`)
	driver := &stubDriver{inputs: []string{"x"}}
	renderer, _ := New(WithPromptDriver(driver), WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
		values["EXTRA"] = true
		return values, nil
	}))
	got, err := renderer.Collect(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got["EXTRA"] != true {
		t.Fatalf("transformer not applied: %v", got)
	}

	failing, _ := New(WithPromptDriver(&stubDriver{inputs: []string{"x"}}), WithSubmitTransformer(func(map[string]any) (map[string]any, error) {
		return nil, errors.New("nope")
	}))
	if _, err := failing.Collect(context.Background(), form, render.RenderOptions{}); err == nil || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("expected transformer error, got %v", err)
	}
}

func TestCollect_PropagatesDriverErrors(t *testing.T) {
	form := testsupport.MustBuildForm(t, "T", `{"A": "x"}`)
	renderer, _ := New(WithPromptDriver(&stubDriver{}))
	if _, err := renderer.Collect(context.Background(), form, render.RenderOptions{}); err == nil {
		t.Fatalf("expected error when the driver runs out of answers")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Collect(ctx, form, render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidators(t *testing.T) {
	if validateNumber("") != nil || validateNumber(" 1.5 ") != nil {
		t.Fatalf("expected valid numbers")
	}
	if validateNumber("abc") == nil {
		t.Fatalf("expected invalid number")
	}
	if validateJSON(`{"a":1}`) != nil || validateJSON("") != nil {
		t.Fatalf("expected valid json")
	}
	if validateJSON(`[1,`) == nil {
		t.Fatalf("expected invalid json")
	}
}
