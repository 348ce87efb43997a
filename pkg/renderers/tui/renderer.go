package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-toolform/pkg/model"
	"github.com/goliatone/go-toolform/pkg/params"
	"github.com/goliatone/go-toolform/pkg/render"
	"github.com/goliatone/go-toolform/pkg/result"
)

// Name is the registry key of the terminal renderer.
const Name = "tui"

// Renderer implements render.Renderer for terminal-driven sessions: it walks
// the form, prompts for every leaf and serializes the encoded params.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        defaultTheme(),
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for every field and returns the serialized params.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	values, err := r.Collect(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(values)
}

// Collect prompts for every field and returns the nested params object ready
// to send to the backend. Values in opts prefill the prompts.
func (r *Renderer) Collect(ctx context.Context, form model.FormModel, opts render.RenderOptions) (map[string]any, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}

	if form.Empty || len(form.Fields) == 0 {
		if err := r.driver.Info(ctx, opts.Translate("form.no_parameters")); err != nil {
			return nil, err
		}
		return map[string]any{}, nil
	}

	state := NewState(opts.Values, opts.Errors)
	for _, message := range opts.FormErrors {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}
	for _, field := range form.Fields {
		if err := r.promptField(ctx, field, state); err != nil {
			return nil, err
		}
	}

	values := params.Encode(state.Entries())
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return values, nil
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, state *State) error {
	for _, message := range state.ErrorsFor(field.Name) {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+field.Label+": "+message); err != nil {
			return err
		}
	}

	widget := strings.TrimSpace(field.Widget)
	if widget == "" {
		widget = model.DefaultWidget(field)
	}
	if field.IsGroup() {
		widget = model.WidgetGroup
	}

	switch widget {
	case model.WidgetGroup:
		return r.promptGroup(ctx, field, state)
	case model.WidgetToggle:
		return r.promptToggle(ctx, field, state)
	case model.WidgetNumber:
		return r.promptInput(ctx, field, state, validateNumber)
	case model.WidgetJSONTextarea:
		return r.promptJSON(ctx, field, state)
	default:
		return r.promptInput(ctx, field, state, nil)
	}
}

func (r *Renderer) promptGroup(ctx context.Context, field model.Field, state *State) error {
	if err := r.driver.Info(ctx, r.theme.GroupPrefix+field.Label); err != nil {
		return err
	}
	for _, child := range field.Nested {
		if err := r.promptField(ctx, child, state); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptToggle(ctx context.Context, field model.Field, state *State) error {
	defaultVal := field.Checked
	if prefill, ok := state.Prefill(field.Name); ok {
		defaultVal = params.Truthy(prefill)
	}
	resp, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: field.Label,
		Default: defaultVal,
		Help:    field.HelpText,
	})
	if err != nil {
		return err
	}
	state.Set(field, strconv.FormatBool(resp))
	return nil
}

func (r *Renderer) promptInput(ctx context.Context, field model.Field, state *State, validate func(string) error) error {
	resp, err := r.driver.Input(ctx, InputConfig{
		Message:   field.Label,
		Default:   defaultValue(field, state),
		Help:      field.HelpText,
		Validator: validate,
	})
	if err != nil {
		return err
	}
	state.Set(field, resp)
	return nil
}

func (r *Renderer) promptJSON(ctx context.Context, field model.Field, state *State) error {
	help := field.HelpText
	if help == "" {
		help = field.Placeholder
	}
	resp, err := r.driver.TextArea(ctx, TextAreaConfig{
		Message:   field.Label,
		Default:   defaultValue(field, state),
		Help:      help,
		Validator: validateJSON,
	})
	if err != nil {
		return err
	}
	state.Set(field, strings.TrimSpace(resp))
	return nil
}

func defaultValue(field model.Field, state *State) string {
	if prefill, ok := state.Prefill(field.Name); ok {
		return prefill
	}
	return field.Value
}

func validateNumber(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return fmt.Errorf("%q is not a number", raw)
	}
	return nil
}

func validateJSON(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || json.Valid([]byte(raw)) {
		return nil
	}
	return errors.New("not valid JSON")
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flatten(values).Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyText(values)), nil
	default:
		text, err := result.Pretty(values)
		if err != nil {
			return nil, fmt.Errorf("tui: encode params: %w", err)
		}
		return []byte(text), nil
	}
}

// flatten walks the nested params back into bracketed input names.
func flatten(values map[string]any) url.Values {
	out := url.Values{}
	var walk func(prefix string, value any)
	walk = func(prefix string, value any) {
		if nested, ok := value.(map[string]any); ok && len(nested) > 0 {
			for key, child := range nested {
				name := key
				if prefix != "" {
					name = prefix + "[" + key + "]"
				}
				walk(name, child)
			}
			return
		}
		out.Set(prefix, scalarText(value))
	}
	for key, value := range values {
		walk(key, value)
	}
	return out
}

func prettyText(values map[string]any) string {
	flat := flatten(values)
	names := make([]string, 0, len(flat))
	for name := range flat {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s = %s\n", name, flat.Get(name))
	}
	return b.String()
}

func scalarText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}
