package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-toolform/pkg/model"
)

// Transformer mutates a FormModel before decorators run. Implementations
// can relabel fields, inject metadata, or perform arbitrary rewrites.
type Transformer interface {
	Transform(ctx context.Context, form *model.FormModel) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.FormModel) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.FormModel) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// PresetTransformer applies declarative per-tool overrides. Tools are keyed
// by id; fields by input name ("outer[inner]") or dotted path
// ("outer.inner"):
//
//	{
//	  "ZMM_STOCK": {
//	    "title": "Plant stock",
//	    "fields": {
//	      "WERKS[value]": {"label": "Plant", "placeholder": "1000"},
//	      "OPTIONS.FILTER": {"widget": "json-textarea", "rows": 6}
//	    }
//	  }
//	}
type PresetTransformer struct {
	presets map[string]toolPreset
}

type toolPreset struct {
	Title    string                `json:"title" yaml:"title"`
	Metadata map[string]string     `json:"metadata" yaml:"metadata"`
	Fields   map[string]fieldPatch `json:"fields" yaml:"fields"`
}

type fieldPatch struct {
	Label       string            `json:"label" yaml:"label"`
	Placeholder string            `json:"placeholder" yaml:"placeholder"`
	HelpText    string            `json:"helpText" yaml:"helpText"`
	Widget      string            `json:"widget" yaml:"widget"`
	Rows        int               `json:"rows" yaml:"rows"`
	Metadata    map[string]string `json:"metadata" yaml:"metadata"`
}

// NewPresetTransformer parses a preset document. JSON is tried first, then
// YAML.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var presets map[string]toolPreset
	if jsonErr := json.Unmarshal(data, &presets); jsonErr != nil {
		presets = nil
		if yamlErr := yaml.Unmarshal(data, &presets); yamlErr != nil {
			return nil, fmt.Errorf("preset transformer: parse document: %w", errors.Join(jsonErr, yamlErr))
		}
	}
	return &PresetTransformer{presets: presets}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the preset of the form's tool, if any. Patches naming
// fields the schema does not have are ignored since tool schemas change
// independently of presets.
func (t *PresetTransformer) Transform(ctx context.Context, form *model.FormModel) error {
	if form == nil {
		return errors.New("preset transformer: form model is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	preset, ok := t.presets[form.ToolID]
	if !ok {
		return nil
	}

	if preset.Title != "" {
		form.Title = preset.Title
	}
	if len(preset.Metadata) > 0 {
		form.Metadata = mergeStringMap(form.Metadata, preset.Metadata)
	}
	for key, patch := range preset.Fields {
		if field := findField(form.Fields, key); field != nil {
			applyFieldPatch(field, patch)
		}
	}
	return nil
}

func applyFieldPatch(field *model.Field, patch fieldPatch) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if patch.HelpText != "" {
		field.HelpText = patch.HelpText
	}
	if patch.Rows > 0 {
		field.Rows = patch.Rows
	}
	if len(patch.Metadata) > 0 {
		field.Metadata = mergeStringMap(field.Metadata, patch.Metadata)
	}
	if widget := strings.TrimSpace(patch.Widget); widget != "" {
		field.Widget = widget
		field.Metadata = mergeStringMap(field.Metadata, map[string]string{"widget": widget})
	}
}

func findField(fields []model.Field, key string) *model.Field {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	for idx := range fields {
		field := &fields[idx]
		if field.Name == key || strings.Join(field.Path, ".") == key {
			return field
		}
		if found := findField(field.Nested, key); found != nil {
			return found
		}
	}
	return nil
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
