package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-toolform/pkg/result"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form model.
type RenderOptions struct {
	// Action overrides the form action; empty uses the form endpoint.
	Action string
	// Values pre-populates controls keyed by input name (e.g. "outer[inner]"),
	// overriding the defaults carried by the schema. Toggle values accept the
	// usual checkbox spellings ("on", "true").
	Values map[string]string
	// Errors surfaces field-level feedback keyed by input name.
	Errors map[string][]string
	// FormErrors are messages that do not belong to a single field.
	FormErrors []string
	// Hidden emits additional hidden inputs.
	Hidden map[string]string
	// Result is the formatted output of the last execution, if any.
	Result *result.Display
	// Theme carries tokens and CSS variables for the HTML renderer.
	Theme *theme.RendererConfig
	// Locale selects the chrome strings; empty means DefaultLocale.
	Locale string
	// Translator overrides the built-in catalog.
	Translator Translator
}

// Translate resolves key through the configured translator and locale,
// falling back to the built-in catalog.
func (o RenderOptions) Translate(key string, args ...any) string {
	return TranslateWith(o.Translator, o.Locale, key, args...)
}
