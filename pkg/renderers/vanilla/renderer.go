package vanilla

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-toolform/pkg/model"
	"github.com/goliatone/go-toolform/pkg/render"
	rendertemplate "github.com/goliatone/go-toolform/pkg/render/template"
	gotemplate "github.com/goliatone/go-toolform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-toolform/pkg/renderers/vanilla/components"
)

// Name is the registry key of the HTML renderer.
const Name = "vanilla"

const formTemplate = "templates/form.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
	overrides        map[string]components.Descriptor
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithComponent registers or overrides a single component by widget name.
func WithComponent(name string, descriptor components.Descriptor) Option {
	return func(cfg *config) {
		if cfg.overrides == nil {
			cfg.overrides = make(map[string]components.Descriptor)
		}
		cfg.overrides[name] = descriptor
	}
}

// Renderer emits HTML forms and console pages from embedded pongo2
// templates.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	components *components.Registry
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	registry := cfg.components
	if registry == nil {
		registry = components.NewDefaultRegistry()
	} else {
		registry = registry.Clone()
	}
	for name, descriptor := range cfg.overrides {
		if err := registry.Register(name, descriptor); err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
	}

	return &Renderer{templates: renderer, components: registry}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the form markup, prefilled from options.Values, with any
// execution result appended below the actions.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	var partials map[string]string
	if options.Theme != nil {
		partials = options.Theme.Partials
	}

	var (
		fields bytes.Buffer
		used   []string
	)
	for _, field := range form.Fields {
		if err := r.renderField(&fields, field, options, partials, &used); err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
	}
	stylesheets, scripts := r.components.Assets(used)

	action := strings.TrimSpace(options.Action)
	if action == "" {
		action = form.Endpoint
	}
	method := strings.ToLower(strings.TrimSpace(form.Method))
	if method == "" {
		method = "post"
	}

	data := map[string]any{
		"form": map[string]any{
			"tool_id":          form.ToolID,
			"title":            form.Title,
			"description_html": SanitizeDescription(form.Description),
			"empty":            form.Empty || len(form.Fields) == 0,
			"action":           action,
			"method":           method,
		},
		"fields_html": fields.String(),
		"hidden":      hiddenView(options.Hidden),
		"form_errors": stringsToAny(options.FormErrors),
		"result":      resultView(options),
		"theme":       themeView(options.Theme),
		"stylesheets": stringsToAny(stylesheets),
		"scripts":     scriptsView(scripts),
	}
	for name, fn := range render.TemplateFuncs(options.Translator, options.Locale) {
		data[name] = fn
	}

	out, err := r.templates.RenderTemplate(formTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(out), nil
}

func (r *Renderer) renderField(buf *bytes.Buffer, field model.Field, options render.RenderOptions, partials map[string]string, used *[]string) error {
	widget := strings.TrimSpace(field.Widget)
	if widget == "" {
		widget = model.DefaultWidget(field)
	}
	descriptor, ok := r.components.Descriptor(widget)
	if !ok {
		widget = components.NameText
		if field.IsGroup() {
			widget = components.NameGroup
		}
		if descriptor, ok = r.components.Descriptor(widget); !ok {
			return fmt.Errorf("no component registered for %q (field %s)", widget, field.Name)
		}
	}

	var children bytes.Buffer
	if field.IsGroup() {
		for _, child := range field.Nested {
			if err := r.renderField(&children, child, options, partials, used); err != nil {
				return err
			}
		}
	}

	*used = append(*used, widget)
	return descriptor.Renderer(buf, field, components.ComponentData{
		Template:      r.templates,
		View:          fieldView(field, widget, options),
		Children:      children.String(),
		ThemePartials: partials,
	})
}

func resultView(options render.RenderOptions) map[string]any {
	if options.Result == nil {
		return nil
	}
	return map[string]any{
		"text": options.Result.Text,
		"html": options.Result.HTML,
		"json": options.Result.JSON,
	}
}

func themeView(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return nil
	}
	return map[string]any{
		"name":    cfg.Theme,
		"variant": cfg.Variant,
		"css":     render.CSSVarsStyle(cfg),
	}
}

func scriptsView(scripts []components.Script) []any {
	if len(scripts) == 0 {
		return nil
	}
	out := make([]any, 0, len(scripts))
	for _, script := range scripts {
		out = append(out, map[string]any{
			"src":    script.Src,
			"inline": script.Inline,
			"defer":  script.Defer,
			"module": script.Module,
		})
	}
	return out
}
