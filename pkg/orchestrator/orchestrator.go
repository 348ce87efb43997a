package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-toolform/pkg/client"
	"github.com/goliatone/go-toolform/pkg/model"
	"github.com/goliatone/go-toolform/pkg/render"
	"github.com/goliatone/go-toolform/pkg/renderers/vanilla"
	"github.com/goliatone/go-toolform/pkg/schema"
	"github.com/goliatone/go-toolform/pkg/widgets"
)

const defaultRendererName = vanilla.Name

// Source fetches tool details. *client.Client satisfies it.
type Source interface {
	ToolDetails(ctx context.Context, toolID string) (client.ToolDetails, error)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithSource sets where tool details come from.
func WithSource(source Source) Option {
	return func(o *Orchestrator) {
		o.source = source
	}
}

// WithModelBuilder injects a custom form model builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithBuilderOptions configures the default model builder. It has no effect
// together with WithModelBuilder.
func WithBuilderOptions(options ...model.BuilderOption) Option {
	return func(o *Orchestrator) {
		o.builderOptions = append(o.builderOptions, options...)
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSchemaTransformer registers a Transformer that can mutate form models
// after building but before decorators run.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDecorators registers decorators that run against the generated form
// model before rendering. A widgets.Registry is registered by default.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator coordinates the pipeline from a tool id to rendered output.
// It applies sensible defaults (vanilla renderer, built-in widgets) while
// remaining open to dependency injection.
type Orchestrator struct {
	source          Source
	builder         model.Builder
	builderOptions  []model.BuilderOption
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	decorators      []model.Decorator
	logger          zerolog.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes what to build and how to render it.
type Request struct {
	// ToolID selects the tool. Required unless Details is set.
	ToolID string
	// Details bypasses the source when the caller already holds the payload.
	Details *client.ToolDetails
	// Renderer names the renderer; empty uses the default.
	Renderer string
	// RenderOptions carries per-request values, errors, results and theme.
	RenderOptions render.RenderOptions
}

// Result is a built form together with the details it came from.
type Result struct {
	Details client.ToolDetails
	Form    model.FormModel
}

// Form fetches the tool details and builds the decorated form model. A PARAM
// payload that does not parse yields the empty form rather than an error.
func (o *Orchestrator) Form(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := o.initialiseErr; err != nil {
		return Result{}, err
	}

	details, err := o.resolveDetails(ctx, req)
	if err != nil {
		return Result{}, err
	}

	root, err := details.Schema()
	if err != nil {
		o.logger.Warn().Err(err).Str("tool", details.ID).Msg("unparseable PARAM, rendering empty form")
		root = schema.Node{}
	}

	form := o.builder.Build(details.ID, root)
	form.Title = details.Name
	if form.Title == "" {
		form.Title = details.ID
	}
	form.Description = details.Description
	if details.Version != "" {
		if form.Metadata == nil {
			form.Metadata = make(map[string]string)
		}
		form.Metadata["tool.version"] = details.Version
	}

	if err := o.applyTransformer(ctx, &form); err != nil {
		return Result{}, err
	}
	if err := model.Apply(&form, o.decorators...); err != nil {
		return Result{}, fmt.Errorf("orchestrator: decorate form: %w", err)
	}
	return Result{Details: details, Form: form}, nil
}

// Generate builds the form and renders it.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	built, err := o.Form(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.Renderer(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, built.Form, req.RenderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Renderer resolves a renderer by name, falling back to the default and
// then to any registered renderer.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := strings.TrimSpace(name)
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) resolveDetails(ctx context.Context, req Request) (client.ToolDetails, error) {
	if req.Details != nil {
		details := *req.Details
		if details.ID == "" {
			details.ID = req.ToolID
		}
		return details, nil
	}
	if strings.TrimSpace(req.ToolID) == "" {
		return client.ToolDetails{}, errors.New("orchestrator: tool id is required")
	}
	if o.source == nil {
		return client.ToolDetails{}, errors.New("orchestrator: source or details is required")
	}
	details, err := o.source.ToolDetails(ctx, req.ToolID)
	if err != nil {
		return client.ToolDetails{}, fmt.Errorf("orchestrator: load tool %q: %w", req.ToolID, err)
	}
	return details, nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.FormModel) error {
	if o.transformer == nil || form == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform form: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	registry := widgets.NewRegistry()
	if o.builder == nil {
		options := append([]model.BuilderOption{model.WithWidgetResolver(registry.ResolveName)}, o.builderOptions...)
		o.builder = model.NewBuilder(options...)
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	// Re-resolve widgets last so transformer hints take effect.
	o.decorators = append(o.decorators, registry)
}
