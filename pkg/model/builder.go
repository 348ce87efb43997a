package model

import (
	"github.com/goliatone/go-toolform/internal/model"
	"github.com/goliatone/go-toolform/pkg/schema"
)

// Builder converts tool parameter schemas into form models.
type Builder interface {
	Build(toolID string, root schema.Node) FormModel
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler        func(string) string
	widgetResolver func(Field) string
	endpointFormat string
}

// WithLabeler overrides the default label generation function. The default
// labels every field with its schema key.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// WithHumanLabels splits keys on underscores and camelCase boundaries.
func WithHumanLabels() BuilderOption {
	return WithLabeler(model.HumanLabeler)
}

// WithWidgetResolver swaps the widget selection, typically for a
// widgets.Registry Resolve method.
func WithWidgetResolver(resolve func(Field) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.widgetResolver = resolve
	}
}

// WithEndpointFormat sets the fmt pattern used to derive a form's submit
// endpoint from the tool id.
func WithEndpointFormat(format string) BuilderOption {
	return func(opts *builderOptions) {
		opts.endpointFormat = format
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	return model.New(model.Options{
		Labeler:        cfg.labeler,
		WidgetResolver: cfg.widgetResolver,
		EndpointFormat: cfg.endpointFormat,
	})
}
