package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-toolform/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetGroup        = model.WidgetGroup
	WidgetToggle       = model.WidgetToggle
	WidgetNumber       = model.WidgetNumber
	WidgetJSONTextarea = model.WidgetJSONTextarea
	WidgetText         = model.WidgetText
)

// Matcher decides whether a widget renderer should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit hints or registered
// matchers. Higher priority wins; ties fall back to registration order.
// Fields no matcher claims resolve to the fallback widget.
type Registry struct {
	mu       sync.RWMutex
	rules    []rule
	fallback string
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered and "text" as the fallback.
func NewRegistry() *Registry {
	reg := &Registry{fallback: WidgetText}
	reg.registerBuiltins()
	return reg
}

// NewEmptyRegistry returns a registry without built-ins or fallback.
func NewEmptyRegistry() *Registry {
	return &Registry{}
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// SetFallback changes the widget used when nothing matches.
func (r *Registry) SetFallback(name string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.fallback = strings.TrimSpace(name)
	r.mu.Unlock()
}

// Resolve returns the widget name for a field. An explicit
// Metadata["widget"] hint is honoured before matcher evaluation.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if explicit := explicitWidget(field); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	fallback := r.fallback
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	if fallback != "" {
		return fallback, true
	}
	return "", false
}

// ResolveName is Resolve without the ok flag, shaped for
// model.WithWidgetResolver.
func (r *Registry) ResolveName(field model.Field) string {
	name, _ := r.Resolve(field)
	return name
}

// Decorate implements model.Decorator, re-resolving the widget of every field
// in the form.
func (r *Registry) Decorate(form *model.FormModel) error {
	if r == nil || form == nil {
		return nil
	}
	form.Fields = r.decorateFields(form.Fields)
	return nil
}

func (r *Registry) decorateFields(fields []model.Field) []model.Field {
	if len(fields) == 0 {
		return fields
	}
	decorated := make([]model.Field, len(fields))
	for idx, field := range fields {
		if widget, ok := r.Resolve(field); ok && widget != "" {
			field.Widget = widget
		}
		if len(field.Nested) > 0 {
			field.Nested = r.decorateFields(field.Nested)
		}
		decorated[idx] = field
	}
	return decorated
}

func explicitWidget(field model.Field) string {
	if field.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(field.Metadata["widget"])
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetGroup, 100, func(field model.Field) bool {
		return field.Type == model.FieldTypeObject
	})

	r.Register(WidgetToggle, 90, func(field model.Field) bool {
		return field.Type == model.FieldTypeBoolean
	})

	r.Register(WidgetNumber, 80, func(field model.Field) bool {
		return field.Type == model.FieldTypeNumber
	})

	// Arrays are always edited as free-text JSON; elements are not
	// introspected.
	r.Register(WidgetJSONTextarea, 70, func(field model.Field) bool {
		return field.Type == model.FieldTypeArray
	})
}
