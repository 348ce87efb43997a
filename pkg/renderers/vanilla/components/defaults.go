package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-toolform/pkg/model"
)

const (
	templatePrefix = "templates/components/"
)

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// components used by the vanilla renderer.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameGroup, Descriptor{
		Renderer: templateComponentRenderer("forms.group", templatePrefix+"group.tmpl"),
	})
	registry.MustRegister(NameToggle, Descriptor{
		Renderer: templateComponentRenderer("forms.toggle", templatePrefix+"toggle.tmpl"),
	})
	registry.MustRegister(NameNumber, Descriptor{
		Renderer: templateComponentRenderer("forms.input", templatePrefix+"input.tmpl"),
	})
	registry.MustRegister(NameText, Descriptor{
		Renderer: templateComponentRenderer("forms.input", templatePrefix+"input.tmpl"),
	})
	registry.MustRegister(NameJSONTextarea, jsonTextareaDescriptor())

	return registry
}

func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolvedTemplate := templateName
		if data.ThemePartials != nil {
			if candidate := strings.TrimSpace(data.ThemePartials[partialKey]); candidate != "" {
				resolvedTemplate = candidate
			}
		}

		payload := map[string]any{
			"field":    data.View,
			"children": data.Children,
		}
		rendered, err := data.Template.RenderTemplate(resolvedTemplate, payload)
		if err != nil {
			return fmt.Errorf("components: render template %q for %s: %w", resolvedTemplate, field.Name, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}
