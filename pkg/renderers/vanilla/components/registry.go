package components

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-toolform/pkg/model"
	rendertemplate "github.com/goliatone/go-toolform/pkg/render/template"
)

// Renderer writes the markup for one field into buf.
type Renderer func(buf *bytes.Buffer, field model.Field, data ComponentData) error

// ComponentData carries the template engine and the prepared view of the
// field being rendered.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	// View is the template-ready projection of the field: resolved value,
	// control id, errors and so on.
	View map[string]any
	// Children holds the rendered markup of a group's nested fields.
	Children string
	// ThemePartials maps partial keys (e.g. "forms.toggle") to replacement
	// template paths.
	ThemePartials map[string]string
}

// Script is a script tag a component needs once per form. Either Src or
// Inline is set.
type Script struct {
	Src    string
	Inline string
	Defer  bool
	Module bool
}

func (s Script) key() string {
	if s.Src != "" {
		return "src:" + s.Src
	}
	return "inline:" + s.Inline
}

// Descriptor is a registered widget renderer plus the assets it pulls in.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
	Scripts     []Script
}

func (d Descriptor) clone() Descriptor {
	d.Stylesheets = slices.Clone(d.Stylesheets)
	d.Scripts = slices.Clone(d.Scripts)
	return d
}

// Registry maps widget names to descriptors. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Descriptor
}

func New() *Registry {
	return &Registry{entries: map[string]Descriptor{}}
}

// Clone copies the registry so overrides do not leak into the source.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Registry{entries: maps.Clone(r.entries)}
}

// Register stores descriptor under name, replacing any previous entry.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	key := normalize(name)
	switch {
	case key == "":
		return errors.New("components: component name is required")
	case descriptor.Renderer == nil:
		return fmt.Errorf("components: renderer for %q is nil", key)
	}
	descriptor.Name = key

	r.mu.Lock()
	r.entries[key] = descriptor.clone()
	r.mu.Unlock()
	return nil
}

func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor returns a copy of the descriptor registered under name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	descriptor, ok := r.entries[normalize(name)]
	r.mu.RUnlock()
	return descriptor.clone(), ok
}

// Names lists the registered widgets in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}

// Assets collects the stylesheets and scripts of the named widgets, each
// asset once, in first-use order.
func (r *Registry) Assets(names []string) ([]string, []Script) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		stylesheets []string
		scripts     []Script
		seen        = map[string]bool{}
	)
	for _, name := range names {
		descriptor, ok := r.entries[normalize(name)]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if href != "" && !seen["css:"+href] {
				seen["css:"+href] = true
				stylesheets = append(stylesheets, href)
			}
		}
		for _, script := range descriptor.Scripts {
			if !seen[script.key()] {
				seen[script.key()] = true
				scripts = append(scripts, script)
			}
		}
	}
	return stylesheets, scripts
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
