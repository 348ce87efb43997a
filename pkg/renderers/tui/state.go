package tui

import (
	"net/url"

	"github.com/goliatone/go-toolform/pkg/model"
	"github.com/goliatone/go-toolform/pkg/params"
)

// State tracks the raw answers collected during a session, keyed by input
// name and kept in prompt order, plus any prefilled values and errors.
type State struct {
	order   []string
	answers map[string]answer
	prefill map[string]string
	errors  map[string][]string
}

type answer struct {
	field model.Field
	raw   string
}

// NewState seeds the state with prefilled raw values and errors, both keyed
// by input name.
func NewState(prefill map[string]string, errs map[string][]string) *State {
	state := &State{
		answers: make(map[string]answer),
		prefill: make(map[string]string, len(prefill)),
		errors:  make(map[string][]string, len(errs)),
	}
	for name, value := range prefill {
		state.prefill[name] = value
	}
	for name, messages := range errs {
		state.errors[name] = append([]string(nil), messages...)
	}
	return state
}

// Prefill returns the value supplied for name before prompting.
func (s *State) Prefill(name string) (string, bool) {
	value, ok := s.prefill[name]
	return value, ok
}

// ErrorsFor returns the errors attached to an input name.
func (s *State) ErrorsFor(name string) []string {
	return s.errors[name]
}

// Set records the answer for a leaf field. Re-answering keeps the original
// position.
func (s *State) Set(field model.Field, raw string) {
	if _, exists := s.answers[field.Name]; !exists {
		s.order = append(s.order, field.Name)
	}
	s.answers[field.Name] = answer{field: field, raw: raw}
}

// Raw returns the collected answer for name.
func (s *State) Raw(name string) (string, bool) {
	a, ok := s.answers[name]
	return a.raw, ok
}

// Entries converts the answers into encoder input, in prompt order.
func (s *State) Entries() []params.Entry {
	entries := make([]params.Entry, 0, len(s.order))
	for _, name := range s.order {
		a := s.answers[name]
		kind := a.field.ValueKind
		if kind == "" {
			kind = model.ValueKindAuto
		}
		entries = append(entries, params.Entry{
			Name: a.field.Name,
			Path: append([]string(nil), a.field.Path...),
			Raw:  a.raw,
			Kind: kind,
		})
	}
	return entries
}

// Values returns the raw answers as form values.
func (s *State) Values() url.Values {
	values := make(url.Values, len(s.order))
	for _, name := range s.order {
		values.Set(name, s.answers[name].raw)
	}
	return values
}
