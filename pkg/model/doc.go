// Package model defines the typed form model consumed by renderers. A
// FormModel is built from a tool's parameter schema: nested objects become
// collapsible groups, arrays become free-text JSON areas, and primitives
// become toggles, numeric inputs, or text inputs depending on their runtime
// type. Every leaf carries both its bracketed input Name (outer[inner]) and
// the explicit Path segments, so submissions can be rebuilt into nested JSON
// without re-parsing names. ValueKind records how a submitted string decodes
// back into JSON.
package model
