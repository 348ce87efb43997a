// Package orchestrator wires the tool details → schema → form model →
// renderer pipeline behind a single entry point, with dependency injection
// for every stage.
package orchestrator
