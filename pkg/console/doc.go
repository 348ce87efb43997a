// Package console holds the tool console application logic: a value-typed
// State and the operations that move it forward by calling the backend.
// Operations never mutate their input; each returns the next State.
//
// The HTTP handler in this package serves the same operations as HTML
// pages.
package console
