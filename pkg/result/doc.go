// Package result prepares raw tool execution bodies for display: default
// value pruning, pretty printing and type tag highlighting.
package result
