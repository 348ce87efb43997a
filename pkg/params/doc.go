// Package params rebuilds the nested tool-call parameter object from flat
// form submissions. Each entry carries the explicit path of the widget it
// came from and a declared value kind, so decoding never guesses from the
// input name alone.
package params
