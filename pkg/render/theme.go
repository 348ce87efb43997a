package render

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// CSSVarPrefix namespaces the custom properties derived from theme tokens.
const CSSVarPrefix = "--toolform-"

// ThemeConfig builds a renderer theme from a name, variant and raw tokens.
// Each token is also exposed as a CSS variable, e.g. accent becomes
// --toolform-accent.
func ThemeConfig(name, variant string, tokens map[string]string) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Theme:   strings.TrimSpace(name),
		Variant: strings.TrimSpace(variant),
	}
	if len(tokens) == 0 {
		return cfg
	}
	cfg.Tokens = make(map[string]string, len(tokens))
	cfg.CSSVars = make(map[string]string, len(tokens))
	for key, value := range tokens {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		cfg.Tokens[key] = value
		cfg.CSSVars[CSSVarPrefix+key] = value
	}
	return cfg
}

// CSSVarsStyle renders the theme variables as a :root rule sorted by name.
func CSSVarsStyle(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		if strings.ContainsAny(key, "{};<>") || strings.ContainsAny(cfg.CSSVars[key], "{};<>") {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString("  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(cfg.CSSVars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
