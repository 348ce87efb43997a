package result

import (
	"bytes"
	"encoding/json"
	"html"
	"regexp"
	"strings"
)

const (
	// HighlightClass marks type tags in HTML output.
	HighlightClass = "json-type-highlight"

	indent = "  "
)

var typeTagPattern = regexp.MustCompile(`"TYPE"\s*:\s*"([^"]+)"`)

// Display is a formatted execution result ready for presentation.
type Display struct {
	// Text is the pretty-printed (or raw) body.
	Text string
	// HTML is Text escaped for markup with type tags highlighted.
	HTML string
	// JSON reports whether the body parsed as JSON.
	JSON bool
}

// Format decodes raw, prunes empty values and pretty-prints the remainder
// with a two-space indent. Bodies that are not valid JSON are returned
// verbatim with ok=false.
func Format(raw []byte) (string, bool) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return string(raw), false
	}
	if decoder.More() {
		return string(raw), false
	}
	text, err := Pretty(Prune(value))
	if err != nil {
		return string(raw), false
	}
	return text, true
}

// Pretty encodes value with a two-space indent without escaping HTML
// characters.
func Pretty(value any) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", indent)
	if err := encoder.Encode(value); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// HighlightTypeTags wraps every `"TYPE": "<tag>"` occurrence of unescaped
// JSON text in a highlight span. Use HighlightHTML when the result is
// embedded in markup.
func HighlightTypeTags(text string) string {
	return typeTagPattern.ReplaceAllString(text, `<span class="`+HighlightClass+`">"TYPE": "$1"</span>`)
}

// HighlightHTML escapes text for markup and highlights type tags. The
// pattern runs against unescaped quotes, so escaping happens per segment.
func HighlightHTML(text string) string {
	matches := typeTagPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return html.EscapeString(text)
	}
	var b strings.Builder
	last := 0
	for _, match := range matches {
		b.WriteString(html.EscapeString(text[last:match[0]]))
		b.WriteString(`<span class="` + HighlightClass + `">&#34;TYPE&#34;: &#34;`)
		b.WriteString(html.EscapeString(text[match[2]:match[3]]))
		b.WriteString(`&#34;</span>`)
		last = match[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}

// Present formats raw for display in both text and markup form.
func Present(raw []byte) Display {
	text, ok := Format(raw)
	return Display{
		Text: text,
		HTML: HighlightHTML(text),
		JSON: ok,
	}
}
