package vanilla

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-toolform/pkg/render"
)

// Console page names. Each maps to templates/pages/<name>.tmpl.
const (
	PageTools   = "tools"
	PageTool    = "tool"
	PageService = "service"
	PageLogs    = "logs"
	PageConfig  = "config"
)

const layoutTemplate = "templates/layout.tmpl"

// ActionField names the submit button value that distinguishes a form reset
// from an execution. It never reaches the tool params.
const (
	ActionField = "_action"
	ActionReset = "reset"
)

var navSections = []string{PageTools, PageService, PageLogs, PageConfig}

// Notice is a transient message shown above the page content.
type Notice struct {
	// Level is "info", "success" or "error".
	Level string
	Text  string
}

// Page describes one console screen. Data is handed to the page template
// as-is; keys use snake_case.
type Page struct {
	Name   string
	Title  string
	Notice *Notice
	Data   map[string]any
}

// RenderPage renders a console page inside the shared layout.
func (r *Renderer) RenderPage(ctx context.Context, page Page, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	name := strings.TrimSpace(page.Name)
	if !knownPage(name) {
		return nil, fmt.Errorf("vanilla renderer: unknown page %q", page.Name)
	}

	funcs := render.TemplateFuncs(options.Translator, options.Locale)

	data := make(map[string]any, len(page.Data)+len(funcs))
	for key, value := range page.Data {
		data[key] = value
	}
	for key, fn := range funcs {
		data[key] = fn
	}
	body, err := r.templates.RenderTemplate("templates/pages/"+name+".tmpl", data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render page %q: %w", name, err)
	}

	active := name
	if active == PageTool {
		active = PageTools
	}
	nav := make([]any, 0, len(navSections))
	for _, section := range navSections {
		nav = append(nav, map[string]any{
			"href":   "/" + section,
			"key":    section + ".title",
			"active": section == active,
		})
	}

	locale := strings.TrimSpace(options.Locale)
	if locale == "" {
		locale = render.DefaultLocale
	}

	layout := map[string]any{
		"title":      page.Title,
		"lang":       locale,
		"nav":        nav,
		"content":    body,
		"notice":     noticeView(page.Notice),
		"theme":      themeView(options.Theme),
		"stylesheet": defaultStylesheet(),
	}
	for key, fn := range funcs {
		layout[key] = fn
	}
	out, err := r.templates.RenderTemplate(layoutTemplate, layout)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render layout: %w", err)
	}
	return []byte(out), nil
}

func knownPage(name string) bool {
	switch name {
	case PageTools, PageTool, PageService, PageLogs, PageConfig:
		return true
	}
	return false
}

func noticeView(notice *Notice) map[string]any {
	if notice == nil || strings.TrimSpace(notice.Text) == "" {
		return nil
	}
	level := strings.TrimSpace(notice.Level)
	if level == "" {
		level = "info"
	}
	return map[string]any{"level": level, "text": notice.Text}
}
