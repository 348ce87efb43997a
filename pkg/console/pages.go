package console

import (
	"net/url"
	"strconv"

	"github.com/goliatone/go-toolform/pkg/client"
	"github.com/goliatone/go-toolform/pkg/renderers/vanilla"
)

// Page data builders. Keys match the templates under
// renderers/vanilla/templates/pages.

func toolsPage(s State, loadErr string) vanilla.Page {
	selected := s.SelectedID()
	visible := s.VisibleTools()
	tools := make([]any, 0, len(visible))
	for _, tool := range visible {
		tools = append(tools, map[string]any{
			"id":               tool.ID,
			"name":             tool.DisplayName(),
			"href":             toolHref(tool.ID),
			"description_html": vanilla.SanitizeDescription(tool.Description),
			"selected":         tool.ID == selected,
		})
	}
	return vanilla.Page{
		Name:   vanilla.PageTools,
		Notice: pageNotice(s.Notice),
		Data: map[string]any{
			"filter": s.Filter,
			"tools":  tools,
			"error":  loadErr,
		},
	}
}

func toolPage(s State, formHTML string) vanilla.Page {
	data := map[string]any{"form_html": formHTML}
	if s.Selection != nil {
		details := s.Selection.Details
		name := details.Name
		if name == "" {
			name = details.ID
		}
		data["tool"] = map[string]any{
			"id":               details.ID,
			"name":             name,
			"version":          details.Version,
			"description_html": vanilla.SanitizeDescription(details.Description),
		}
	}
	return vanilla.Page{
		Name:   vanilla.PageTool,
		Notice: pageNotice(s.Notice),
		Data:   data,
	}
}

func servicePage(s State) vanilla.Page {
	status := map[string]any{"running": false}
	if s.Service != nil {
		status = map[string]any{
			"running": s.Service.Running(),
			"address": s.Service.Address(),
			"pid":     int(s.Service.PID),
			"error":   s.Service.Error,
		}
	}
	return vanilla.Page{
		Name:   vanilla.PageService,
		Notice: pageNotice(s.Notice),
		Data:   map[string]any{"status": status},
	}
}

func logsPage(s State) vanilla.Page {
	query := normalizeQuery(s.LogQuery)
	levels := make([]any, 0, len(client.LogLevels))
	for _, level := range client.LogLevels {
		levels = append(levels, map[string]any{"value": level, "selected": level == query.Level})
	}
	data := map[string]any{
		"levels": levels,
		"limit":  query.Limit,
	}
	if s.Logs != nil {
		data["data"] = s.Logs.Data
		data["total_lines"] = s.Logs.TotalLines
	}
	return vanilla.Page{
		Name:   vanilla.PageLogs,
		Notice: pageNotice(s.Notice),
		Data:   data,
	}
}

func configPage(s State) vanilla.Page {
	cfg := client.Config{}
	if s.Config != nil {
		cfg = *s.Config
	}
	data := map[string]any{
		"upstream": map[string]any{
			"base_url":  cfg.Upstream.BaseURL,
			"client_id": int(cfg.Upstream.ClientID),
			"user":      cfg.Upstream.User,
			"password":  cfg.Upstream.Password,
			"timeout":   int(cfg.Upstream.Timeout),
		},
		"server": map[string]any{
			"host": cfg.Server.Host,
			"port": int(cfg.Server.Port),
			"path": cfg.Server.Path,
		},
	}
	if s.LastTest != nil {
		data["test"] = map[string]any{"success": s.LastTest.Success, "message": s.LastTest.Message}
	}
	return vanilla.Page{
		Name:   vanilla.PageConfig,
		Notice: pageNotice(s.Notice),
		Data:   data,
	}
}

func pageNotice(notice *Notice) *vanilla.Notice {
	if notice == nil {
		return nil
	}
	return &vanilla.Notice{Level: string(notice.Level), Text: notice.Text}
}

func toolHref(id string) string {
	return "/tools/" + url.PathEscape(id)
}

// ConfigKeys lists the fields ConfigFromValues understands.
var ConfigKeys = []string{"base_url", "client_id", "user", "password", "timeout", "host", "port", "path"}

// ConfigFromValues overlays form or flag values on base. Numeric fields
// that do not parse keep their previous value.
func ConfigFromValues(base client.Config, form url.Values) client.Config {
	cfg := base
	setString := func(key string, target *string) {
		if _, ok := form[key]; ok {
			*target = form.Get(key)
		}
	}
	setInt := func(key string, target *client.Int) {
		if _, ok := form[key]; !ok {
			return
		}
		if n, err := strconv.Atoi(form.Get(key)); err == nil {
			*target = client.Int(n)
		}
	}
	setString("base_url", &cfg.Upstream.BaseURL)
	setInt("client_id", &cfg.Upstream.ClientID)
	setString("user", &cfg.Upstream.User)
	setString("password", &cfg.Upstream.Password)
	setInt("timeout", &cfg.Upstream.Timeout)
	setString("host", &cfg.Server.Host)
	setInt("port", &cfg.Server.Port)
	setString("path", &cfg.Server.Path)
	return cfg
}
