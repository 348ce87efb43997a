package vanilla_test

import (
	"testing"

	"github.com/goliatone/go-toolform/pkg/render"
	"github.com/goliatone/go-toolform/pkg/renderers/vanilla"
	"github.com/goliatone/go-toolform/pkg/testsupport"
)

func renderPage(t *testing.T, page vanilla.Page, options render.RenderOptions) string {
	t.Helper()
	out, err := newRenderer(t).RenderPage(testsupport.Context(), page, options)
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	return string(out)
}

func TestRenderPage_ToolsList(t *testing.T) {
	html := renderPage(t, vanilla.Page{
		Name:  vanilla.PageTools,
		Title: "Tools",
		Data: map[string]any{
			"filter": "stock",
			"tools": []any{
				map[string]any{"id": "ZMM_STOCK", "name": "Stock", "href": "/tools/ZMM_STOCK", "description_html": "<b>Plant</b> stock", "selected": true},
				map[string]any{"id": "ZSD", "name": "ZSD", "href": "/tools/ZSD"},
			},
		},
	}, render.RenderOptions{})

	assertContains(t, html,
		`<!DOCTYPE html>`,
		`<title>Tools</title>`,
		`<li class="tf-nav-active"><a href="/tools">Tools</a></li>`,
		`value="stock"`,
		`tf-tool--selected`,
		`<a class="tf-tool-name" href="/tools/ZMM_STOCK">Stock</a>`,
		`<b>Plant</b> stock`,
		`No description`,
	)
}

func TestRenderPage_EmptyToolsOffersRetry(t *testing.T) {
	html := renderPage(t, vanilla.Page{Name: vanilla.PageTools, Data: map[string]any{}}, render.RenderOptions{})
	assertContains(t, html, `No tools found`, `class="tf-retry"`)

	html = renderPage(t, vanilla.Page{Name: vanilla.PageTools, Data: map[string]any{"error": "backend unreachable: refused"}}, render.RenderOptions{})
	assertContains(t, html, `tf-notice--error`, `backend unreachable: refused`, `>Retry</a>`)
}

func TestRenderPage_ToolDetailEmbedsForm(t *testing.T) {
	html := renderPage(t, vanilla.Page{
		Name: vanilla.PageTool,
		Data: map[string]any{
			"tool":      map[string]any{"id": "ZMM_STOCK", "name": "Stock", "version": "2"},
			"form_html": `<form class="tf-form"></form>`,
		},
	}, render.RenderOptions{})

	assertContains(t, html,
		`<li class="tf-nav-active"><a href="/tools">Tools</a></li>`,
		`Tool ID: ZMM_STOCK`,
		`Version: 2`,
		`<form class="tf-form"></form>`,
	)
}

func TestRenderPage_ServiceStates(t *testing.T) {
	html := renderPage(t, vanilla.Page{
		Name: vanilla.PageService,
		Data: map[string]any{"status": map[string]any{"running": true, "address": "127.0.0.1:8080", "pid": 4242}},
	}, render.RenderOptions{})
	assertContains(t, html, `tf-service--running`, `PID: 4242`, `127.0.0.1:8080`, `type="submit" disabled>Start</button>`)

	html = renderPage(t, vanilla.Page{
		Name: vanilla.PageService,
		Data: map[string]any{"status": map[string]any{"running": false}},
	}, render.RenderOptions{Locale: "zh"})
	assertContains(t, html, `tf-service--stopped`, `已停止`, `type="submit" disabled>停止服务</button>`)
	assertNotContains(t, html, `tf-service-pid`)
}

func TestRenderPage_LogsAndConfig(t *testing.T) {
	html := renderPage(t, vanilla.Page{
		Name: vanilla.PageLogs,
		Data: map[string]any{
			"levels":      []any{map[string]any{"value": "all"}, map[string]any{"value": "ERROR", "selected": true}},
			"limit":       100,
			"data":        "2024-01-01 ERROR <boom>",
			"total_lines": 1,
		},
	}, render.RenderOptions{})
	assertContains(t, html, `<option value="ERROR" selected>`, `value="100"`, `ERROR &lt;boom&gt;`)

	html = renderPage(t, vanilla.Page{
		Name:   vanilla.PageConfig,
		Notice: &vanilla.Notice{Level: "success", Text: "saved"},
		Data: map[string]any{
			"server":   map[string]any{"host": "0.0.0.0", "port": 8080, "path": "/mcp"},
			"upstream": map[string]any{"base_url": "http://sap", "client_id": 100, "user": "u", "password": "p", "timeout": 30},
			"test":     map[string]any{"success": false, "message": "401"},
		},
	}, render.RenderOptions{})
	assertContains(t, html,
		`<div class="tf-notice tf-notice--success" role="status">saved</div>`,
		`name="base_url" value="http://sap"`,
		`name="port" min="1" max="65535" value="8080"`,
		`tf-notice--error" role="status">401</div>`,
	)
}

func TestRenderPage_UnknownPage(t *testing.T) {
	if _, err := newRenderer(t).RenderPage(testsupport.Context(), vanilla.Page{Name: "admin"}, render.RenderOptions{}); err == nil {
		t.Fatalf("expected error for unknown page")
	}
}
