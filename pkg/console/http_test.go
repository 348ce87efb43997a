package console_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-toolform/pkg/console"
	"github.com/goliatone/go-toolform/pkg/render"
	"github.com/goliatone/go-toolform/pkg/testsupport"
)

type httpHarness struct {
	server  *httptest.Server
	backend *testsupport.Backend
	session *console.Session
}

func newHarness(t *testing.T, options ...console.SessionOption) *httpHarness {
	t.Helper()
	con, backend := newConsole(t)
	session, err := console.NewSession(con, options...)
	require.NoError(t, err)
	server := httptest.NewServer(session)
	t.Cleanup(server.Close)
	return &httpHarness{server: server, backend: backend, session: session}
}

func (h *httpHarness) client() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func (h *httpHarness) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := h.client().Get(h.server.URL + path)
	require.NoError(t, err)
	return readBody(t, resp)
}

func (h *httpHarness) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := h.client().PostForm(h.server.URL+path, form)
	require.NoError(t, err)
	return readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestSession_IndexRedirects(t *testing.T) {
	h := newHarness(t)
	resp, err := h.client().Get(h.server.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/tools", resp.Header.Get("Location"))
}

func TestSession_ToolList(t *testing.T) {
	h := newHarness(t)

	status, body := h.get(t, "/tools")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<title>Tools</title>")
	assert.Contains(t, body, `href="/tools/ZMM_STOCK"`)
	assert.Contains(t, body, "Plant stock")
	assert.Contains(t, body, `<li class="tf-nav-active"><a href="/tools">`)

	status, body = h.get(t, "/tools?q=sales")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `href="/tools/ZSD_ORDER"`)
	assert.NotContains(t, body, `href="/tools/ZMM_STOCK"`)
	assert.Contains(t, body, `value="sales"`)
}

func TestSession_ToolListBackendDown(t *testing.T) {
	h := newHarness(t)
	h.backend.FailWith("/api/tools", http.StatusBadGateway)

	status, body := h.get(t, "/tools")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "forced failure")
	assert.Contains(t, body, `class="tf-retry"`)
}

func TestSession_ToolDetailAndExecute(t *testing.T) {
	h := newHarness(t)

	status, body := h.get(t, "/tools/ZMM_STOCK")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<title>Stock</title>")
	assert.Contains(t, body, `action="/tools/ZMM_STOCK"`)
	assert.Contains(t, body, `name="WERKS[value]" value="1000"`)
	assert.NotContains(t, body, `class="tf-result"`)

	status, body = h.post(t, "/tools/ZMM_STOCK", url.Values{
		"WERKS[value]": {"2000"},
		"OPTIONS[QTY]": {"7"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `class="tf-result"`)
	assert.Contains(t, body, `name="WERKS[value]" value="2000"`)

	call, ok := h.backend.LastCall("/api/tools/ZMM_STOCK/use")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"value": "2000"}, call.Body["WERKS"])
	assert.Equal(t, map[string]any{"QTY": float64(7), "FLAG": false}, call.Body["OPTIONS"])

	state := h.session.State()
	require.NotNil(t, state.LastExecution)
	assert.Equal(t, "ZMM_STOCK", state.LastExecution.ToolID)
}

func TestSession_ResetForm(t *testing.T) {
	h := newHarness(t)

	_, _ = h.post(t, "/tools/ZMM_STOCK", url.Values{"WERKS[value]": {"2000"}})
	status, body := h.post(t, "/tools/ZMM_STOCK", url.Values{"_action": {"reset"}, "WERKS[value]": {"2000"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `name="WERKS[value]" value="1000"`)
	assert.NotContains(t, body, `class="tf-result"`)

	uses := 0
	for _, call := range h.backend.Calls() {
		if call.Path == "/api/tools/ZMM_STOCK/use" {
			uses++
		}
	}
	assert.Equal(t, 1, uses)
}

func TestSession_UnknownTool(t *testing.T) {
	h := newHarness(t)
	status, body := h.get(t, "/tools/MISSING")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "tool MISSING not found")
}

func TestSession_Service(t *testing.T) {
	h := newHarness(t)

	status, body := h.get(t, "/service")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "tf-service--stopped")

	status, body = h.post(t, "/service/start", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "tf-service--running")
	assert.Contains(t, body, "PID: 4242")
	assert.Contains(t, body, `tf-notice--success" role="status">started`)

	status, _ = h.post(t, "/service/restart", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSession_Logs(t *testing.T) {
	h := newHarness(t)

	status, body := h.get(t, "/logs?level=ERROR&limit=5")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<option value="ERROR" selected>`)
	assert.Contains(t, body, `value="5"`)
	assert.Contains(t, body, "ERROR boom")

	status, body = h.post(t, "/logs/clear", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `class="tf-empty"`)
	assert.Equal(t, "ERROR", h.session.State().LogQuery.Level)
}

func TestSession_Config(t *testing.T) {
	h := newHarness(t)

	status, body := h.get(t, "/config")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `name="base_url" value="http://upstream"`)

	status, body = h.post(t, "/config", url.Values{
		"base_url": {"http://new"},
		"port":     {"9090"},
		"timeout":  {"not a number"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `name="base_url" value="http://new"`)

	call, ok := h.backend.LastCall("/api/config")
	require.True(t, ok)
	require.Equal(t, http.MethodPost, call.Method)
	upstream := call.Body["sap"].(map[string]any)
	assert.Equal(t, "http://new", upstream["base_url"])
	assert.Equal(t, float64(30), upstream["timeout"])
	assert.Equal(t, "user", upstream["sap-user"])
	assert.Equal(t, float64(9090), call.Body["mcp"].(map[string]any)["port"])

	status, body = h.post(t, "/config/test", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "upstream reachable")
}

func TestSession_OpenAPI(t *testing.T) {
	h := newHarness(t)

	resp, err := h.client().Get(h.server.URL + "/openapi.json")
	require.NoError(t, err)
	status, body := readBody(t, resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var doc struct {
		Components struct {
			Schemas map[string]any `json:"schemas"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	assert.Contains(t, doc.Components.Schemas, "ZMM_STOCK_params")
}

func TestSession_AssetsAndTheme(t *testing.T) {
	h := newHarness(t, console.WithTheme(render.ThemeConfig("ocean", "dark", map[string]string{"accent": "#0af"})))

	status, body := h.get(t, "/assets/toolform.css")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(body, ".tf-form"))

	_, body = h.get(t, "/service")
	assert.Contains(t, body, "--toolform-accent: #0af;")
	assert.Contains(t, body, `data-theme="ocean"`)
}

func TestHTTP_ExecuteShowsFieldErrors(t *testing.T) {
	h := newHarness(t)
	h.backend.FailWithBody("/api/tools/ZMM_STOCK/use", http.StatusUnprocessableEntity, map[string]any{
		"detail": []any{
			map[string]any{"loc": []any{"body", "WERKS", "value"}, "msg": "plant must have 4 characters"},
		},
	})

	status, body := h.post(t, "/tools/ZMM_STOCK", url.Values{"WERKS[value]": {"1"}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `aria-invalid="true"`)
	assert.Contains(t, body, `<p class="tf-error" role="alert">plant must have 4 characters</p>`)
	assert.Contains(t, body, `value="1"`)
}
