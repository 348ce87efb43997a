package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// ToolFixture describes one tool served by Backend.
type ToolFixture struct {
	ID          string
	Name        string
	Description string
	Version     string
	// DetailsDescription is the DESCRIPTION of the details call. It is
	// omitted when empty.
	DetailsDescription string
	// Param is the raw PARAM payload returned by the details call.
	Param string
	// Result is returned by the use call. Empty echoes the received params.
	Result string
}

// Backend is an in-memory implementation of the tool backend REST API.
type Backend struct {
	Server *httptest.Server

	mu      sync.Mutex
	tools   []ToolFixture
	calls   []Call
	config  map[string]any
	running bool
	logs    string
	failing map[string]failure
}

type failure struct {
	status int
	body   any
}

// Call records a request received by Backend.
type Call struct {
	Method string
	Path   string
	Body   map[string]any
}

// NewBackend starts a Backend serving tools. The server is closed when the
// test finishes.
func NewBackend(t *testing.T, tools ...ToolFixture) *Backend {
	t.Helper()

	b := &Backend{
		tools: tools,
		config: map[string]any{
			"config": map[string]any{"host": "127.0.0.1", "port": 8080, "path": "/mcp"},
			"sap_config": map[string]any{
				"base_url": "http://upstream", "client_id": 100,
				"sap-user": "user", "sap-password": "secret", "timeout": 30,
			},
		},
		logs:    "2024-01-01 INFO started\n2024-01-01 ERROR boom\n",
		failing: make(map[string]failure),
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the backend base URL.
func (b *Backend) URL() string {
	return b.Server.URL
}

// FailWith makes requests to path answer status with a detail message.
func (b *Backend) FailWith(path string, status int) {
	b.FailWithBody(path, status, map[string]any{"detail": "forced failure"})
}

// FailWithBody makes requests to path answer status with body encoded as
// JSON.
func (b *Backend) FailWithBody(path string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing[path] = failure{status: status, body: body}
}

// Calls returns the recorded requests.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// LastCall returns the most recent request to path.
func (b *Backend) LastCall(path string) (Call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.calls) - 1; i >= 0; i-- {
		if b.calls[i].Path == path {
			return b.calls[i], true
		}
	}
	return Call{}, false
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	call := Call{Method: r.Method, Path: r.URL.Path}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &call.Body)
	}
	b.calls = append(b.calls, call)

	if fail, ok := b.failing[r.URL.Path]; ok {
		writeJSON(w, fail.status, fail.body)
		return
	}

	switch {
	case r.URL.Path == "/api/tools" && r.Method == http.MethodGet:
		result := make([]map[string]any, 0, len(b.tools))
		for _, tool := range b.tools {
			entry := map[string]any{"TOOL_ID": tool.ID}
			if tool.Name != "" {
				entry["TOOL_NAME"] = tool.Name
			}
			if tool.Description != "" {
				entry["DESCRIPTION"] = tool.Description
			}
			result = append(result, entry)
		}
		writeJSON(w, http.StatusOK, map[string]any{"JSONRPC": "2.0", "RESULT": result, "ID": ""})
	case strings.HasPrefix(r.URL.Path, "/api/tools/"):
		b.serveTool(w, r, call)
	case r.URL.Path == "/api/config" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, b.config)
	case r.URL.Path == "/api/config" && r.Method == http.MethodPost:
		if section, ok := call.Body["sap"]; ok {
			b.config["sap_config"] = section
		}
		if section, ok := call.Body["mcp"]; ok {
			b.config["config"] = section
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "saved"})
	case r.URL.Path == "/api/service/status":
		writeJSON(w, http.StatusOK, b.status())
	case r.URL.Path == "/api/service/start":
		b.running = true
		writeJSON(w, http.StatusOK, map[string]any{"message": "started", "status": b.status()})
	case r.URL.Path == "/api/service/stop":
		b.running = false
		writeJSON(w, http.StatusOK, map[string]any{"message": "stopped", "status": b.status()})
	case r.URL.Path == "/api/logs" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": b.logs, "level": r.URL.Query().Get("level")})
	case r.URL.Path == "/api/logs" && r.Method == http.MethodDelete:
		b.logs = ""
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "cleared"})
	case r.URL.Path == "/api/test-api":
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "upstream reachable"})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "not found"})
	}
}

func (b *Backend) serveTool(w http.ResponseWriter, r *http.Request, call Call) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/tools/")
	id, action, _ := strings.Cut(rest, "/")
	var tool *ToolFixture
	for i := range b.tools {
		if b.tools[i].ID == id {
			tool = &b.tools[i]
		}
	}
	if tool == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "tool " + id + " not found"})
		return
	}

	switch action {
	case "details":
		param := tool.Param
		if param == "" {
			param = "{}"
		}
		description := ""
		if tool.DetailsDescription != "" {
			description = `,"DESCRIPTION":` + quote(tool.DetailsDescription)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"TOOL_ID":`+quote(tool.ID)+`,"TOOL_NAME":`+quote(tool.Name)+`,"VERSION":`+quote(tool.Version)+description+`,"PARAM":`+param+`}`)
	case "use":
		if tool.Result != "" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, tool.Result)
			return
		}
		body := make(map[string]any, len(call.Body)+1)
		for key, value := range call.Body {
			body[key] = value
		}
		body["TOOL_ID"] = id
		writeJSON(w, http.StatusOK, body)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "unknown action"})
	}
}

func (b *Backend) status() map[string]any {
	status := map[string]any{"status": "stopped", "host": "127.0.0.1", "port": 8080}
	if b.running {
		status["status"] = "running"
		status["pid"] = 4242
	}
	return status
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func quote(value string) string {
	data, _ := json.Marshal(value)
	return string(data)
}
