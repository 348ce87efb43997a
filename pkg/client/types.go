package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-toolform/pkg/schema"
)

// Tool is one entry of the backend tool list.
type Tool struct {
	ID          string `json:"TOOL_ID"`
	Name        string `json:"TOOL_NAME,omitempty"`
	Description string `json:"DESCRIPTION,omitempty"`
}

// DisplayName prefers the tool name and falls back to the id.
func (t Tool) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// Matches reports whether term appears, case-insensitively, in the id,
// name or description. An empty term matches every tool.
func (t Tool) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, candidate := range []string{t.ID, t.Name, t.Description} {
		if strings.Contains(strings.ToLower(candidate), term) {
			return true
		}
	}
	return false
}

// ToolDetails is the detail payload of a single tool.
type ToolDetails struct {
	ID          string          `json:"TOOL_ID"`
	Name        string          `json:"TOOL_NAME,omitempty"`
	Version     string          `json:"VERSION,omitempty"`
	Description string          `json:"DESCRIPTION,omitempty"`
	Param       json.RawMessage `json:"PARAM"`
}

// Schema parses the PARAM payload.
func (d ToolDetails) Schema() (schema.Node, error) {
	return schema.Parse(d.Param)
}

// Int decodes JSON numbers as well as numeric strings, which the backend
// uses interchangeably for ports, clients and timeouts.
type Int int

func (i *Int) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*i = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*i = 0
			return nil
		}
		data = []byte(text)
	}
	number, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("client: invalid integer %s", data)
	}
	*i = Int(number)
	return nil
}

// ServerConfig is the companion service (MCP server) listener configuration.
type ServerConfig struct {
	Host string `json:"host"`
	Port Int    `json:"port"`
	Path string `json:"path,omitempty"`
}

// UpstreamConfig holds the credentials for the upstream system the tools call.
type UpstreamConfig struct {
	BaseURL  string `json:"base_url"`
	ClientID Int    `json:"client_id"`
	User     string `json:"sap-user"`
	Password string `json:"sap-password"`
	Timeout  Int    `json:"timeout"`
}

// Config is the backend configuration as returned by GET /api/config.
type Config struct {
	Server   ServerConfig   `json:"config"`
	Upstream UpstreamConfig `json:"sap_config"`
}

// saveConfigRequest is the body accepted by POST /api/config.
type saveConfigRequest struct {
	Upstream UpstreamConfig `json:"sap"`
	Server   ServerConfig   `json:"mcp"`
}

const (
	StatusRunning = "running"
	StatusStopped = "stopped"
)

// ServiceStatus describes the companion service process.
type ServiceStatus struct {
	Status string `json:"status"`
	Host   string `json:"host,omitempty"`
	Port   Int    `json:"port,omitempty"`
	PID    Int    `json:"pid,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Running reports whether the service is up.
func (s ServiceStatus) Running() bool {
	return s.Status == StatusRunning
}

// Address formats host:port, or an empty string when unknown.
func (s ServiceStatus) Address() string {
	if s.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ServiceResult is returned by start and stop.
type ServiceResult struct {
	Message string        `json:"message"`
	Status  ServiceStatus `json:"status"`
}

// LogQuery selects log lines. Level "all" disables filtering and a zero
// Limit uses the default.
type LogQuery struct {
	Level string
	Limit int
}

const (
	DefaultLogLevel = "all"
	DefaultLogLimit = 1000
)

// LogLevels lists the filters the backend understands.
var LogLevels = []string{"all", "INFO", "WARNING", "ERROR", "CRITICAL"}

// Logs is the log tail returned by the backend.
type Logs struct {
	Status     string `json:"status"`
	Data       string `json:"data"`
	Level      string `json:"level,omitempty"`
	TotalLines int    `json:"total_lines,omitempty"`
}

// Ack is a generic acknowledgement.
type Ack struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// TestResult is the outcome of the upstream connectivity test.
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
