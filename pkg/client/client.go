package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the tool backend REST API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client for the backend rooted at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("client: base url is required")
	}
	parsed, err := url.Parse(strings.TrimRight(trimmed, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: invalid base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: parsed,
		http:    http.DefaultClient,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListTools fetches the tool list.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/tools", nil, nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Result *[]Tool `json:"RESULT"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, malformed("list tools", err.Error())
	}
	if payload.Result == nil {
		return nil, malformed("list tools", "missing RESULT array")
	}
	return *payload.Result, nil
}

// ToolDetails fetches the detail payload, including the parameter schema.
func (c *Client) ToolDetails(ctx context.Context, toolID string) (ToolDetails, error) {
	if toolID == "" {
		return ToolDetails{}, errors.New("client: tool id is required")
	}
	data, err := c.do(ctx, http.MethodPost, toolPath(toolID, "details"), nil, nil)
	if err != nil {
		return ToolDetails{}, err
	}
	var details ToolDetails
	if err := json.Unmarshal(data, &details); err != nil {
		return ToolDetails{}, malformed("tool details", err.Error())
	}
	if len(details.Param) == 0 || string(details.Param) == "null" {
		return ToolDetails{}, malformed("tool details", "missing PARAM")
	}
	if details.ID == "" {
		details.ID = toolID
	}
	return details, nil
}

// UseTool invokes a tool with the nested params object and returns the
// response body verbatim.
func (c *Client) UseTool(ctx context.Context, toolID string, params map[string]any) ([]byte, error) {
	if toolID == "" {
		return nil, errors.New("client: tool id is required")
	}
	if params == nil {
		params = map[string]any{}
	}
	return c.do(ctx, http.MethodPost, toolPath(toolID, "use"), nil, params)
}

// GetConfig loads the backend configuration.
func (c *Client) GetConfig(ctx context.Context) (Config, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/config", nil, nil)
	if err != nil {
		return Config{}, err
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Config{}, malformed("get config", err.Error())
	}
	for _, key := range []string{"config", "sap_config"} {
		if _, ok := probe[key]; !ok {
			return Config{}, malformed("get config", "missing "+key)
		}
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, malformed("get config", err.Error())
	}
	return cfg, nil
}

// SaveConfig stores cfg on the backend.
func (c *Client) SaveConfig(ctx context.Context, cfg Config) (Ack, error) {
	body := saveConfigRequest{Upstream: cfg.Upstream, Server: cfg.Server}
	data, err := c.do(ctx, http.MethodPost, "/api/config", nil, body)
	if err != nil {
		return Ack{}, err
	}
	return decodeAck(data), nil
}

// ServiceStatus reports the companion service state.
func (c *Client) ServiceStatus(ctx context.Context) (ServiceStatus, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/service/status", nil, nil)
	if err != nil {
		return ServiceStatus{}, err
	}
	var status ServiceStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return ServiceStatus{}, malformed("service status", err.Error())
	}
	if status.Status == "" {
		return ServiceStatus{}, malformed("service status", "missing status")
	}
	return status, nil
}

// StartService asks the backend to start the companion service.
func (c *Client) StartService(ctx context.Context) (ServiceResult, error) {
	return c.serviceAction(ctx, "start")
}

// StopService asks the backend to stop the companion service.
func (c *Client) StopService(ctx context.Context) (ServiceResult, error) {
	return c.serviceAction(ctx, "stop")
}

func (c *Client) serviceAction(ctx context.Context, action string) (ServiceResult, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/service/"+action, nil, nil)
	if err != nil {
		return ServiceResult{}, err
	}
	var result ServiceResult
	if err := json.Unmarshal(data, &result); err != nil {
		return ServiceResult{}, malformed("service "+action, err.Error())
	}
	return result, nil
}

// Logs fetches the backend log tail.
func (c *Client) Logs(ctx context.Context, query LogQuery) (Logs, error) {
	level := query.Level
	if level == "" {
		level = DefaultLogLevel
	}
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	values := url.Values{}
	values.Set("level", level)
	values.Set("limit", strconv.Itoa(limit))

	data, err := c.do(ctx, http.MethodGet, "/api/logs", values, nil)
	if err != nil {
		return Logs{}, err
	}
	var logs Logs
	if err := json.Unmarshal(data, &logs); err != nil {
		return Logs{}, malformed("logs", err.Error())
	}
	if logs.Status != "" && logs.Status != "success" {
		return Logs{}, &APIError{StatusCode: http.StatusOK, Status: "200 OK", Detail: errorDetail(data), Body: data}
	}
	return logs, nil
}

// ClearLogs truncates the backend log file.
func (c *Client) ClearLogs(ctx context.Context) (Ack, error) {
	data, err := c.do(ctx, http.MethodDelete, "/api/logs", nil, nil)
	if err != nil {
		return Ack{}, err
	}
	return decodeAck(data), nil
}

// TestAPI checks connectivity from the backend to the upstream system. A
// failed test is reported in the result, not as an error.
func (c *Client) TestAPI(ctx context.Context) (TestResult, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/test-api", nil, nil)
	if err != nil {
		return TestResult{}, err
	}
	var result TestResult
	if err := json.Unmarshal(data, &result); err != nil {
		return TestResult{}, malformed("test api", err.Error())
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: %s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("client: %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("op", op).Msg("backend request failed")
		return nil, &transportError{op: op, err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transportError{op: op, err: err}
	}

	c.logger.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp, data)
	}
	return data, nil
}

func toolPath(toolID, action string) string {
	return "/api/tools/" + url.PathEscape(toolID) + "/" + action
}

func decodeAck(data []byte) Ack {
	var ack Ack
	_ = json.Unmarshal(data, &ack)
	return ack
}
