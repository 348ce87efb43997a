package console

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-toolform/pkg/client"
	"github.com/goliatone/go-toolform/pkg/orchestrator"
	"github.com/goliatone/go-toolform/pkg/params"
	"github.com/goliatone/go-toolform/pkg/render"
	"github.com/goliatone/go-toolform/pkg/result"
)

// ErrNoSelection is returned by Execute when no tool is open.
var ErrNoSelection = errors.New("console: no tool selected")

// Backend is the slice of the REST client the console uses.
// *client.Client satisfies it.
type Backend interface {
	ListTools(ctx context.Context) ([]client.Tool, error)
	ToolDetails(ctx context.Context, toolID string) (client.ToolDetails, error)
	UseTool(ctx context.Context, toolID string, params map[string]any) ([]byte, error)
	GetConfig(ctx context.Context) (client.Config, error)
	SaveConfig(ctx context.Context, cfg client.Config) (client.Ack, error)
	ServiceStatus(ctx context.Context) (client.ServiceStatus, error)
	StartService(ctx context.Context) (client.ServiceResult, error)
	StopService(ctx context.Context) (client.ServiceResult, error)
	Logs(ctx context.Context, query client.LogQuery) (client.Logs, error)
	ClearLogs(ctx context.Context) (client.Ack, error)
	TestAPI(ctx context.Context) (client.TestResult, error)
}

// Option customises a Console.
type Option func(*Console)

// WithOrchestrator replaces the form pipeline, e.g. to add presets.
func WithOrchestrator(orch *orchestrator.Orchestrator) Option {
	return func(c *Console) {
		c.forms = orch
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// WithLocale selects the language of notices.
func WithLocale(locale string) Option {
	return func(c *Console) {
		c.locale = strings.TrimSpace(locale)
	}
}

// WithClock overrides time.Now for execution timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Console) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator overrides the execution id source.
func WithIDGenerator(newID func() string) Option {
	return func(c *Console) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// Console runs operations against the backend. It holds no state of its
// own and is safe for concurrent use.
type Console struct {
	backend Backend
	forms   *orchestrator.Orchestrator
	logger  zerolog.Logger
	locale  string
	now     func() time.Time
	newID   func() string
}

// New builds a Console on top of backend.
func New(backend Backend, options ...Option) (*Console, error) {
	if backend == nil {
		return nil, errors.New("console: backend is required")
	}
	c := &Console{
		backend: backend,
		logger:  zerolog.Nop(),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.forms == nil {
		c.forms = orchestrator.New(
			orchestrator.WithSource(backend),
			orchestrator.WithLogger(c.logger),
		)
	}
	return c, nil
}

// Locale reports the notice language.
func (c *Console) Locale() string {
	return c.locale
}

// Orchestrator exposes the form pipeline.
func (c *Console) Orchestrator() *orchestrator.Orchestrator {
	return c.forms
}

func (c *Console) text(key string, args ...any) string {
	return render.TranslateWith(nil, c.locale, key, args...)
}

func (c *Console) fail(s State, op string, err error) (State, error) {
	c.logger.Warn().Err(err).Str("op", op).Msg("console operation failed")
	return s.withNotice(NoticeError, client.Message(err)), err
}

// LoadTools replaces the cached tool list.
func (c *Console) LoadTools(ctx context.Context, s State) (State, error) {
	s.Notice = nil
	tools, err := c.backend.ListTools(ctx)
	if err != nil {
		return c.fail(s, "load tools", err)
	}
	s.Tools = tools
	return s, nil
}

// FilterTools sets the case-insensitive filter applied by VisibleTools.
func (c *Console) FilterTools(s State, term string) State {
	s.Filter = strings.TrimSpace(term)
	return s
}

// SelectTool opens a tool: it fetches the details, takes the description
// from the cached list when the list has one, fills in a missing name, and
// builds the form. The previous execution result is cleared.
func (c *Console) SelectTool(ctx context.Context, s State, toolID string) (State, error) {
	s.Notice = nil
	details, err := c.backend.ToolDetails(ctx, toolID)
	if err != nil {
		return c.fail(s, "select tool", err)
	}
	if cached, ok := s.Tool(toolID); ok {
		if details.Name == "" {
			details.Name = cached.Name
		}
		if cached.Description != "" {
			details.Description = cached.Description
		}
	}

	built, err := c.forms.Form(ctx, orchestrator.Request{ToolID: toolID, Details: &details})
	if err != nil {
		return c.fail(s, "select tool", err)
	}
	s.Selection = &Selection{Details: built.Details, Form: built.Form}
	s.LastExecution = nil
	return s, nil
}

// ResetForm drops the submitted values so the form shows schema defaults.
func (c *Console) ResetForm(s State) State {
	if s.Selection == nil {
		return s
	}
	selection := *s.Selection
	selection.Values = nil
	s.Selection = &selection
	return s
}

// Execute encodes entries, invokes the selected tool and records the
// outcome in LastExecution. Backend failures are recorded too, with the
// message shown in place of the result.
func (c *Console) Execute(ctx context.Context, s State, entries []params.Entry) (State, error) {
	if s.Selection == nil {
		s.Notice = nil
		return s.withNotice(NoticeError, c.text("notice.select_tool")), ErrNoSelection
	}
	selection := *s.Selection
	selection.Values = rawValues(entries)
	s.Selection = &selection
	return c.ExecuteParams(ctx, s, params.Encode(entries))
}

// ExecuteParams invokes the selected tool with an already encoded params
// object, e.g. one collected by the terminal prompts.
func (c *Console) ExecuteParams(ctx context.Context, s State, payload map[string]any) (State, error) {
	s.Notice = nil
	if s.Selection == nil {
		return s.withNotice(NoticeError, c.text("notice.select_tool")), ErrNoSelection
	}
	if payload == nil {
		payload = map[string]any{}
	}

	toolID := s.Selection.Details.ID
	execution := &Execution{
		ID:     c.newID(),
		ToolID: toolID,
		Params: payload,
		At:     c.now(),
	}
	s.LastExecution = execution

	raw, err := c.backend.UseTool(ctx, toolID, payload)
	if err != nil {
		message := fmt.Sprintf("%s: %s", c.text("notice.error"), client.Message(err))
		execution.Err = err
		execution.Display = result.Display{Text: message, HTML: html.EscapeString(message)}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			execution.Errors = render.MapErrorPayload(s.Selection.Form, apiErr.FieldErrors())
		}
		return c.fail(s, "execute", err)
	}
	execution.Raw = raw
	execution.Display = result.Present(raw)
	c.logger.Info().Str("tool", toolID).Str("execution", execution.ID).Bool("json", execution.Display.JSON).Msg("tool executed")
	return s, nil
}

// ExecuteValues is Execute for callers holding typed values keyed by input
// name rather than raw form entries.
func (c *Console) ExecuteValues(ctx context.Context, s State, values map[string]any) (State, error) {
	if s.Selection == nil {
		s.Notice = nil
		return s.withNotice(NoticeError, c.text("notice.select_tool")), ErrNoSelection
	}
	return c.Execute(ctx, s, params.FromValues(s.Selection.Form, values))
}

func rawValues(entries []params.Entry) map[string]string {
	values := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.Name != "" {
			values[entry.Name] = entry.Raw
		}
	}
	return values
}

// LoadConfig fetches the backend configuration.
func (c *Console) LoadConfig(ctx context.Context, s State) (State, error) {
	s.Notice = nil
	cfg, err := c.backend.GetConfig(ctx)
	if err != nil {
		return c.fail(s, "load config", err)
	}
	s.Config = &cfg
	return s, nil
}

// SaveConfig stores cfg on the backend.
func (c *Console) SaveConfig(ctx context.Context, s State, cfg client.Config) (State, error) {
	s.Notice = nil
	ack, err := c.backend.SaveConfig(ctx, cfg)
	if err != nil {
		return c.fail(s, "save config", err)
	}
	s.Config = &cfg
	return s.withNotice(NoticeSuccess, firstNonEmpty(ack.Message, c.text("notice.config_saved"))), nil
}

// TestAPI runs the upstream connectivity check. A failed check is a notice,
// not an error.
func (c *Console) TestAPI(ctx context.Context, s State) (State, error) {
	s.Notice = nil
	res, err := c.backend.TestAPI(ctx)
	if err != nil {
		return c.fail(s, "test api", err)
	}
	s.LastTest = &res
	if res.Success {
		return s.withNotice(NoticeSuccess, firstNonEmpty(res.Message, c.text("notice.test_ok"))), nil
	}
	return s.withNotice(NoticeError, firstNonEmpty(res.Message, c.text("notice.test_failed"))), nil
}

// RefreshService reloads the companion service status.
func (c *Console) RefreshService(ctx context.Context, s State) (State, error) {
	s.Notice = nil
	status, err := c.backend.ServiceStatus(ctx)
	if err != nil {
		return c.fail(s, "service status", err)
	}
	s.Service = &status
	return s, nil
}

// StartService starts the companion service and refreshes its status.
func (c *Console) StartService(ctx context.Context, s State) (State, error) {
	return c.serviceAction(ctx, s, "start", c.backend.StartService)
}

// StopService stops the companion service and refreshes its status.
func (c *Console) StopService(ctx context.Context, s State) (State, error) {
	return c.serviceAction(ctx, s, "stop", c.backend.StopService)
}

func (c *Console) serviceAction(ctx context.Context, s State, action string, call func(context.Context) (client.ServiceResult, error)) (State, error) {
	s.Notice = nil
	res, err := call(ctx)
	if err != nil {
		return c.fail(s, "service "+action, err)
	}

	status := res.Status
	if refreshed, err := c.backend.ServiceStatus(ctx); err == nil {
		status = refreshed
	} else {
		c.logger.Debug().Err(err).Msg("service status refresh failed")
	}
	s.Service = &status

	if res.Status.Error != "" {
		return s.withNotice(NoticeError, res.Status.Error), nil
	}
	return s.withNotice(NoticeSuccess, firstNonEmpty(res.Message, c.text("notice.service_done"))), nil
}

// Logs fetches the log tail. Zero fields of query take the defaults.
func (c *Console) Logs(ctx context.Context, s State, query client.LogQuery) (State, error) {
	s.Notice = nil
	query = normalizeQuery(query)
	s.LogQuery = query
	logs, err := c.backend.Logs(ctx, query)
	if err != nil {
		return c.fail(s, "logs", err)
	}
	s.Logs = &logs
	return s, nil
}

// ClearLogs truncates the backend log and reloads the tail with the last
// query.
func (c *Console) ClearLogs(ctx context.Context, s State) (State, error) {
	s.Notice = nil
	ack, err := c.backend.ClearLogs(ctx)
	if err != nil {
		return c.fail(s, "clear logs", err)
	}

	query := normalizeQuery(s.LogQuery)
	logs, err := c.backend.Logs(ctx, query)
	if err != nil {
		logs = client.Logs{Level: query.Level}
	}
	s.LogQuery = query
	s.Logs = &logs
	return s.withNotice(NoticeSuccess, firstNonEmpty(ack.Message, c.text("notice.logs_cleared"))), nil
}

func normalizeQuery(query client.LogQuery) client.LogQuery {
	if strings.TrimSpace(query.Level) == "" {
		query.Level = client.DefaultLogLevel
	}
	if query.Limit <= 0 {
		query.Limit = client.DefaultLogLimit
	}
	return query
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
