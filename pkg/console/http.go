package console

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-toolform/internal/apidoc"
	"github.com/goliatone/go-toolform/pkg/client"
	"github.com/goliatone/go-toolform/pkg/params"
	"github.com/goliatone/go-toolform/pkg/render"
	"github.com/goliatone/go-toolform/pkg/renderers/vanilla"
)

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithHTMLRenderer replaces the default vanilla renderer.
func WithHTMLRenderer(renderer *vanilla.Renderer) SessionOption {
	return func(s *Session) {
		if renderer != nil {
			s.html = renderer
		}
	}
}

// WithTheme applies theme tokens to every page.
func WithTheme(cfg *theme.RendererConfig) SessionOption {
	return func(s *Session) {
		s.theme = cfg
	}
}

// WithTranslator adds translations on top of the built-in catalog.
func WithTranslator(t render.Translator) SessionOption {
	return func(s *Session) {
		s.translator = t
	}
}

// Session serves the console over HTTP. It owns one State shared by every
// request; handlers run one at a time.
type Session struct {
	console    *Console
	html       *vanilla.Renderer
	theme      *theme.RendererConfig
	translator render.Translator
	logger     zerolog.Logger
	mux        *http.ServeMux

	mu    sync.Mutex
	state State
}

// NewSession wires the HTTP routes around c.
func NewSession(c *Console, options ...SessionOption) (*Session, error) {
	if c == nil {
		return nil, errors.New("console: session requires a console")
	}
	s := &Session{console: c, logger: c.logger}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.html == nil {
		renderer, err := vanilla.New()
		if err != nil {
			return nil, err
		}
		s.html = renderer
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /tools", s.handleTools)
	mux.HandleFunc("GET /tools/{id}", s.handleTool)
	mux.HandleFunc("POST /tools/{id}", s.handleExecute)
	mux.HandleFunc("GET /service", s.handleService)
	mux.HandleFunc("POST /service/{action}", s.handleServiceAction)
	mux.HandleFunc("GET /logs", s.handleLogs)
	mux.HandleFunc("POST /logs/clear", s.handleClearLogs)
	mux.HandleFunc("GET /config", s.handleConfig)
	mux.HandleFunc("POST /config", s.handleSaveConfig)
	mux.HandleFunc("POST /config/test", s.handleTestAPI)
	mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(vanilla.AssetsFS())))
	s.mux = mux
	return s, nil
}

// State returns a snapshot of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("elapsed", time.Since(started)).
		Msg("console request")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Session) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/"+vanilla.PageTools, http.StatusFound)
}

func (s *Session) handleTools(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.console.LoadTools(r.Context(), s.state)
	state = s.console.FilterTools(state, r.URL.Query().Get("q"))
	loadErr := ""
	if err != nil {
		loadErr = client.Message(err)
		state.Notice = nil
	}
	s.state = state
	s.writePage(w, r, http.StatusOK, toolsPage(state, loadErr))
}

func (s *Session) handleTool(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.PathValue("id")
	state, err := s.console.SelectTool(r.Context(), s.withTools(r.Context()), id)
	s.state = state
	if err != nil {
		s.writePage(w, r, statusFor(err), toolsPage(state, ""))
		return
	}
	s.writeTool(w, r, http.StatusOK)
}

func (s *Session) handleExecute(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	state := s.state
	if state.SelectedID() != id {
		var err error
		state, err = s.console.SelectTool(r.Context(), s.withTools(r.Context()), id)
		if err != nil {
			s.state = state
			s.writePage(w, r, statusFor(err), toolsPage(state, ""))
			return
		}
	}

	form := r.PostForm
	action := form.Get(vanilla.ActionField)
	form.Del(vanilla.ActionField)
	if action == vanilla.ActionReset {
		state.Notice = nil
		state.LastExecution = nil
		s.state = s.console.ResetForm(state)
		s.writeTool(w, r, http.StatusOK)
		return
	}

	entries := params.FromForm(state.Selection.Form, form)
	state, _ = s.console.Execute(r.Context(), state, entries)
	s.state = state
	s.writeTool(w, r, http.StatusOK)
}

func (s *Session) handleService(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state, _ = s.console.RefreshService(r.Context(), s.state)
	s.writePage(w, r, http.StatusOK, servicePage(s.state))
}

func (s *Session) handleServiceAction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.PathValue("action") {
	case "start":
		s.state, _ = s.console.StartService(r.Context(), s.state)
	case "stop":
		s.state, _ = s.console.StopService(r.Context(), s.state)
	default:
		http.NotFound(w, r)
		return
	}
	s.writePage(w, r, http.StatusOK, servicePage(s.state))
}

func (s *Session) handleLogs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := client.LogQuery{Level: r.URL.Query().Get("level")}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		query.Limit = limit
	}
	s.state, _ = s.console.Logs(r.Context(), s.state, query)
	s.writePage(w, r, http.StatusOK, logsPage(s.state))
}

func (s *Session) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state, _ = s.console.ClearLogs(r.Context(), s.state)
	s.writePage(w, r, http.StatusOK, logsPage(s.state))
}

func (s *Session) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state, _ = s.console.LoadConfig(r.Context(), s.state)
	s.writePage(w, r, http.StatusOK, configPage(s.state))
}

func (s *Session) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	base := client.Config{}
	if s.state.Config != nil {
		base = *s.state.Config
	} else if loaded, err := s.console.LoadConfig(r.Context(), s.state); err == nil {
		base = *loaded.Config
	}
	s.state, _ = s.console.SaveConfig(r.Context(), s.state, ConfigFromValues(base, r.PostForm))
	s.writePage(w, r, http.StatusOK, configPage(s.state))
}

func (s *Session) handleTestAPI(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Config == nil {
		if loaded, err := s.console.LoadConfig(r.Context(), s.state); err == nil {
			s.state = loaded
		}
	}
	s.state, _ = s.console.TestAPI(r.Context(), s.state)
	s.writePage(w, r, http.StatusOK, configPage(s.state))
}

func (s *Session) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.withTools(r.Context())
	s.state = state
	s.mu.Unlock()

	doc, err := s.console.Describe(r.Context(), state.Tools)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data, err := apidoc.Marshal(doc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// withTools returns the state with the tool list loaded, fetching it when
// the cache is empty. A failed fetch leaves the cache empty.
func (s *Session) withTools(ctx context.Context) State {
	if len(s.state.Tools) > 0 {
		return s.state
	}
	loaded, err := s.console.LoadTools(ctx, s.state)
	if err != nil {
		loaded.Notice = nil
	}
	return loaded
}

func (s *Session) options() render.RenderOptions {
	return render.RenderOptions{
		Theme:      s.theme,
		Locale:     s.console.Locale(),
		Translator: s.translator,
	}
}

func (s *Session) writeTool(w http.ResponseWriter, r *http.Request, status int) {
	state := s.state
	opts := s.options()
	opts.Theme = nil
	opts.Action = toolHref(state.SelectedID())
	opts.Values = state.Selection.Values
	if exec := state.LastExecution; exec != nil {
		display := exec.Display
		opts.Result = &display
		opts.Errors = exec.Errors.Fields
		opts.FormErrors = render.MergeFormErrors(opts.FormErrors, exec.Errors.Form...)
	}

	form, err := s.html.Render(r.Context(), state.Selection.Form, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writePage(w, r, status, toolPage(state, string(form)))
}

func (s *Session) writePage(w http.ResponseWriter, r *http.Request, status int, page vanilla.Page) {
	opts := s.options()
	page.Title = s.pageTitle(page)
	body, err := s.html.RenderPage(r.Context(), page, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", s.html.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Session) pageTitle(page vanilla.Page) string {
	if page.Name == vanilla.PageTool {
		if tool, ok := page.Data["tool"].(map[string]any); ok {
			if name, _ := tool["name"].(string); name != "" {
				return name
			}
		}
		return render.TranslateWith(s.translator, s.console.Locale(), "tools.title")
	}
	return render.TranslateWith(s.translator, s.console.Locale(), page.Name+".title")
}

func (s *Session) fail(w http.ResponseWriter, err error) {
	s.logger.Error().Err(err).Msg("render console page")
	http.Error(w, "render failed: "+err.Error(), http.StatusInternalServerError)
}

func statusFor(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
