package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-toolform/internal/config"
	"github.com/goliatone/go-toolform/internal/logging"
	"github.com/goliatone/go-toolform/pkg/client"
	"github.com/goliatone/go-toolform/pkg/console"
	"github.com/goliatone/go-toolform/pkg/model"
	"github.com/goliatone/go-toolform/pkg/orchestrator"
	"github.com/goliatone/go-toolform/pkg/render"
	"github.com/goliatone/go-toolform/pkg/renderers/tui"
	"github.com/goliatone/go-toolform/pkg/renderers/vanilla"
)

type app struct {
	out    io.Writer
	errOut io.Writer
	// driver overrides the survey prompts, for tests.
	driver tui.PromptDriver

	configPath string
	backendURL string
	logLevel   string
	locale     string

	cfg    config.Config
	logger zerolog.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "toolconsole",
		Short:         "Browse, configure and run tools exposed by a tool backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (JSON or YAML)")
	flags.StringVar(&a.backendURL, "backend", "", "backend base URL (overrides config and "+config.EnvBackendURL+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&a.locale, "locale", "", "message locale: en, zh")

	root.AddCommand(
		newToolsCmd(a),
		newServiceCmd(a),
		newLogsCmd(a),
		newConfigCmd(a),
		newTestAPICmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if url := strings.TrimSpace(a.backendURL); url != "" {
		cfg.Backend.URL = url
	}
	if level := strings.TrimSpace(a.logLevel); level != "" {
		cfg.Log.Level = level
	}
	if locale := strings.TrimSpace(a.locale); locale != "" {
		cfg.Locale = locale
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	out := a.errOut
	if out == nil {
		out = os.Stderr
	}
	a.logger = logging.New(logging.Options{Level: cfg.Log.Level, Output: out, JSON: cfg.Log.JSON})
	return nil
}

func (a *app) client() (*client.Client, error) {
	timeout, err := a.cfg.BackendTimeout()
	if err != nil {
		return nil, err
	}
	return client.New(a.cfg.Backend.URL,
		client.WithTimeout(timeout),
		client.WithLogger(a.logger.With().Str("component", "client").Logger()),
	)
}

// console builds the console with both renderers registered. presetPath
// optionally points at a form preset file.
func (a *app) console(presetPath string) (*console.Console, error) {
	backend, err := a.client()
	if err != nil {
		return nil, err
	}

	registry := render.NewRegistry()
	html, err := vanilla.New()
	if err != nil {
		return nil, err
	}
	registry.MustRegister(html)
	prompts, err := tui.New(tui.WithPromptDriver(a.promptDriver()))
	if err != nil {
		return nil, err
	}
	registry.MustRegister(prompts)

	options := []orchestrator.Option{
		orchestrator.WithSource(backend),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(a.cfg.Renderer),
		orchestrator.WithLogger(a.logger),
	}
	if a.cfg.Labels == config.LabelsHuman {
		options = append(options, orchestrator.WithBuilderOptions(model.WithHumanLabels()))
	}
	if strings.TrimSpace(presetPath) != "" {
		data, err := os.ReadFile(presetPath)
		if err != nil {
			return nil, fmt.Errorf("read preset: %w", err)
		}
		preset, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return nil, err
		}
		options = append(options, orchestrator.WithSchemaTransformer(preset))
	}

	return console.New(backend,
		console.WithOrchestrator(orchestrator.New(options...)),
		console.WithLogger(a.logger),
		console.WithLocale(a.cfg.Locale),
	)
}

func (a *app) promptDriver() tui.PromptDriver {
	if a.driver != nil {
		return a.driver
	}
	return tui.NewSurveyDriver(a.out)
}

func (a *app) theme() render.RenderOptions {
	return render.RenderOptions{
		Theme: render.ThemeConfig(a.cfg.Theme.Name, a.cfg.Theme.Variant, a.cfg.Theme.Tokens),
	}
}

// failure turns a console error into the message a terminal user should see.
func failure(op string, err error) error {
	return fmt.Errorf("%s: %s", op, client.Message(err))
}
