package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"medapp-cli/internal/config"
	"medapp-cli/internal/format"
	"medapp-cli/internal/logging"
	"medapp-cli/internal/metrics"
	"medapp-cli/internal/patients"
	"medapp-cli/internal/remote"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	Cfg        config.Config

	Log     zerolog.Logger
	Metrics *metrics.Metrics

	// OpenURL opens navigation targets in the system browser.
	OpenURL func(string) error

	ctx      context.Context
	stop     context.CancelFunc
	closeLog func() error
	client   *remote.Client
	dir      *patients.Directory
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{OpenURL: openPath})
}

func newRootCmd(app *App) *cobra.Command {
	if app.OpenURL == nil {
		app.OpenURL = openPath
	}

	cmd := &cobra.Command{
		Use:          "medapp",
		Short:        "Terminal client for patient visit histories",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Search patients interactively
  medapp

  # Open a patient's visit history (shortcut for: medapp history <patient-id>)
  medapp 42

  # Scriptable commands
  medapp visits list 42 --status scheduled
  medapp visits cancel 311 --patient 42 --reason "patient request" --yes
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive patient search.
			if len(args) == 0 {
				return runTUI(cmd, app, "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.teardown()
		return nil
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ConfigPath, "config", envOr("MEDAPP_CONFIG", ""), "Config file (default: ~/.config/medapp/config.yaml)")
	pf.String("base-url", "", "Server root, e.g. https://clinic.example.com/")
	pf.String("cookie", "", "Cookie header for an authenticated session (\"sessionid=...; csrftoken=...\")")
	pf.String("csrf-cookie", "", "Name of the anti-forgery cookie (default csrftoken)")
	pf.Duration("request-timeout", 0, "Per-request timeout; 0 waits indefinitely (default 30s)")
	pf.Float64("rate-limit", 0, "Max requests per second (default 5)")
	pf.Duration("reload-after", 0, "Delay before reloading a page after a cancellation (default 2s)")
	pf.Duration("toast-ttl", 0, "How long notifications stay visible (default 3s)")
	pf.Duration("search-debounce", 0, "Patient search debounce (default 300ms)")
	pf.String("log-file", "", "Write JSON logs to this file")
	pf.String("log-level", "", "Log level (trace|debug|info|warn|error|disabled)")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	pf.Bool("pretty", false, "Pretty-print JSON output")
	pf.String("format", "", "Output format (json|table)")

	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newVisitsCmd(app))
	cmd.AddCommand(newPatientsCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// setup resolves configuration and builds the logger and metrics for one invocation.
func (app *App) setup(cmd *cobra.Command) error {
	load := config.Load
	if isConfigCmd(cmd) {
		// Inspecting configuration must work while it is still incomplete.
		load = config.Resolve
	}
	cfg, err := load(app.ConfigPath, cmd.Flags())
	if err != nil {
		return writeErr(cmd, err)
	}
	app.Cfg = cfg

	mode := logging.ModeCLI
	if isInteractive(cmd) {
		mode = logging.ModeTUI
	}
	l, closeLog, err := logging.New(logging.Options{
		Mode:   mode,
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	app.Log = l
	app.closeLog = closeLog

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	app.ctx, app.stop = context.WithCancel(parent)
	app.Metrics = metrics.New()
	if addr := strings.TrimSpace(cfg.MetricsAddr); addr != "" {
		if err := app.Metrics.Serve(app.ctx, addr); err != nil {
			return writeErr(cmd, fmt.Errorf("metrics listener: %w", err))
		}
		app.Log.Info().Str("addr", addr).Msg("metrics listening")
	}
	return nil
}

func (app *App) teardown() {
	if app.stop != nil {
		app.stop()
	}
	if app.closeLog != nil {
		_ = app.closeLog()
	}
}

func isInteractive(cmd *cobra.Command) bool {
	return cmd.Parent() == nil || cmd.Name() == "history"
}

func isConfigCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" && c.Parent() != nil && c.Parent().Parent() == nil {
			return true
		}
	}
	return false
}

func (app *App) context() context.Context {
	if app.ctx == nil {
		return context.Background()
	}
	return app.ctx
}

func (app *App) remoteClient() (*remote.Client, error) {
	if app.client != nil {
		return app.client, nil
	}
	c, err := remote.New(remote.Config{
		BaseURL:    app.Cfg.BaseURL,
		Cookie:     app.Cfg.Cookie,
		CSRFCookie: app.Cfg.CSRFCookie,
		Timeout:    app.Cfg.RequestTimeout,
		RateLimit:  app.Cfg.RateLimit,
		Logger:     &app.Log,
	})
	if err != nil {
		return nil, err
	}
	app.client = c
	return c, nil
}

func (app *App) backend() (observedBackend, error) {
	c, err := app.remoteClient()
	if err != nil {
		return observedBackend{}, err
	}
	return observedBackend{Client: c, m: app.Metrics}, nil
}

func (app *App) directory() (*patients.Directory, error) {
	if app.dir != nil {
		return app.dir, nil
	}
	c, err := app.remoteClient()
	if err != nil {
		return nil, err
	}
	app.dir = patients.NewDirectory(observedLister{c: c, m: app.Metrics},
		patients.WithTTL(5*time.Minute),
		patients.WithLogger(app.Log),
	)
	return app.dir, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, data any, hints ...string) error {
	return format.Write(cmd.OutOrStdout(), format.Envelope{Data: data, Hints: hints}, app.Cfg.Format, app.Cfg.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
