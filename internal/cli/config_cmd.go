package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"medapp-cli/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect resolved configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (flags > env > file > defaults)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := configOutput{Cfg: app.Cfg, Path: configPath(app)}
			if err := app.Cfg.Validate(); err != nil {
				out.Problem = err.Error()
			}
			return writeOut(cmd, app, out)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), configPath(app))
			return nil
		},
	})
	return cmd
}

func configPath(app *App) string {
	if p := strings.TrimSpace(app.ConfigPath); p != "" {
		return p
	}
	return config.DefaultPath()
}

type configOutput struct {
	Cfg     config.Config
	Path    string
	Problem string
}

func (o configOutput) values() [][2]string {
	c := o.Cfg
	return [][2]string{
		{"base_url", c.BaseURL},
		{"cookie", redact(c.Cookie)},
		{"csrf_cookie", c.CSRFCookie},
		{"request_timeout", c.RequestTimeout.String()},
		{"rate_limit", fmt.Sprintf("%g", c.RateLimit)},
		{"reload_after", c.ReloadAfter.String()},
		{"toast_ttl", c.ToastTTL.String()},
		{"search_debounce", c.SearchDebounce.String()},
		{"log_file", c.LogFile},
		{"log_level", c.LogLevel},
		{"metrics_addr", c.MetricsAddr},
		{"format", c.Format},
		{"pretty", fmt.Sprintf("%t", c.Pretty)},
	}
}

func (o configOutput) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, 16)
	for _, kv := range o.values() {
		m[kv[0]] = kv[1]
	}
	m["config_file"] = o.Path
	if o.Problem != "" {
		m["problem"] = o.Problem
	}
	return json.Marshal(m)
}

func (o configOutput) TableHeaders() []string { return []string{"KEY", "VALUE"} }

func (o configOutput) TableRows() [][]string {
	rows := make([][]string, 0, 16)
	for _, kv := range o.values() {
		rows = append(rows, []string{kv[0], kv[1]})
	}
	rows = append(rows, []string{"config_file", o.Path})
	if o.Problem != "" {
		rows = append(rows, []string{"problem", o.Problem})
	}
	return rows
}

// redact keeps cookie names and hides their values.
func redact(cookie string) string {
	if strings.TrimSpace(cookie) == "" {
		return ""
	}
	parts := strings.Split(cookie, ";")
	for i, p := range parts {
		name, _, _ := strings.Cut(strings.TrimSpace(p), "=")
		parts[i] = name + "=***"
	}
	return strings.Join(parts, "; ")
}
