package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("base-url", "", "")
	fs.Duration("request-timeout", 0, "")
	fs.String("format", "", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MEDAPP_BASE_URL", "https://clinic.test/")
	p := writeConfig(t, "")

	cfg, err := Load(p, nil)
	require.NoError(t, err)
	require.Equal(t, "https://clinic.test/", cfg.BaseURL)
	require.Equal(t, "csrftoken", cfg.CSRFCookie)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Equal(t, 2*time.Second, cfg.ReloadAfter)
	require.Equal(t, 3*time.Second, cfg.ToastTTL)
	require.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	require.Equal(t, "json", cfg.Format)
	require.Equal(t, 5.0, cfg.RateLimit)
}

func TestLoad_Precedence(t *testing.T) {
	p := writeConfig(t, "base_url: https://file.test/\nrequest_timeout: 10s\nformat: table\n")
	t.Setenv("MEDAPP_REQUEST_TIMEOUT", "5s")

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--base-url", "https://flag.test/"}))

	cfg, err := Load(p, fs)
	require.NoError(t, err)
	require.Equal(t, "https://flag.test/", cfg.BaseURL)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, "table", cfg.Format)
}

func TestLoad_ZeroTimeoutAllowed(t *testing.T) {
	p := writeConfig(t, "base_url: https://clinic.test/\nrequest_timeout: 0s\n")
	cfg, err := Load(p, nil)
	require.NoError(t, err)
	require.Zero(t, cfg.RequestTimeout)
}

func TestLoad_MissingBaseURL(t *testing.T) {
	p := writeConfig(t, "format: json\n")
	_, err := Load(p, nil)
	var inv InvalidError
	require.ErrorAs(t, err, &inv)
	require.Equal(t, "base_url", inv.Key)
	require.Contains(t, err.Error(), "--base-url")
}

func TestLoad_InvalidFormat(t *testing.T) {
	p := writeConfig(t, "base_url: https://clinic.test/\nformat: xml\n")
	_, err := Load(p, nil)
	var inv InvalidError
	require.ErrorAs(t, err, &inv)
	require.Equal(t, "format", inv.Key)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	t.Setenv("MEDAPP_BASE_URL", "https://clinic.test/")
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}
