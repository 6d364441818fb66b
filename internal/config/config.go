package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "MEDAPP"

type Config struct {
	BaseURL    string `mapstructure:"base_url" validate:"required,url"`
	Cookie     string `mapstructure:"cookie"`
	CSRFCookie string `mapstructure:"csrf_cookie" validate:"required"`

	// RequestTimeout of zero waits for the server indefinitely.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
	RateLimit      float64       `mapstructure:"rate_limit" validate:"gte=0"`

	ReloadAfter    time.Duration `mapstructure:"reload_after" validate:"gte=0"`
	ToastTTL       time.Duration `mapstructure:"toast_ttl" validate:"gt=0"`
	SearchDebounce time.Duration `mapstructure:"search_debounce" validate:"gte=0"`

	LogFile     string `mapstructure:"log_file"`
	LogLevel    string `mapstructure:"log_level" validate:"oneof=trace debug info warn error disabled"`
	MetricsAddr string `mapstructure:"metrics_addr" validate:"omitempty,hostname_port"`

	Format string `mapstructure:"format" validate:"oneof=json table"`
	Pretty bool   `mapstructure:"pretty"`
}

var defaults = map[string]any{
	"base_url":        "",
	"cookie":          "",
	"csrf_cookie":     "csrftoken",
	"request_timeout": 30 * time.Second,
	"rate_limit":      5.0,
	"reload_after":    2 * time.Second,
	"toast_ttl":       3 * time.Second,
	"search_debounce": 300 * time.Millisecond,
	"log_file":        "",
	"log_level":       "info",
	"metrics_addr":    "",
	"format":          "json",
	"pretty":          false,
}

// Keys lists every configuration key in a stable order.
func Keys() []string {
	return []string{
		"base_url", "cookie", "csrf_cookie", "request_timeout", "rate_limit",
		"reload_after", "toast_ttl", "search_debounce", "log_file", "log_level",
		"metrics_addr", "format", "pretty",
	}
}

// FlagName is the command-line spelling of a key ("base_url" => "base-url").
func FlagName(key string) string { return strings.ReplaceAll(key, "_", "-") }

// DefaultPath is ~/.config/medapp/config.yaml (or the platform equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(dir) == "" {
		return ""
	}
	return filepath.Join(dir, "medapp", "config.yaml")
}

// Load resolves configuration with precedence flags > MEDAPP_* env > config file >
// defaults. path may be empty, in which case DefaultPath is tried; a missing file is
// not an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg, err := Resolve(path, flags)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve merges every source like Load but skips validation.
func Resolve(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			switch {
			case errors.As(err, &notFound):
			case errors.Is(err, os.ErrNotExist) && !explicit:
			default:
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if flags != nil {
		for _, k := range Keys() {
			if f := flags.Lookup(FlagName(k)); f != nil {
				if err := v.BindPFlag(k, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.CSRFCookie = strings.TrimSpace(c.CSRFCookie)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
}

// InvalidError reports the first offending key by its configuration name.
type InvalidError struct {
	Key  string
	Rule string
}

func (e InvalidError) Error() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("config: %s is required (flag --%s or env %s_%s)", e.Key, FlagName(e.Key), EnvPrefix, strings.ToUpper(e.Key))
	default:
		return fmt.Sprintf("config: invalid %s (%s)", e.Key, e.Rule)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return InvalidError{Key: verrs[0].Field(), Rule: verrs[0].Tag()}
	}
	return err
}
