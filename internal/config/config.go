package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "JOURNEY"

type Config struct {
	BaseURL     string        `mapstructure:"base_url"`
	Headless    bool          `mapstructure:"headless"`
	SlowMotion  time.Duration `mapstructure:"slow_motion"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Interval    time.Duration `mapstructure:"poll_interval"`
	Settle      time.Duration `mapstructure:"popup_settle"`
	ContextWait time.Duration `mapstructure:"context_wait"`

	Brand      string `mapstructure:"brand"`
	Location   string `mapstructure:"location"`
	Department string `mapstructure:"department"`

	DiagnosticsDir string `mapstructure:"diagnostics_dir"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
}

// SetDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "https://useinsider.com/")
	v.SetDefault("headless", true)
	v.SetDefault("slow_motion", time.Duration(0))
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("poll_interval", 250*time.Millisecond)
	v.SetDefault("popup_settle", 2*time.Second)
	v.SetDefault("context_wait", 10*time.Second)
	v.SetDefault("brand", "Insider")
	v.SetDefault("location", "Istanbul, Turkiye")
	v.SetDefault("department", "Quality Assurance")
	v.SetDefault("diagnostics_dir", "screenshots")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_file", "")
}

// Load resolves configuration from defaults, an optional config file and
// JOURNEY_* environment variables, in increasing priority. Flags bound to v
// beforehand win over all of them.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("journey")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Interval <= 0 || c.Interval > c.Timeout {
		return fmt.Errorf("poll_interval must be in (0, timeout], got %s", c.Interval)
	}
	if c.Settle <= 0 {
		return fmt.Errorf("popup_settle must be positive, got %s", c.Settle)
	}
	if c.ContextWait <= 0 {
		return fmt.Errorf("context_wait must be positive, got %s", c.ContextWait)
	}
	return nil
}
