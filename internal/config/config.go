// Package config loads bot settings from an optional JSON config file with
// sane defaults. CLI flags override anything the file sets.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/rvik/scraptf-autoenter/internal/scraptf"
	"github.com/rvik/scraptf-autoenter/internal/session"
)

const (
	// DefaultEntryDelay is the pause between consecutive entry submissions.
	DefaultEntryDelay = 5 * time.Second

	// DefaultLoopInterval is the pause between passes over the listing.
	DefaultLoopInterval = 15 * time.Minute

	// DefaultDataDir holds run reports.
	DefaultDataDir = "~/.local/share/scraptf-autoenter"
)

// Config holds every tunable the bot understands.
type Config struct {
	BaseURL         string        `mapstructure:"base_url"`
	CookiesPath     string        `mapstructure:"cookies_path"`
	UserAgentPath   string        `mapstructure:"user_agent_path"`
	RandomUserAgent bool          `mapstructure:"random_user_agent"`
	EntryDelay      time.Duration `mapstructure:"entry_delay"`
	LoopInterval    time.Duration `mapstructure:"loop_interval"`
	DataDir         string        `mapstructure:"data_dir"`
}

// Load reads configuration from the given file, or from an optional
// config.json in the working directory when path is empty. A missing
// default config file is not an error; an explicitly named one must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("base_url", scraptf.DefaultBaseURL)
	v.SetDefault("cookies_path", session.DefaultCookiesPath)
	v.SetDefault("user_agent_path", session.DefaultUserAgentPath)
	v.SetDefault("random_user_agent", false)
	v.SetDefault("entry_delay", DefaultEntryDelay)
	v.SetDefault("loop_interval", DefaultLoopInterval)
	v.SetDefault("data_dir", DefaultDataDir)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the loop cannot run with.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.CookiesPath == "" {
		return fmt.Errorf("cookies_path must not be empty")
	}
	if c.EntryDelay < 0 {
		return fmt.Errorf("entry_delay must not be negative")
	}
	if c.LoopInterval <= 0 {
		return fmt.Errorf("loop_interval must be positive")
	}
	return nil
}
