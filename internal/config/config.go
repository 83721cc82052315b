package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/Zuo-Peng/chatview/internal/ingest"
)

type Config struct {
	LowerLimit       int    `toml:"lower_limit"`
	UpperLimit       int    `toml:"upper_limit"`
	DaysFirst        bool   `toml:"days_first"`
	ParseAttachments bool   `toml:"parse_attachments"`
	Context          int    `toml:"context"`
	LogLevel         string `toml:"log_level"`
	LogFormat        string `toml:"log_format"`
	LogFile          string `toml:"log_file"`
}

func Default() *Config {
	return &Config{
		LowerLimit: ingest.DefaultLowerLimit,
		UpperLimit: ingest.DefaultUpperLimit,
		DaysFirst:  true,
		Context:    10,
		LogLevel:   "info",
		LogFormat:  "console",
	}
}

// Load reads ~/.config/chatview/config.toml when it exists.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads the given config file. An empty path falls back to the
// default location, which may be absent; an explicit path must exist.
func LoadFile(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := Default()

	cfgPath := path
	if cfgPath == "" {
		cfgPath = filepath.Join(home, ".config", "chatview", "config.toml")
		if _, err := os.Stat(cfgPath); err != nil {
			cfgPath = ""
		}
	} else {
		cfgPath = expandHome(cfgPath, home)
	}

	if cfgPath != "" {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	if lvl := os.Getenv("CHATVIEW_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}

	cfg.LogFile = expandHome(cfg.LogFile, home)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Window(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Context < 0 {
		return fmt.Errorf("config: context must not be negative, got %d", c.Context)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	return nil
}

// Window builds the startup window from the configured limits.
func (c *Config) Window() (ingest.Window, error) {
	return ingest.NewWindow(c.LowerLimit, c.UpperLimit)
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
