// Package config loads lab-records settings.
//
// Values are resolved in three layers: built-in defaults, then an optional
// TOML file, then environment variables. The environment always wins so a
// deployment can override a checked-in file without editing it.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sakif/lab-records/internal/auth"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	Auth     AuthConfig     `toml:"auth"`
	Mice     MiceConfig     `toml:"mice"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

// DatabaseConfig holds the SQLite location. ":memory:" keeps everything in RAM.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn" or "error"
}

// AuthConfig holds password hashing settings.
type AuthConfig struct {
	BcryptCost int `toml:"bcrypt_cost"`
}

// MiceConfig holds mouse store rules.
type MiceConfig struct {
	RequireLabProtocol bool `toml:"require_lab_protocol"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Path: "data/lab-records.db"},
		Log:      LogConfig{Level: "info"},
		Auth:     AuthConfig{BcryptCost: auth.DefaultCost},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and the process environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		if err := Read(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("reading config from %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read decodes TOML from r over cfg. Keys absent from the document keep
// their current values. Unknown keys are rejected so typos surface early.
func Read(r io.Reader, cfg *Config) error {
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides cfg from PORT, DB_PATH, LOG_LEVEL and BCRYPT_COST.
// lookup is os.LookupEnv outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("DB_PATH"); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("BCRYPT_COST"); ok && v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST %q: %w", v, err)
		}
		c.Auth.BcryptCost = cost
	}
	return nil
}

// Validate checks ranges the rest of the program relies on.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel converts Level to a slog.Level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.Level)
	}
	return level, nil
}
