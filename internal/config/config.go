// Package config loads settings of the latexmd command.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/eolymp/go-latexmd"
)

const (
	DefaultFile   = "latexmd.yaml"
	DefaultOutput = "text"
	DefaultAddr   = ":8080"
	EnvPrefix     = "LATEXMD_"
)

type Config struct {
	MaxInputSize int    `koanf:"max_input_size"`
	MaxDepth     int    `koanf:"max_depth"`
	Jobs         int    `koanf:"jobs"`
	Output       string `koanf:"output"`

	Log   LogConfig   `koanf:"log"`
	Serve ServeConfig `koanf:"serve"`
	Batch BatchConfig `koanf:"batch"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type ServeConfig struct {
	Addr string `koanf:"addr"`
}

type BatchConfig struct {
	DSN string `koanf:"dsn"`
}

// flagKeys maps flag names to config keys, flags not listed here are not
// configuration.
var flagKeys = map[string]string{
	"max-input-size": "max_input_size",
	"max-depth":      "max_depth",
	"jobs":           "jobs",
	"format":         "output",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"addr":           "serve.addr",
	"dsn":            "batch.dsn",
}

// sections of nested keys, LATEXMD_LOG_LEVEL becomes log.level
var sections = []string{"log_", "serve_", "batch_"}

func defaults() map[string]any {
	return map[string]any{
		"max_input_size": latexmd.DefaultMaxInputSize,
		"max_depth":      latexmd.DefaultMaxDepth,
		"jobs":           4,
		"output":         DefaultOutput,
		"log.level":      "info",
		"log.format":     "text",
		"serve.addr":     DefaultAddr,
		"batch.dsn":      "",
	}
}

// Load reads configuration. Precedence from lowest to highest: defaults, config
// file, LATEXMD_ environment variables, explicitly set flags. Without an explicit
// path ./latexmd.yaml is used when it exists.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))

	for _, section := range sections {
		if strings.HasPrefix(key, section) {
			return strings.TrimSuffix(section, "_") + "." + strings.TrimPrefix(key, section)
		}
	}

	return key
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	if c.MaxInputSize <= 0 {
		errs = append(errs, fmt.Errorf("max_input_size must be positive, got %d", c.MaxInputSize))
	}

	if c.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth))
	}

	if c.Jobs <= 0 {
		errs = append(errs, fmt.Errorf("jobs must be positive, got %d", c.Jobs))
	}

	switch c.Output {
	case "text", "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("output must be one of text, json, yaml, got %q", c.Output))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	return nil
}

// Options returns conversion options matching the configuration.
func (c *Config) Options() []latexmd.Option {
	return []latexmd.Option{
		latexmd.WithMaxInputSize(c.MaxInputSize),
		latexmd.WithMaxDepth(c.MaxDepth),
	}
}
