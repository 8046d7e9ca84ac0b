package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the runtime configuration for borderguard.
type Config struct {
	// HomeNation is the country code whose residents are returning citizens.
	HomeNation string `koanf:"home_nation" validate:"required,len=3"`

	// VisaValidityDays is how many days after issue a visa stays valid.
	VisaValidityDays int `koanf:"visa_validity_days" validate:"gte=1"`

	// Engine selects the rule evaluator: "pipeline" or "opa".
	Engine string `koanf:"engine" validate:"oneof=pipeline opa"`

	// OPAPolicy is an optional Rego file replacing the built-in admission policy.
	OPAPolicy string `koanf:"opa_policy"`

	// Workers is the number of travellers evaluated concurrently per batch.
	Workers int `koanf:"workers" validate:"gte=1,lte=256"`

	ListenAddr string `koanf:"listen_addr" validate:"required"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// Watchlist and Countries are reference data files loaded by `serve`.
	Watchlist string `koanf:"watchlist"`
	Countries string `koanf:"countries"`
}

// envLoader loads BORDERGUARD_* environment variables, lower-casing the keys
// and stripping the prefix. Tests replace it.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
		},
	}), nil)
}

// Load reads a YAML config file, applies environment overrides and validates
// the result. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	var src koanf.Provider
	if path != "" {
		src = file.Provider(expandHome(path))
	}
	cfg, err := load(src)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// LoadBytes parses YAML data and produces a runtime Config.
func LoadBytes(data []byte) (*Config, error) {
	cfg, err := load(rawbytes.Provider(data))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func load(src koanf.Provider) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(*DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}
	if src != nil {
		if err := k.Load(src, yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("loading env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	cfg.OPAPolicy = expandHome(cfg.OPAPolicy)
	cfg.Watchlist = expandHome(cfg.Watchlist)
	cfg.Countries = expandHome(cfg.Countries)
	return &cfg, nil
}

// DefaultConfig returns a config with defaults for when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		HomeNation:       DefaultHomeNation,
		VisaValidityDays: DefaultVisaValidityDays,
		Engine:           DefaultEngine,
		Workers:          DefaultWorkers,
		ListenAddr:       DefaultListenAddr,
		LogLevel:         DefaultLogLevel,
	}
}

// VisaValidity returns the visa validity window as a duration.
func (c *Config) VisaValidity() time.Duration {
	return time.Duration(c.VisaValidityDays) * 24 * time.Hour
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
