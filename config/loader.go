package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "TDCCH_"
	configEnvVar = "TDCCH_CONFIG_PATH"
)

// Loader loads an Engine config from defaults, then an optional YAML
// file, then environment variables, each layer overriding the last
// (SPEC_FULL §A.2), the same three-layer priority as the logistics
// example's pkg/config.Loader.
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader builds a Loader with the package's default search paths and
// env prefix, overridable via LoaderOption.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k:           koanf.New("."),
		configPaths: []string{"config.yaml", "config/config.yaml"},
		envPrefix:   envPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoaderOption customizes a Loader before Load runs.
type LoaderOption func(*Loader)

// WithConfigPaths overrides the YAML search paths.
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) { l.configPaths = paths }
}

// WithEnvPrefix overrides the environment-variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) { l.envPrefix = prefix }
}

// Load resolves an Engine config and validates it.
func (l *Loader) Load() (Engine, error) {
	if err := l.loadDefaults(); err != nil {
		return Engine{}, fmt.Errorf("config: load defaults: %w", err)
	}
	_ = l.loadConfigFile() // optional; absence is not an error

	if err := l.loadEnv(); err != nil {
		return Engine{}, fmt.Errorf("config: load env: %w", err)
	}

	var cfg Engine
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return Engine{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Engine{}, err
	}
	return cfg, nil
}

func (l *Loader) loadDefaults() error {
	d := Defaults()
	values := map[string]any{
		"period":                d.Period,
		"buckets":               d.Buckets,
		"bpr_alpha":             d.BPRAlpha,
		"bpr_beta":              d.BPRBeta,
		"interval_k":            d.IntervalK,
		"metrics":               d.Metrics,
		"customization_workers": d.CustomizationWorkers,
		"potential":             int(d.Potential),
	}
	return l.k.Load(confmap.Provider(values, "."), nil)
}

func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.k.Load(file.Provider(configPath), yaml.Parser())
		}
	}
	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		if _, err := os.Stat(absPath); err == nil {
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}
	return fmt.Errorf("config: no config file found in %v", l.configPaths)
}

func (l *Loader) loadEnv() error {
	return l.k.Load(env.Provider(l.envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
	}), nil)
}

// Load is a convenience wrapper around NewLoader().Load().
func Load() (Engine, error) {
	return NewLoader().Load()
}
