package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader reads configuration from a YAML file with env-var overrides.
type Loader struct {
	useDotEnv bool
	path      string
}

// NewLoader creates a loader with the default search behaviour.
func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath pins the configuration file path (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load reads, merges and validates the configuration.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using process environment")
		}
	}

	path := l.resolvePath()
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	} else {
		path = "defaults"
	}

	mergeDefaults(cfg)
	l.applyEnvOverrides(cfg)

	if err := l.validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: path}, nil
}

func (l *Loader) resolvePath() string {
	if l.path != "" {
		return l.path
	}
	if env := os.Getenv("AIDPAL_CONFIG"); env != "" {
		return env
	}
	for _, candidate := range []string{"config.yaml", ".config.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// applyEnvOverrides lets secrets come from the environment rather than the file.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("AIDPAL_API_KEY"); key != "" {
		cfg.Analysis.Provider.APIKey = key
	}
	if url := os.Getenv("AIDPAL_API_URL"); url != "" {
		cfg.Analysis.Provider.BaseURL = url
	}
	if token := os.Getenv("AIDPAL_SERVER_TOKEN"); token != "" {
		cfg.Server.Token = token
	}
	if addr := os.Getenv("AIDPAL_REDIS_ADDR"); addr != "" {
		cfg.Cache.Redis.Addr = addr
	}
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
		return fmt.Errorf("invalid web port: %d", cfg.Web.Port)
	}
	if len(cfg.Analysis.Models) == 0 {
		return fmt.Errorf("analysis requires at least one candidate model")
	}
	switch cfg.Cache.Driver {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache driver: %s", cfg.Cache.Driver)
	}
	return nil
}
