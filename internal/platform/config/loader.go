package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"comicstore-go/internal/platform/errors"
)

const defaultConfigPath = "config.yaml"

// Loader reads configuration from a yaml file, with environment variables
// (optionally seeded from a .env file) taking precedence.
type Loader struct {
	path      string
	useDotEnv bool
}

func NewLoader() *Loader {
	return &Loader{
		path:      defaultConfigPath,
		useDotEnv: true,
	}
}

// WithPath overrides the config file location.
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load builds the effective configuration. A missing config file is not an
// error: defaults plus environment overrides apply.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using system environment")
		}
	}

	path := l.path
	if env := os.Getenv("COMICSTORE_CONFIG"); env != "" {
		path = env
	}

	cfg := Default()
	loadedPath := ""
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrap(errors.KindConfig, "config.load", "failed to parse config file", err)
		}
		loadedPath = path
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.KindConfig, "config.load", "failed to read config file", err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &Result{
		Config: cfg,
		Path:   loadedPath,
	}, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COMICSTORE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("COMICSTORE_AUTH_URL"); v != "" {
		cfg.Backend.AuthURL = v
	}
	if v := os.Getenv("COMICSTORE_PRODUCTS_URL"); v != "" {
		cfg.Backend.ProductsURL = v
	}
	if v := os.Getenv("COMICSTORE_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("COMICSTORE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New(errors.KindConfig, "config.validate",
			fmt.Sprintf("invalid server port: %d", cfg.Server.Port))
	}
	if cfg.Backend.AuthURL == "" {
		return errors.New(errors.KindConfig, "config.validate", "backend auth_url is required")
	}
	if cfg.Backend.ProductsURL == "" {
		return errors.New(errors.KindConfig, "config.validate", "backend products_url is required")
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 10 * time.Second
	}
	return nil
}
