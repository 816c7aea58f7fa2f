package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pixelforge-server-go/internal/platform/errors"
)

// Loader reads configuration from an optional YAML file with environment
// variable overrides for deployment-specific values.
type Loader struct {
	path      string
	useDotEnv bool
}

func NewLoader(path string) *Loader {
	return &Loader{
		path:      path,
		useDotEnv: true,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Load builds the effective configuration: defaults, then the YAML file if
// present, then environment overrides.
func (l *Loader) Load() (*Config, error) {
	if l.useDotEnv {
		// Missing .env is fine, the process environment still applies.
		_ = godotenv.Load()
	}

	cfg := Default()

	if l.path != "" {
		raw, err := os.ReadFile(l.path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrap(errors.KindConfig, "config.read", "failed to read config file", err)
			}
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrap(errors.KindConfig, "config.parse", "failed to parse config file", err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Server.JWTSecret == "" {
		return nil, errors.New(errors.KindConfig, "config.validate", "jwt secret is required (PIXELFORGE_JWT_SECRET)")
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PIXELFORGE_JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv("PIXELFORGE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PIXELFORGE_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("PIXELFORGE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("PIXELFORGE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("PIXELFORGE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
