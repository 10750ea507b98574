package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/opencourt/scoutbook/internal/session"
)

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SCOUTBOOK_CONFIG is set
//  3. env (prefix SCOUTBOOK_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SCOUTBOOK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// SCOUTBOOK_DB_DRIVER -> db_driver, matching the koanf struct tags.
	envProvider := env.Provider("SCOUTBOOK_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "scoutbook_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	switch cfg.DBDriver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown db_driver %q (valid: memory, sqlite, postgres)", cfg.DBDriver)
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url is required for the postgres driver")
	}
	if cfg.RatingScale != 3 && cfg.RatingScale != 5 {
		return fmt.Errorf("rating_scale must be 3 or 5, got %d", cfg.RatingScale)
	}
	if cfg.MinJerseyNumber != 0 && cfg.MinJerseyNumber != 1 {
		return fmt.Errorf("min_jersey_number must be 0 or 1, got %d", cfg.MinJerseyNumber)
	}
	switch session.KeyMode(cfg.GameKeyMode) {
	case session.KeyModeTimestamped, session.KeyModeStable:
	default:
		return fmt.Errorf("unknown game_key_mode %q (valid: timestamped, stable)", cfg.GameKeyMode)
	}
	return nil
}
