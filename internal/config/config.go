// Package config defines process configuration and its loading.
package config

import "github.com/opencourt/scoutbook/internal/session"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// Environment is "development" (default) or "production". It selects
	// the embedded NATS server and disables the ClickHouse archive in dev.
	Environment string `koanf:"environment"`

	// DBDriver selects the persistence backend: memory, sqlite, postgres.
	DBDriver string `koanf:"db_driver"`

	// SQLiteFile is the database file for the sqlite driver.
	SQLiteFile string `koanf:"sqlite_file"`

	// DatabaseURL is the connection string for the postgres driver.
	DatabaseURL string `koanf:"database_url"`

	// ScheduleFile optionally overrides the embedded league schedule.
	ScheduleFile string `koanf:"schedule_file"`

	// RatingScale is the rating domain: 3 (default) or 5.
	RatingScale int `koanf:"rating_scale"`

	// MinJerseyNumber is the jersey number floor: 1 (default) or 0.
	MinJerseyNumber int `koanf:"min_jersey_number"`

	// GameKeyMode is "timestamped" (a reselected fixture starts fresh,
	// the historical behavior) or "stable" (reselecting resumes).
	GameKeyMode string `koanf:"game_key_mode"`

	// StaticDir is served under /static/ when present.
	StaticDir string `koanf:"static_dir"`

	// NATSURL and NATSSubject configure the production event bus.
	NATSURL     string `koanf:"nats_url"`
	NATSSubject string `koanf:"nats_subject"`

	// ClickHouse archive settings, production only. Empty addr disables it.
	ClickHouseAddr     string `koanf:"clickhouse_addr"`
	ClickHouseDB       string `koanf:"clickhouse_db"`
	ClickHouseUser     string `koanf:"clickhouse_user"`
	ClickHousePassword string `koanf:"clickhouse_password"`
}

// New returns the defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":3000",
		Environment:     "development",
		DBDriver:        "sqlite",
		SQLiteFile:      "scoutbook.sqlite",
		RatingScale:     3,
		MinJerseyNumber: 1,
		GameKeyMode:     string(session.KeyModeTimestamped),
		StaticDir:       "static",
		NATSURL:         "nats://localhost:4222",
		NATSSubject:     "scouting.events",
		ClickHouseDB:    "default",
		ClickHouseUser:  "default",
	}
}
