package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Event sink kinds accepted by ARB_EVENT_SINK.
const (
	SinkNone     = "none"
	SinkFile     = "file"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
)

const defaultEventLogPath = "data/events.jsonl"

type APIConfig struct {
	Port   string `env:"PORT"`
	Addr   string `env:"ARB_API_ADDR" envDefault:":8080"`
	Seed   *int64 `env:"ARB_SEED"`
	Events EventsConfig
	// Telemetry turns on the OTLP exporter; the OTEL_* variables configure it.
	Telemetry bool `env:"ARB_TELEMETRY" envDefault:"false"`
}

type EventsConfig struct {
	Sink        string `env:"ARB_EVENT_SINK"`
	LogPath     string `env:"ARB_EVENT_LOG_PATH"`
	SQLitePath  string `env:"ARB_SQLITE_PATH" envDefault:"data/events.db"`
	DatabaseURL string `env:"DATABASE_URL"`
}

type CLIConfig struct {
	APIBaseURL string `env:"ARB_API_BASE_URL" envDefault:"http://localhost:8080"`
	Home       string `env:"ARB_HOME"`
	Seed       *int64 `env:"ARB_SEED"`
}

func LoadAPIFromEnv() (APIConfig, error) {
	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if port := strings.TrimSpace(cfg.Port); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Addr = port
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = ":8080"
	}

	cfg.Events.Sink = strings.ToLower(strings.TrimSpace(cfg.Events.Sink))
	switch cfg.Events.Sink {
	case "":
		// Without an explicit sink, events are only written when a log path is set.
		cfg.Events.Sink = SinkNone
		if strings.TrimSpace(cfg.Events.LogPath) != "" {
			cfg.Events.Sink = SinkFile
		}
	case SinkFile:
		if strings.TrimSpace(cfg.Events.LogPath) == "" {
			cfg.Events.LogPath = defaultEventLogPath
		}
	case SinkNone, SinkSQLite:
	case SinkPostgres:
		if strings.TrimSpace(cfg.Events.DatabaseURL) == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required for the postgres event sink")
		}
	default:
		return cfg, fmt.Errorf("unknown ARB_EVENT_SINK %q", cfg.Events.Sink)
	}
	return cfg, nil
}

func LoadCLIFromEnv() (CLIConfig, error) {
	var cfg CLIConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if strings.TrimSpace(cfg.Home) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.Home = filepath.Join(home, ".arb")
	}
	return cfg, nil
}
