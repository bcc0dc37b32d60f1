package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the runtime configuration of the API, read from the environment.
type Config struct {
	HTTPAddr             string
	LogLevel             string
	ServiceName          string
	OTelLogsEnabled      bool
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	MaxSessions          int
	ShutdownTimeout      time.Duration
}

func Default() Config {
	return Config{
		HTTPAddr:             ":8080",
		LogLevel:             "info",
		ServiceName:          "verdantcalc",
		SessionTTL:           30 * time.Minute,
		SessionSweepInterval: time.Minute,
		MaxSessions:          10000,
		ShutdownTimeout:      5 * time.Second,
	}
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, falling back to Default for unset
// variables.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup("HTTP_ADDR"); ok && v != "" {
		cfg.HTTPAddr = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("OTEL_SERVICE_NAME"); ok && v != "" {
		cfg.ServiceName = v
	}

	var err error
	if cfg.OTelLogsEnabled, err = boolVar(lookup, "OTEL_LOGS_ENABLED", cfg.OTelLogsEnabled); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationVar(lookup, "SESSION_TTL", cfg.SessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.SessionSweepInterval, err = durationVar(lookup, "SESSION_SWEEP_INTERVAL", cfg.SessionSweepInterval); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationVar(lookup, "SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.MaxSessions, err = intVar(lookup, "MAX_SESSIONS", cfg.MaxSessions); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func boolVar(lookup func(string) (string, bool), name string, def bool) (bool, error) {
	v, ok := lookup(name)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return b, nil
}

func durationVar(lookup func(string) (string, bool), name string, def time.Duration) (time.Duration, error) {
	v, ok := lookup(name)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parse %s: negative duration %s", name, v)
	}
	return d, nil
}

func intVar(lookup func(string) (string, bool), name string, def int) (int, error) {
	v, ok := lookup(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("parse %s: negative value %d", name, n)
	}
	return n, nil
}
