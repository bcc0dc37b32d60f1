package config

import (
	"strings"
	"testing"
	"time"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg != Default() {
		t.Fatalf("expected defaults %+v, got %+v", Default(), cfg)
	}
}

func TestFromLookupOverrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"HTTP_ADDR":              ":9090",
		"LOG_LEVEL":              "debug",
		"OTEL_SERVICE_NAME":      "calc-test",
		"OTEL_LOGS_ENABLED":      "true",
		"SESSION_TTL":            "10m",
		"SESSION_SWEEP_INTERVAL": "30s",
		"MAX_SESSIONS":           "5",
		"SHUTDOWN_TIMEOUT":       "1s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Config{
		HTTPAddr:             ":9090",
		LogLevel:             "debug",
		ServiceName:          "calc-test",
		OTelLogsEnabled:      true,
		SessionTTL:           10 * time.Minute,
		SessionSweepInterval: 30 * time.Second,
		MaxSessions:          5,
		ShutdownTimeout:      time.Second,
	}
	if cfg != want {
		t.Fatalf("expected %+v, got %+v", want, cfg)
	}
}

func TestFromLookupRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bool", key: "OTEL_LOGS_ENABLED", val: "maybe"},
		{name: "duration", key: "SESSION_TTL", val: "soon"},
		{name: "negative duration", key: "SHUTDOWN_TIMEOUT", val: "-1s"},
		{name: "int", key: "MAX_SESSIONS", val: "many"},
		{name: "negative int", key: "MAX_SESSIONS", val: "-3"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(map[string]string{tc.key: tc.val}))
			if err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.val)
			}
			if !strings.Contains(err.Error(), tc.key) {
				t.Fatalf("expected error to name %s, got %v", tc.key, err)
			}
		})
	}
}
