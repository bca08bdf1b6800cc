package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaultsForDevProfile(t *testing.T) {
	lookup := mapLookup(map[string]string{})
	cfg, err := Load("askdb-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.HTTP.Address != ":8080" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Database.Driver != "pgx" {
		t.Fatalf("Database.Driver = %q", cfg.Database.Driver)
	}
	if cfg.Database.MaxOpenConns != 20 {
		t.Fatalf("Database.MaxOpenConns = %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Pipeline.QueryTimeout != 5*time.Second {
		t.Fatalf("Pipeline.QueryTimeout = %s", cfg.Pipeline.QueryTimeout)
	}
	if cfg.Pipeline.SampleRows != 5 {
		t.Fatalf("Pipeline.SampleRows = %d", cfg.Pipeline.SampleRows)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Fatalf("AI.Timeout = %s", cfg.AI.Timeout)
	}
	if cfg.AI.MaxTokens != 512 {
		t.Fatalf("AI.MaxTokens = %d", cfg.AI.MaxTokens)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Fatalf("CORS.AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadNeverDefaultsCredentials(t *testing.T) {
	for _, profile := range []string{"dev", "test", "prod"} {
		cfg, err := Load("askdb-api", mapLookup(map[string]string{"ASKDB_PROFILE": profile}))
		if err != nil {
			t.Fatalf("Load(%s) error = %v", profile, err)
		}
		if cfg.Database.DSN != "" {
			t.Fatalf("profile %s: Database.DSN has a default %q", profile, cfg.Database.DSN)
		}
		if cfg.AI.APIKey != "" {
			t.Fatalf("profile %s: AI.APIKey has a default", profile)
		}
	}
}

func TestLoadProdProfileDefaults(t *testing.T) {
	cfg, err := Load("askdb-api", mapLookup(map[string]string{"ASKDB_PROFILE": "prod"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if len(cfg.CORS.AllowedOrigins) != 0 {
		t.Fatalf("prod CORS.AllowedOrigins = %v, want none", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	lookup := mapLookup(map[string]string{
		"ASKDB_PROFILE":                "test",
		"ASKDB_SERVICE_NAME":           "askdb-custom",
		"ASKDB_HTTP_ADDR":              ":9999",
		"ASKDB_HTTP_READ_TIMEOUT":      "2s",
		"ASKDB_DB_DRIVER":              "duckdb",
		"ASKDB_DB_DSN":                 "analytics.duckdb",
		"ASKDB_DB_MAX_OPEN_CONNS":      "42",
		"ASKDB_QUERY_TIMEOUT":          "9s",
		"ASKDB_SAMPLE_ROWS":            "3",
		"ASKDB_AI_BASE_URL":            "https://api.example.com",
		"ASKDB_AI_API_KEY":             "secret-key",
		"ASKDB_AI_MODEL":               "openai/gpt-4o-mini",
		"ASKDB_AI_MAX_TOKENS":          "1024",
		"ASKDB_AI_TIMEOUT":             "45s",
		"ASKDB_CORS_ALLOWED_ORIGINS":   "https://a.example.com, https://b.example.com",
		"ASKDB_CORS_ALLOW_CREDENTIALS": "false",
		"ASKDB_LOG_LEVEL":              "error",
	})
	cfg, err := Load("askdb-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.Name != "askdb-custom" {
		t.Fatalf("Service.Name = %q", cfg.Service.Name)
	}
	if cfg.HTTP.Address != ":9999" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.HTTP.ReadTimeout != 2*time.Second {
		t.Fatalf("HTTP.ReadTimeout = %s", cfg.HTTP.ReadTimeout)
	}
	if cfg.Database.Driver != "duckdb" {
		t.Fatalf("Database.Driver = %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "analytics.duckdb" {
		t.Fatalf("Database.DSN = %q", cfg.Database.DSN)
	}
	if cfg.Database.MaxOpenConns != 42 {
		t.Fatalf("Database.MaxOpenConns = %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Pipeline.QueryTimeout != 9*time.Second {
		t.Fatalf("Pipeline.QueryTimeout = %s", cfg.Pipeline.QueryTimeout)
	}
	if cfg.Pipeline.SampleRows != 3 {
		t.Fatalf("Pipeline.SampleRows = %d", cfg.Pipeline.SampleRows)
	}
	if cfg.AI.BaseURL != "https://api.example.com" {
		t.Fatalf("AI.BaseURL = %q", cfg.AI.BaseURL)
	}
	if cfg.AI.APIKey != "secret-key" {
		t.Fatalf("AI.APIKey = %q", cfg.AI.APIKey)
	}
	if cfg.AI.Model != "openai/gpt-4o-mini" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.MaxTokens != 1024 {
		t.Fatalf("AI.MaxTokens = %d", cfg.AI.MaxTokens)
	}
	if cfg.AI.Timeout != 45*time.Second {
		t.Fatalf("AI.Timeout = %s", cfg.AI.Timeout)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("CORS.AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.CORS.AllowCredentials {
		t.Fatal("CORS.AllowCredentials = true, want false")
	}
	if cfg.Observability.LogLevel != slog.LevelError {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
}

func TestLoadErrorsOnInvalidValues(t *testing.T) {
	tests := []map[string]string{
		{"ASKDB_PROFILE": "oops"},
		{"ASKDB_HTTP_READ_TIMEOUT": "NaN"},
		{"ASKDB_DB_DRIVER": "sqlite"},
		{"ASKDB_DB_MAX_OPEN_CONNS": "oops"},
		{"ASKDB_QUERY_TIMEOUT": "fast"},
		{"ASKDB_SAMPLE_ROWS": "many"},
		{"ASKDB_AI_MAX_TOKENS": "lots"},
		{"ASKDB_CORS_ALLOW_CREDENTIALS": "not-bool"},
		{"ASKDB_LOG_LEVEL": "verbose"},
	}
	for _, env := range tests {
		_, err := Load("askdb-api", mapLookup(env))
		if err == nil {
			t.Fatalf("Load() expected error for env %#v", env)
		}
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
