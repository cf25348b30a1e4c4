package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_EmptyConfig(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Port != 3200 {
		t.Errorf("Port = %d, want 3200", cfg.Port)
	}
	if cfg.DataDir != "./data" {
		t.Errorf("DataDir = %q, want ./data", cfg.DataDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.SessionBuffer != 64 {
		t.Errorf("SessionBuffer = %d, want 64", cfg.SessionBuffer)
	}
	if cfg.WriteTimeout.Duration() != 5*time.Second {
		t.Errorf("WriteTimeout = %v, want 5s", cfg.WriteTimeout.Duration())
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.Title != "" {
		t.Errorf("Title = %q, want empty", cfg.Title)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
title: Team Feed
port: 9090
data_dir: /var/lib/feed
log_level: debug
session_buffer: 16
write_timeout: 2s
allowed_origins:
  - https://feed.example.com
  - http://localhost:5173/
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Team Feed" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.DataDir != "/var/lib/feed" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
	if cfg.SessionBuffer != 16 {
		t.Errorf("SessionBuffer = %d, want 16", cfg.SessionBuffer)
	}
	if cfg.WriteTimeout.Duration() != 2*time.Second {
		t.Errorf("WriteTimeout = %v, want 2s", cfg.WriteTimeout.Duration())
	}
	want := []string{"https://feed.example.com", "http://localhost:5173"}
	if strings.Join(cfg.AllowedOrigins, ",") != strings.Join(want, ",") {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_FEED_DATA", "/srv/feed")
	t.Setenv("TEST_FEED_ORIGIN", "https://app.example.com")

	yaml := `
data_dir: ${TEST_FEED_DATA}/snapshots
allowed_origins: ["${TEST_FEED_ORIGIN}"]
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.DataDir != "/srv/feed/snapshots" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.AllowedOrigins[0] != "https://app.example.com" {
		t.Errorf("AllowedOrigins[0] = %q", cfg.AllowedOrigins[0])
	}
}

func TestParse_EnvVarDefault(t *testing.T) {
	cfg, err := Parse([]byte(`data_dir: ${UNSET_FEED_VAR:-/tmp/feed}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.DataDir != "/tmp/feed" {
		t.Errorf("DataDir = %q, want /tmp/feed", cfg.DataDir)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	_, err := Parse([]byte(`data_dir: ${MISSING_FEED_VAR}`))
	if err == nil {
		t.Fatal("Parse() expected error for missing env var, got nil")
	}
	if !strings.Contains(err.Error(), "MISSING_FEED_VAR") || !strings.Contains(err.Error(), "data_dir") {
		t.Errorf("error should name the field and variable: %v", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantErrLike string
	}{
		{"port too high", `port: 70000`, "port must be between"},
		{"negative port", `port: -1`, "port must be between"},
		{"blank data dir", `data_dir: "${EMPTY_OK:-}"`, "data_dir must not be empty"},
		{"bad log level", `log_level: verbose`, "log_level"},
		{"negative buffer", `session_buffer: -1`, "session_buffer"},
		{"huge buffer", `session_buffer: 100000`, "session_buffer"},
		{"write timeout too small", `write_timeout: 1ms`, "write_timeout"},
		{"write timeout too large", `write_timeout: 2m`, "write_timeout"},
		{"origin without scheme", `allowed_origins: ["localhost:5173"]`, "allowed_origins[0]"},
		{"origin with path", `allowed_origins: ["http://a.example.com/app"]`, "must not have a path"},
		{"origin ftp", `allowed_origins: ["ftp://a.example.com"]`, "http or https"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrLike) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantErrLike)
			}
		})
	}
}

func TestParse_WildcardOrigin(t *testing.T) {
	cfg, err := Parse([]byte(`allowed_origins: ["*"]`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	yaml := `
this is not: valid: yaml: at all
  - broken
`
	if _, err := Parse([]byte(yaml)); err == nil {
		t.Fatal("Parse() expected error for invalid YAML, got nil")
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte(`write_timeout: not-a-duration`))
	if err == nil {
		t.Fatal("Parse() expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %q, want to contain 'invalid duration'", err.Error())
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"seconds", "10s", 10 * time.Second, false},
		{"milliseconds", "1500ms", 1500 * time.Millisecond, false},
		{"combined", "1m0s", time.Minute, false},
		{"invalid", "soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte("write_timeout: " + tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Parse() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if cfg.WriteTimeout.Duration() != tt.want {
				t.Errorf("WriteTimeout = %v, want %v", cfg.WriteTimeout.Duration(), tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livefeed.yaml")
	if err := os.WriteFile(path, []byte("port: 4000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.Port)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of missing file expected error, got nil")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"multiple vars", "${TEST_VAR}-${TEST_VAR}", "value-value", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}
