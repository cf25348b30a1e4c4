package livefeed

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	feed, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if feed.Port() != 3200 {
		t.Errorf("Port() = %d, want 3200", feed.Port())
	}
	if feed.DataDir() != "./data" {
		t.Errorf("DataDir() = %q, want ./data", feed.DataDir())
	}
	if feed.SessionBuffer() != 64 {
		t.Errorf("SessionBuffer() = %d, want 64", feed.SessionBuffer())
	}
	if feed.WriteTimeout() != 5*time.Second {
		t.Errorf("WriteTimeout() = %v, want 5s", feed.WriteTimeout())
	}
	if got := feed.AllowedOrigins(); len(got) != 1 || got[0] != "http://localhost:5173" {
		t.Errorf("AllowedOrigins() = %v", got)
	}
}

func TestWithPort(t *testing.T) {
	feed, err := New(WithPort(9090))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if feed.Port() != 9090 {
		t.Errorf("Port() = %d, want 9090", feed.Port())
	}
}

func TestWithPort_Invalid(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"zero", 0},
		{"negative", -1},
		{"too high", 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(WithPort(tt.port)); err == nil {
				t.Errorf("New(WithPort(%d)) expected error, got nil", tt.port)
			}
		})
	}
}

func TestWithPort_ValidEdgeCases(t *testing.T) {
	for _, port := range []int{1, 65535} {
		if _, err := New(WithPort(port)); err != nil {
			t.Errorf("New(WithPort(%d)) error = %v", port, err)
		}
	}
}

func TestWithDataDir(t *testing.T) {
	feed, err := New(WithDataDir("/var/lib/livefeed"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if feed.DataDir() != "/var/lib/livefeed" {
		t.Errorf("DataDir() = %q", feed.DataDir())
	}

	if _, err := New(WithDataDir("  ")); err == nil {
		t.Error("New(WithDataDir(blank)) expected error, got nil")
	}
}

func TestWithSessionBuffer(t *testing.T) {
	feed, err := New(WithSessionBuffer(8))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if feed.SessionBuffer() != 8 {
		t.Errorf("SessionBuffer() = %d, want 8", feed.SessionBuffer())
	}

	for _, n := range []int{0, -3} {
		if _, err := New(WithSessionBuffer(n)); err == nil {
			t.Errorf("New(WithSessionBuffer(%d)) expected error, got nil", n)
		}
	}
}

func TestWithWriteTimeout(t *testing.T) {
	feed, err := New(WithWriteTimeout(time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if feed.WriteTimeout() != time.Second {
		t.Errorf("WriteTimeout() = %v, want 1s", feed.WriteTimeout())
	}

	if _, err := New(WithWriteTimeout(0)); err == nil {
		t.Error("New(WithWriteTimeout(0)) expected error, got nil")
	}
}

func TestWithAllowedOrigins_Immutability(t *testing.T) {
	origins := []string{"https://feed.example.com"}
	feed, err := New(WithAllowedOrigins(origins...))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	origins[0] = "mutated"
	got := feed.AllowedOrigins()
	if got[0] != "https://feed.example.com" {
		t.Errorf("AllowedOrigins()[0] = %q, caller slice leaked in", got[0])
	}

	got[0] = "mutated"
	if feed.AllowedOrigins()[0] != "https://feed.example.com" {
		t.Error("AllowedOrigins() returned internal slice")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	feed, err := New(WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if feed.logger != logger {
		t.Error("logger was not set")
	}
}

func TestWithLogger_Nil(t *testing.T) {
	_, err := New(WithLogger(nil))
	if err == nil {
		t.Fatal("New(WithLogger(nil)) expected error, got nil")
	}
	if !strings.Contains(err.Error(), "logger cannot be nil") {
		t.Errorf("error = %v", err)
	}
}

func TestWithLogger_DefaultsToSlogDefault(t *testing.T) {
	feed, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if feed.logger != slog.Default() {
		t.Error("logger should default to slog.Default()")
	}
}

func TestWithTitle(t *testing.T) {
	feed, err := New(WithTitle("Team Feed"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if feed.title != "Team Feed" {
		t.Errorf("title = %q, want %q", feed.title, "Team Feed")
	}
}

func TestWithPublishCallback_NilIgnored(t *testing.T) {
	feed, err := New(WithPublishCallback(nil))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(feed.publishCallbacks) != 0 {
		t.Errorf("publishCallbacks = %d, want 0", len(feed.publishCallbacks))
	}
}
