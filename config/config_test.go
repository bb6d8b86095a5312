package config

import (
	"strings"
	"testing"
	"time"
)

// TestParse_Minimal verifies defaults are applied when only the URL is
// given.
func TestParse_Minimal(t *testing.T) {
	cfg, err := Parse([]byte("url: http://localhost:8000\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.URL != "http://localhost:8000" {
		t.Errorf("unexpected url %q", cfg.URL)
	}
	if cfg.Timeout.Duration() != 10*time.Second {
		t.Errorf("expected default timeout 10s, got %s", cfg.Timeout.Duration())
	}
	if cfg.StatusPollInterval.Duration() != time.Second {
		t.Errorf("expected default status interval 1s, got %s", cfg.StatusPollInterval.Duration())
	}
	if cfg.SpanPollInterval.Duration() != 3*time.Second {
		t.Errorf("expected default span interval 3s, got %s", cfg.SpanPollInterval.Duration())
	}
}

// TestParse_Full verifies a fully specified config round-trips.
func TestParse_Full(t *testing.T) {
	yaml := `
url: https://hastic.example.com
timeout: 5s
status_poll_interval: 500ms
span_poll_interval: 2s
headers:
  Authorization: Bearer token
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.Timeout.Duration() != 5*time.Second {
		t.Errorf("unexpected timeout %s", cfg.Timeout.Duration())
	}
	if cfg.StatusPollInterval.Duration() != 500*time.Millisecond {
		t.Errorf("unexpected status interval %s", cfg.StatusPollInterval.Duration())
	}
	if cfg.Headers["Authorization"] != "Bearer token" {
		t.Errorf("unexpected headers %v", cfg.Headers)
	}
}

// TestParse_MissingURL verifies the URL is required.
func TestParse_MissingURL(t *testing.T) {
	if _, err := Parse([]byte("timeout: 5s\n")); err == nil {
		t.Error("expected error for missing url")
	}
}

// TestParse_BadScheme verifies non-HTTP schemes are rejected.
func TestParse_BadScheme(t *testing.T) {
	_, err := Parse([]byte("url: ftp://hastic.example.com\n"))
	if err == nil || !strings.Contains(err.Error(), "scheme") {
		t.Errorf("expected scheme error, got %v", err)
	}
}

// TestParse_BadDuration verifies invalid duration strings are rejected
// with the offending value in the message.
func TestParse_BadDuration(t *testing.T) {
	_, err := Parse([]byte("url: http://localhost:8000\ntimeout: fast\n"))
	if err == nil || !strings.Contains(err.Error(), "fast") {
		t.Errorf("expected duration error naming the value, got %v", err)
	}
}

// TestParse_PollIntervalFloor verifies overly aggressive poll intervals
// are rejected.
func TestParse_PollIntervalFloor(t *testing.T) {
	_, err := Parse([]byte("url: http://localhost:8000\nstatus_poll_interval: 1ms\n"))
	if err == nil {
		t.Error("expected error for sub-floor poll interval")
	}
}

// TestParse_EnvExpansion verifies ${VAR} and ${VAR:-default} substitution
// in URL and header values.
func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("HASTIC_HOST", "hastic.internal")

	yaml := `
url: http://${HASTIC_HOST}:8000
headers:
  Authorization: Bearer ${HASTIC_TOKEN:-anonymous}
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.URL != "http://hastic.internal:8000" {
		t.Errorf("unexpected url %q", cfg.URL)
	}
	if cfg.Headers["Authorization"] != "Bearer anonymous" {
		t.Errorf("expected default substitution, got %q", cfg.Headers["Authorization"])
	}
}

// TestParse_EnvMissing verifies a reference to an unset variable without a
// default fails.
func TestParse_EnvMissing(t *testing.T) {
	_, err := Parse([]byte("url: http://${HASTIC_UNSET_HOST}:8000\n"))
	if err == nil || !strings.Contains(err.Error(), "HASTIC_UNSET_HOST") {
		t.Errorf("expected error naming the variable, got %v", err)
	}
}
