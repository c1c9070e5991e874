package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	l.Debug("dropped")
	l.Info("snapshot computed",
		String("health", "CRITICAL"),
		Int("risks", 2),
		Float64("churn", 12.5),
		Duration("took_ms", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (debug filtered), got %d: %q", len(lines), b)
	}

	var ev map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev["message"] != "snapshot computed" || ev["health"] != "CRITICAL" {
		t.Fatalf("unexpected event %v", ev)
	}
	if ev["took_ms"].(float64) != 1500 {
		t.Fatalf("unexpected duration %v", ev["took_ms"])
	}
	if ev["error"] != "boom" {
		t.Fatalf("unexpected error field %v", ev["error"])
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestWithCarriesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "debug", Output: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	l.With(String("component", "sweeper")).Warn("tick")

	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), `"component":"sweeper"`) {
		t.Fatalf("missing component field: %s", b)
	}
}

func TestStringsAndTimeFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	at := time.Date(2025, 7, 1, 10, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	l.Info("kafka consumer ready",
		Strings("brokers", []string{"k1:9092", "k2:9092"}),
		Time("at", at),
	)

	b, _ := os.ReadFile(path)
	var ev map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(b))), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev["brokers"] != "k1:9092, k2:9092" {
		t.Fatalf("unexpected brokers %v", ev["brokers"])
	}
	if ev["at"] != "2025-07-01T03:00:00Z" {
		t.Fatalf("unexpected time %v", ev["at"])
	}
}
