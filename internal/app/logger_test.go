package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/mla/planning-backend/internal/config"
)

func TestNewLogger_SetsDefault(t *testing.T) {
	logger := NewLogger(config.LogConfig{Level: "info", Format: "json"})

	if slog.Default().Handler() != logger.Handler() {
		t.Error("NewLogger should install the returned logger as slog default")
	}
}

func TestNewLogger_JSONCarriesAppName(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newLogger(&buf, config.LogConfig{Level: "info", Format: "json"}).Info("planning published")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON: %v (%s)", err, buf.String())
	}
	if m["app"] != appName {
		t.Errorf("app = %v, want %q", m["app"], appName)
	}
	if m["msg"] != "planning published" {
		t.Errorf("msg = %v, want %q", m["msg"], "planning published")
	}
	if _, ok := m["source"]; ok {
		t.Error("json format should not include source")
	}
}

func TestNewLogger_TextAddsSource(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newLogger(&buf, config.LogConfig{Level: "info", Format: "TEXT"}).Info("hello")

	out := buf.String()
	if !strings.Contains(out, "source=") {
		t.Errorf("text format should include source, got %q", out)
	}
	if !strings.Contains(out, "app="+appName) {
		t.Errorf("text output should carry the app name, got %q", out)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := newLogger(&buf, config.LogConfig{Level: tt.level, Format: "json"})

			logger.Log(context.Background(), tt.want, "should appear")
			if buf.Len() == 0 {
				t.Errorf("expected output at level %v", tt.want)
			}

			buf.Reset()
			logger.Log(context.Background(), tt.want-1, "should be suppressed")
			if buf.Len() != 0 {
				t.Errorf("level %v should suppress %v, got %s", tt.want, tt.want-1, buf.String())
			}
		})
	}
}
