package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel zerolog.Level
	}{
		{"empty defaults to info", "", zerolog.InfoLevel},
		{"debug", "debug", zerolog.DebugLevel},
		{"warn", "warn", zerolog.WarnLevel},
		{"upper case", "ERROR", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Setup(tt.level, FormatJSON, &bytes.Buffer{}); err != nil {
				t.Fatalf("Setup() error = %v, want nil", err)
			}
			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("Setup(%q) set level to %v, want %v", tt.level, zerolog.GlobalLevel(), tt.wantLevel)
			}
		})
	}
}

func TestSetup_Invalid(t *testing.T) {
	if err := Setup("loud", FormatJSON, &bytes.Buffer{}); err == nil {
		t.Error("Setup() with unknown level error = nil, want error")
	}
	if err := Setup("info", "xml", &bytes.Buffer{}); err == nil {
		t.Error("Setup() with unknown format error = nil, want error")
	}
}

func TestGetLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup("info", FormatJSON, &buf); err != nil {
		t.Fatalf("Setup() error = %v, want nil", err)
	}

	logger := GetLogger("server")
	logger.Info().Str("addr", ":50061").Msg("listening")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["component"] != "server" {
		t.Errorf("component = %v, want server", entry["component"])
	}
	if entry["message"] != "listening" {
		t.Errorf("message = %v, want listening", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
}

func TestGetLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup("warn", FormatJSON, &buf); err != nil {
		t.Fatalf("Setup() error = %v, want nil", err)
	}

	logger := GetLogger("test")
	logger.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info line written at warn level: %s", buf.String())
	}
}

func TestSetup_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup("info", FormatText, &buf); err != nil {
		t.Fatalf("Setup() error = %v, want nil", err)
	}

	logger := GetLogger("cli")
	logger.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("text output = %q, want message", buf.String())
	}
	if json.Valid(buf.Bytes()) {
		t.Errorf("text output is JSON: %s", buf.String())
	}
}

func TestLogDuration(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup("debug", FormatJSON, &buf); err != nil {
		t.Fatalf("Setup() error = %v, want nil", err)
	}

	done := LogDuration(GetLogger("test"), "generate")
	done()

	if !strings.Contains(buf.String(), `"operation":"generate"`) {
		t.Errorf("output = %s, want operation field", buf.String())
	}
}
