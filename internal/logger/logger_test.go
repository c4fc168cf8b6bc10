package logger

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	log := New()
	if log.GetLevel() != slog.LevelInfo {
		t.Errorf("expected default level info, got %v", log.GetLevel())
	}

	log.SetLevel(slog.LevelDebug)
	if log.GetLevel() != slog.LevelDebug {
		t.Errorf("expected debug after SetLevel, got %v", log.GetLevel())
	}
}

func TestHTTPLoggingToggle(t *testing.T) {
	log := New()
	if log.IsHTTPLoggingEnabled() {
		t.Error("HTTP logging should be disabled by default")
	}

	log.EnableHTTPLogging()
	if !log.IsHTTPLoggingEnabled() {
		t.Error("HTTP logging should be enabled after EnableHTTPLogging")
	}

	log.DisableHTTPLogging()
	if log.IsHTTPLoggingEnabled() {
		t.Error("HTTP logging should be disabled after DisableHTTPLogging")
	}
}

func TestNewWithFile(t *testing.T) {
	dir := t.TempDir()
	log := NewWithFile(dir+"/pitcrew.log", slog.LevelWarn)

	if log.GetLevel() != slog.LevelWarn {
		t.Errorf("expected warn level, got %v", log.GetLevel())
	}

	// Should not panic when writing
	log.Warn("rotating file logger works", "key", "value")
}
