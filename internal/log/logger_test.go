package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		ok       bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"Warn", LevelWarn, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"fatal", LevelFatal, true},
		{"trace", LevelInfo, false}, // Unknown falls back to Info
		{"", LevelInfo, false},
	}

	for _, tt := range tests {
		level, ok := ParseLevel(tt.input)
		if level != tt.expected || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)",
				tt.input, level, ok, tt.expected, tt.ok)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	prev := GetLevel()
	defer SetLevel(prev)

	SetLevel(LevelWarn)

	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("shown %d", 3)
	Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Messages below level leaked into output: %q", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "[ERROR]") {
		t.Errorf("Messages at or above level missing from output: %q", out)
	}
}

func TestLevelString(t *testing.T) {
	if LevelDebug.String() != "DEBUG" || LogLevel(99).String() != "UNKNOWN" {
		t.Error("LogLevel String mapping is wrong")
	}
}
