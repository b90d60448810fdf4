package internal

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(LogLevelInfo, &buf).With("scoring")

	logger.Debug("hidden %d", 1)
	logger.Info("bonus round %s %d %d", "abc", 7, 100)
	logger.Error("failed")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered: %q", out)
	}
	if !strings.Contains(out, "[INFO] [scoring] bonus round abc 7 100") {
		t.Errorf("missing info line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] [scoring] failed") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"ERROR": LogLevelError,
		"warn":  LogLevelWarn,
		"Debug": LogLevelDebug,
		"TRACE": LogLevelTrace,
		"":      LogLevelInfo,
		"bogus": LogLevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if LogLevelDebug.String() != "DEBUG" {
		t.Errorf("String() = %s", LogLevelDebug.String())
	}
}
