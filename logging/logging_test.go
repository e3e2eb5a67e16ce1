package logging

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func formatEntry(t *testing.T, f *SymbolFormatter, level logrus.Level, msg string) string {
	t.Helper()
	out, err := f.Format(&logrus.Entry{
		Time:    time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		Level:   level,
		Message: msg,
		Data:    logrus.Fields{},
	})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	return string(out)
}

func TestPlainFormatterHasNoEscapes(t *testing.T) {
	f := &SymbolFormatter{Colors: false}
	line := formatEntry(t, f, logrus.InfoLevel, "payload injected")

	if strings.Contains(line, "\033") {
		t.Errorf("plain output contains ANSI escapes: %q", line)
	}
	for _, want := range []string{"2026-08-26 12:00:00", "[+]", "payload injected"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestLevelSymbols(t *testing.T) {
	f := &SymbolFormatter{}
	tests := []struct {
		level  logrus.Level
		symbol string
	}{
		{logrus.ErrorLevel, "[!]"},
		{logrus.WarnLevel, "[~]"},
		{logrus.InfoLevel, "[+]"},
		{logrus.DebugLevel, "[*]"},
	}
	for _, tt := range tests {
		line := formatEntry(t, f, tt.level, "x")
		if !strings.Contains(line, tt.symbol) {
			t.Errorf("%s line %q missing symbol %s", tt.level, line, tt.symbol)
		}
	}
}

func TestFieldsRendered(t *testing.T) {
	f := &SymbolFormatter{}
	out, err := f.Format(&logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "injecting",
		Data:    logrus.Fields{"pid": 1234},
	})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(string(out), "pid=1234") {
		t.Errorf("fields missing from %q", string(out))
	}
}
