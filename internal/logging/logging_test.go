package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.WarnLevel},
		{"loud", log.WarnLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	if got := ParseFormatter("json"); got != log.JSONFormatter {
		t.Errorf("json: got %v", got)
	}
	if got := ParseFormatter("logfmt"); got != log.LogfmtFormatter {
		t.Errorf("logfmt: got %v", got)
	}
	if got := ParseFormatter("whatever"); got != log.TextFormatter {
		t.Errorf("default: got %v", got)
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "text")

	logger.Debug("hidden")
	logger.Info("shown", "id", 7)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line leaked: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, Prefix) || !strings.Contains(out, "id=7") {
		t.Errorf("info line missing fields: %q", out)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug", "json").Warn("careful")

	if !strings.Contains(buf.String(), `"msg":"careful"`) {
		t.Errorf("json output: %q", buf.String())
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tada.log")
	logger, closer, err := OpenFile(path, "warn", "logfmt")
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	logger.Warn("written to disk")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "written to disk") {
		t.Errorf("log file: %q", data)
	}
}

func TestOpenFileEmptyPathDiscards(t *testing.T) {
	logger, closer, err := OpenFile("", "debug", "text")
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	logger.Error("nowhere")
	if closer != NopCloser {
		t.Errorf("closer: got %T, want NopCloser", closer)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
