package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseKeepsDefaults(t *testing.T) {
	opts, err := Parse([]byte("max_drain_turns: 10\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if opts.MaxDrainTurns != 10 {
		t.Errorf("MaxDrainTurns = %d, want 10", opts.MaxDrainTurns)
	}
	if opts.MaxChainDepth != Default().MaxChainDepth {
		t.Errorf("MaxChainDepth = %d, want default %d", opts.MaxChainDepth, Default().MaxChainDepth)
	}
	if !opts.ReportUnhandledRejections {
		t.Errorf("expected ReportUnhandledRejections to keep its default")
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero depth", "max_chain_depth: 0"},
		{"negative turns", "max_drain_turns: -1"},
		{"unknown level", "log_level: chatty"},
		{"not yaml", "max_chain_depth: [1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Errorf("expected error for %q", tt.yaml)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsrt.yaml")
	content := "max_chain_depth: 64\nlog_level: debug\nreport_unhandled_rejections: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.MaxChainDepth != 64 || opts.LogLevel != "debug" || opts.ReportUnhandledRejections {
		t.Errorf("unexpected options %+v", opts)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	opts := Default()
	opts.LogLevel = "error"
	log := opts.Logger(&buf)
	log.Warn("hidden")
	log.Error("shown", "key", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("warn record should be filtered at error level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=1") {
		t.Errorf("missing error record: %q", out)
	}
}
