package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_CLIWritesToStderr(t *testing.T) {
	var buf bytes.Buffer
	l, closeFn, err := New(Options{Mode: ModeCLI, Level: "debug", Stderr: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closeFn()
	l.Debug().Str("visit", "42").Msg("cancel request")
	if !strings.Contains(buf.String(), "cancel request") {
		t.Fatalf("expected console output, got %q", buf.String())
	}
}

func TestNew_TUIWithoutFileIsSilent(t *testing.T) {
	l, _, err := New(Options{Mode: ModeTUI})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.GetLevel() != zerolog.Disabled {
		t.Fatalf("expected disabled logger, got %v", l.GetLevel())
	}
}

func TestNew_FileReceivesJSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "medapp.log")
	l, closeFn, err := New(Options{Mode: ModeTUI, Level: "info", File: p})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info().Str("patient", "7").Msg("patient page loaded")
	l.Debug().Msg("hidden")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := string(b)
	if !strings.Contains(got, `"patient":"7"`) || strings.Contains(got, "hidden") {
		t.Fatalf("unexpected log file content: %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel(""); err != nil || lvl != zerolog.InfoLevel {
		t.Fatalf("empty => info, got %v %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error")
	}
}
