package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

func TestNew_InvalidLevel(t *testing.T) {
	if _, _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("New() with invalid level error = nil, want error")
	}
}

func TestNew_FileProduction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notebox.log")
	logger, cleanup, err := New(Config{Level: "debug", File: path, Production: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("saved note", zap.String(FieldFolder, "ideas"), zap.String(FieldNoteID, "1"))
	cleanup()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	line := strings.TrimSpace(string(content))

	var entry map[string]any
	if err := sonic.UnmarshalString(line, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, line)
	}
	if entry["msg"] != "saved note" {
		t.Errorf("msg = %v, want %q", entry["msg"], "saved note")
	}
	if entry[FieldFolder] != "ideas" {
		t.Errorf("%s = %v, want %q", FieldFolder, entry[FieldFolder], "ideas")
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notebox.log")
	logger, cleanup, err := New(Config{Level: "warn", File: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")
	cleanup()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if strings.Contains(string(content), "hidden") {
		t.Error("info entry written at warn level")
	}
	if !strings.Contains(string(content), "shown") || !strings.Contains(string(content), "WARN") {
		t.Errorf("warn entry missing from console output: %q", content)
	}
}
