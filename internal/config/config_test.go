package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.File != "" {
		t.Errorf("File = %q, want empty when the default file is absent", c.File)
	}
	if c.Storage.Backend != "file" {
		t.Errorf("Storage.Backend = %q, want file", c.Storage.Backend)
	}
	if c.Storage.Key != "folders" {
		t.Errorf("Storage.Key = %q, want folders", c.Storage.Key)
	}
	if c.Queue.Capacity != 100 {
		t.Errorf("Queue.Capacity = %d, want 100", c.Queue.Capacity)
	}
	if c.Queue.WriteTimeout != 10*time.Second {
		t.Errorf("Queue.WriteTimeout = %s, want 10s", c.Queue.WriteTimeout)
	}
	if c.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", c.Log.Level)
	}
	if c.Notes.DateLayout != "1/2/2006" {
		t.Errorf("Notes.DateLayout = %q, want 1/2/2006", c.Notes.DateLayout)
	}

	loc, err := c.StorageLocation()
	if err != nil {
		t.Fatalf("StorageLocation() error = %v", err)
	}
	if want := filepath.Join(home, ".local", "share", "notebox"); loc != want {
		t.Errorf("StorageLocation() = %q, want %q", loc, want)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: sqlite
  path: /tmp/notebox-data
  key: notes
queue:
  capacity: 5
  write-timeout: 2s
log:
  level: debug
  production: true
notes:
  date-layout: "2006-01-02"
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.File != path {
		t.Errorf("File = %q, want %q", c.File, path)
	}
	if c.Storage.Backend != "sqlite" || c.Storage.Key != "notes" {
		t.Errorf("Storage = %+v", c.Storage)
	}
	if c.Queue.Capacity != 5 || c.Queue.WriteTimeout != 2*time.Second {
		t.Errorf("Queue = %+v", c.Queue)
	}
	if c.Log.Level != "debug" || !c.Log.Production {
		t.Errorf("Log = %+v", c.Log)
	}
	if c.Notes.DateLayout != "2006-01-02" {
		t.Errorf("Notes.DateLayout = %q", c.Notes.DateLayout)
	}

	loc, err := c.StorageLocation()
	if err != nil {
		t.Fatalf("StorageLocation() error = %v", err)
	}
	if loc != "/tmp/notebox-data/notebox.db" {
		t.Errorf("StorageLocation() = %q, want /tmp/notebox-data/notebox.db", loc)
	}

	qc := c.WriteQueueConfig()
	if qc.Capacity != 5 || qc.WriteTimeout != 2*time.Second {
		t.Errorf("WriteQueueConfig() = %+v", qc)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: sqlite
log:
  level: debug
`)
	t.Setenv("NOTEBOX_STORAGE_BACKEND", "memory")
	t.Setenv("NOTEBOX_QUEUE_CAPACITY", "7")
	t.Setenv("NOTEBOX_QUEUE_WRITE_TIMEOUT", "250ms")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Storage.Backend != "memory" {
		t.Errorf("Storage.Backend = %q, want memory", c.Storage.Backend)
	}
	if c.Queue.Capacity != 7 {
		t.Errorf("Queue.Capacity = %d, want 7", c.Queue.Capacity)
	}
	if c.Queue.WriteTimeout != 250*time.Millisecond {
		t.Errorf("Queue.WriteTimeout = %s, want 250ms", c.Queue.WriteTimeout)
	}
	if c.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug from file", c.Log.Level)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown backend", content: "storage:\n  backend: redis\n"},
		{name: "invalid key", content: "storage:\n  key: ../folders\n"},
		{name: "negative capacity", content: "queue:\n  capacity: -1\n"},
		{name: "bad level", content: "log:\n  level: loud\n"},
		{name: "bad yaml", content: "storage: [\n"},
		{name: "watch sqlite", content: "storage:\n  backend: sqlite\n  watch: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Errorf("Load() error = nil, want error")
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of missing explicit file error = nil, want error")
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tests := []struct {
		in   string
		want string
	}{
		{"~", "/home/tester"},
		{"~/notes", "/home/tester/notes"},
		{"/abs/path", "/abs/path"},
		{"rel/~/path", "rel/~/path"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandHome(tt.in)
			if err != nil {
				t.Fatalf("ExpandHome(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
