package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestStorage_Backends(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T) Storage
	}{
		{
			name: "file",
			open: func(t *testing.T) Storage {
				s, err := Open(BackendFile, t.TempDir())
				if err != nil {
					t.Fatalf("Open(file) error = %v", err)
				}
				return s
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) Storage {
				s, err := Open(BackendSQLite, filepath.Join(t.TempDir(), "notes.db"))
				if err != nil {
					t.Fatalf("Open(sqlite) error = %v", err)
				}
				return s
			},
		},
		{
			name: "memory",
			open: func(t *testing.T) Storage {
				s, err := Open(BackendMemory, "")
				if err != nil {
					t.Fatalf("Open(memory) error = %v", err)
				}
				return s
			},
		},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)
			defer s.Close()

			t.Run("missing key", func(t *testing.T) {
				_, err := s.Get(ctx, "folders")
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Get() error = %v, want ErrNotFound", err)
				}
			})

			t.Run("set then get", func(t *testing.T) {
				if err := s.Set(ctx, "folders", []byte(`{"ideas":[]}`)); err != nil {
					t.Fatalf("Set() error = %v", err)
				}
				got, err := s.Get(ctx, "folders")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if string(got) != `{"ideas":[]}` {
					t.Errorf("Get() = %s, want {\"ideas\":[]}", got)
				}
			})

			t.Run("last write wins", func(t *testing.T) {
				for _, v := range []string{`{"a":[]}`, `{"b":[]}`, `{"c":[]}`} {
					if err := s.Set(ctx, "folders", []byte(v)); err != nil {
						t.Fatalf("Set() error = %v", err)
					}
				}
				got, err := s.Get(ctx, "folders")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if string(got) != `{"c":[]}` {
					t.Errorf("Get() = %s, want {\"c\":[]}", got)
				}
			})

			t.Run("keys are independent", func(t *testing.T) {
				if err := s.Set(ctx, "other", []byte("x")); err != nil {
					t.Fatalf("Set() error = %v", err)
				}
				got, err := s.Get(ctx, "folders")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if string(got) == "x" {
					t.Error("writing one key overwrote another")
				}
			})

			t.Run("invalid key", func(t *testing.T) {
				if err := s.Set(ctx, "../x", []byte("{}")); !errors.Is(err, ErrInvalidKey) {
					t.Errorf("Set() error = %v, want ErrInvalidKey", err)
				}
			})
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open("redis", "localhost"); err == nil {
		t.Error("Open(redis) error = nil, want error")
	}
}

func TestMemory_FailWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("disk full")

	m.FailWrites(boom)
	if err := m.Set(ctx, "folders", []byte("{}")); !errors.Is(err, boom) {
		t.Fatalf("Set() error = %v, want %v", err, boom)
	}

	m.FailWrites(nil)
	if err := m.Set(ctx, "folders", []byte("{}")); err != nil {
		t.Fatalf("Set() error = %v after restoring writes", err)
	}
}
