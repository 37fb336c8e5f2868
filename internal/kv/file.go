package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File stores each key as a JSON file inside a directory.
type File struct {
	dir string
}

// NewFile creates a file-backed storage rooted at dir. The directory is
// created on first write.
func NewFile(dir string) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	return &File{dir: absPath}, nil
}

// ResolvePath maps a key to its file inside the storage directory.
func (s *File) ResolvePath(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.dir, key+".json")
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", err
	}

	// Security check: ensure path is within the storage directory
	relPath, err := filepath.Rel(s.dir, absPath)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(relPath, "..") || strings.ContainsRune(relPath, filepath.Separator) {
		return "", fmt.Errorf("%w: path traversal not allowed: %s", ErrInvalidKey, key)
	}

	return absPath, nil
}

// Get reads the value stored under key.
func (s *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.ResolvePath(key)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("permission denied: %s", fullPath)
		}
		return nil, fmt.Errorf("failed to read file: %s - %w", fullPath, err)
	}
	return content, nil
}

// Set writes value under key. The file is replaced atomically so a reader
// never sees a partial document.
func (s *File) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.ResolvePath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %s - %w", fullPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync file: %s - %w", fullPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %s - %w", fullPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to chmod file: %s - %w", fullPath, err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		return fmt.Errorf("failed to replace file: %s - %w", fullPath, err)
	}
	return nil
}

// Close is a no-op for file storage.
func (s *File) Close() error {
	return nil
}

// Dir returns the storage directory.
func (s *File) Dir() string {
	return s.dir
}
