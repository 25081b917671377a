package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
)

// LocalStorage persists drafts as JSON files under a base directory, one file per key.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./drafts"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create drafts directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Load returns the stored bytes for key or ErrDraftNotFound.
func (s *LocalStorage) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, appErrors.ErrDraftNotFound
		}
		return nil, fmt.Errorf("read draft file: %w", err)
	}
	return data, nil
}

// Save writes data for key. The write goes through a temp file and rename so a
// crash never leaves a half-written draft behind.
func (s *LocalStorage) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(key)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".draft-*")
	if err != nil {
		return fmt.Errorf("create draft temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("write draft file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("close draft file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("commit draft file: %w", err)
	}
	return nil
}

// Delete removes a stored draft if present.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.Path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete draft file: %w", err)
	}
	return nil
}

// Path exposes the file backing key (useful for debugging).
func (s *LocalStorage) Path(key string) string {
	return filepath.Join(s.baseDir, fileName(key))
}

// fileName flattens a storage key into a single safe path segment.
func fileName(key string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	name := replacer.Replace(key)
	if name == "" {
		name = "_"
	}
	return name + ".json"
}
