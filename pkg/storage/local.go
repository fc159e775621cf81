package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage keeps uploads on disk; the API serves them under PublicPath.
type LocalStorage struct {
	root   string
	prefix string
}

type LocalConfig struct {
	BasePath   string `mapstructure:"base_path"`
	PublicPath string `mapstructure:"public_path"` // URL prefix, e.g. "/uploads"
}

func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	root, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	prefix := strings.Trim(cfg.PublicPath, "/")
	if prefix == "" {
		prefix = "uploads"
	}
	return &LocalStorage{root: root, prefix: "/" + prefix}, nil
}

// cleanKey normalises key to a relative slash path confined to the store.
func cleanKey(key string) (string, error) {
	k := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(key)), "/")
	if k == "" || k == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return k, nil
}

func (s *LocalStorage) file(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

// Put writes to a temp file in the target directory and renames it into
// place, so readers never observe a partial upload.
func (s *LocalStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	dst, err := s.file(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	_, err = io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), dst)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) Remove(_ context.Context, key string) error {
	f, err := s.file(key)
	if err != nil {
		return err
	}
	if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return s.prefix + "/" + k, nil
}

// BasePath is the directory uploads are written to.
func (s *LocalStorage) BasePath() string { return s.root }

// PublicPath is the URL prefix uploads are served under.
func (s *LocalStorage) PublicPath() string { return s.prefix }
