package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

// localStore writes objects under a base directory; useful for development
// and tests where no bucket is available.
type localStore struct {
	log     *logger.Logger
	baseDir string
	baseURL string
}

func NewLocalStore(log *logger.Logger, baseDir, baseURL string) (ObjectStore, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("local store base dir is empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create local store dir: %w", err)
	}
	return &localStore{
		log:     log.With("store", "LocalStore"),
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *localStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write object %q: %w", key, err)
	}
	return s.PublicURL(key), nil
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

func (s *localStore) PublicURL(key string) string {
	if s.baseURL == "" {
		return filepath.Join(s.baseDir, filepath.FromSlash(key))
	}
	return s.baseURL + "/" + key
}
