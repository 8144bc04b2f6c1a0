// Package storage keeps uploaded NGO images in a local directory that is
// published under a public base URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore writes images under basePath. The URL of a stored image is
// publicURL joined with its key, so basePath must be what publicURL serves.
type FileStore struct {
	basePath  string
	publicURL *url.URL
}

// NewFileStore initializes a FileStore rooted at basePath. publicURL must
// be an absolute https URL.
func NewFileStore(basePath, publicURL string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	u, err := url.Parse(strings.TrimSpace(publicURL))
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("storage: public url %q must be an absolute https url", publicURL)
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath, publicURL: u}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Upload stores data under a fresh key derived from name and returns the
// image's public URL.
func (s *FileStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("Image upload failed: empty image")
	}
	key := "ngo-images/" + uuid.NewString() + strings.ToLower(filepath.Ext(sanitizeName(name)))
	stored, err := s.Write(ctx, key, data)
	if err != nil {
		return "", fmt.Errorf("Image upload failed: %w", err)
	}
	u := *s.publicURL
	u.Path = path.Join("/", u.Path, stored)
	return u.String(), nil
}

// Write persists data at the relative key and returns the cleaned key.
// Keys are cleaned to prevent directory traversal.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

func sanitizeName(name string) string {
	return filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimLeft(key, "/")
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
