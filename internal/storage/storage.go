// Package storage is the object-storage side of the photo manager: opaque
// blobs keyed by name, addressed publicly through a base URL.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PhotoStore stores photo blobs keyed by object name and resolves each key to
// a publicly addressable URL.
type PhotoStore interface {
	Save(key string, r io.Reader) error
	Delete(key string) error
	URL(key string) string
}

// LocalStore keeps blobs on the local filesystem under BaseDir and serves
// them from BaseURL (the router exposes BaseDir at /photos).
type LocalStore struct {
	baseDir string
	baseURL string
}

func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	if baseDir == "" {
		return nil, errors.New("photo directory is required")
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}

	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *LocalStore) Save(key string, r io.Reader) error {
	if err := validKey(key); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(s.baseDir, key))

	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}

	return f.Close()
}

func (s *LocalStore) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.baseDir, key))

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}

func (s *LocalStore) URL(key string) string {
	return s.baseURL + "/photos/" + key
}

// Keys are generated uuids, never user input, but refuse separators anyway so
// a bad key can never escape the base directory.
func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}
