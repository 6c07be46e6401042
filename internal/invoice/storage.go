package invoice

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Storage stores invoice documents and their previews
type Storage interface {
	// Save writes data under name and returns the stored name
	Save(name string, data []byte) (string, error)

	// Get reads a stored file
	Get(name string) ([]byte, error)

	// Delete removes a stored file
	Delete(name string) error
}

// LocalStorage implements Storage on a local directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the directory if needed and returns a LocalStorage rooted there
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// resolve maps a stored name to a path inside basePath
func (l *LocalStorage) resolve(name string) (string, error) {
	clean := filepath.Base(filepath.Clean(name))
	if clean != name || clean == "." || clean == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid file name %q: %w", name, ErrInvalidInput)
	}
	return filepath.Join(l.basePath, clean), nil
}

// Save writes a file to local storage
func (l *LocalStorage) Save(name string, data []byte) (string, error) {
	path, err := l.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return name, nil
}

// Get reads a file from local storage
func (l *LocalStorage) Get(name string) ([]byte, error) {
	path, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Delete removes a file from local storage
func (l *LocalStorage) Delete(name string) error {
	path, err := l.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file %s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
