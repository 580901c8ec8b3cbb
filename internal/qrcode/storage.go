package qrcode

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage archives generated QR images
type Storage interface {
	// Save writes the image under filename and returns the stored path
	Save(filename string, data []byte) (string, error)

	// Get reads a previously archived image
	Get(path string) ([]byte, error)
}

// LocalStorage archives images in a directory on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the archive directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save writes an image into the archive, replacing any file of the same name
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	name := filepath.Base(filename)
	if err := os.WriteFile(filepath.Join(l.basePath, name), data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return name, nil
}

// Get reads an archived image
func (l *LocalStorage) Get(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.basePath, filepath.Base(path)))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}
