// Package storage provides the blob store the pipelines read transcripts from
// and write audio and transcript artifacts to.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("file not found")

// Local stores blobs as plain files under a root directory.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{root: root}, nil
}

// SaveFile writes data under name and returns the stored path.
func (l *Local) SaveFile(name string, data []byte) (string, error) {
	path := filepath.Join(l.root, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}

func (l *Local) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- paths come from our own records, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	return data, nil
}

// DeleteFile removes the blob; a missing file counts as deleted.
func (l *Local) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// FileExists returns the stored path for name, or "" when absent.
func (l *Local) FileExists(name string) string {
	path := filepath.Join(l.root, filepath.Base(name))
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
