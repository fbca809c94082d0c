package kv

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// Dir is a Store that keeps one file per key under a directory. Writes go to
// a temp file that is renamed into place, so a crash never leaves a torn value.
type Dir struct {
	root string
}

// OpenDir creates root if needed and returns a Dir store.
func OpenDir(root string) (*Dir, error) {
	if err := ensureDir(root); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Dir{root: root}, nil
}

// path escapes key so any string maps to a single file name.
func (d *Dir) path(key string) string {
	return filepath.Join(d.root, url.PathEscape(key)+".json")
}

// Get implements Store.
func (d *Dir) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(d.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set implements Store.
func (d *Dir) Set(key string, value []byte) error {
	destPath := d.path(key)
	tmpPath := destPath + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(value); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Delete implements Store.
func (d *Dir) Delete(key string) error {
	err := os.Remove(d.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close implements Store.
func (d *Dir) Close() error { return nil }
