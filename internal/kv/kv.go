// Package kv is the device-local key/value storage used for identities and
// shelves. Values are opaque bytes; GetJSON and SetJSON cover the common case.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// Store is a synchronous key/value store.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendBadger = "badger"
	BackendDir    = "dir"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Open returns the store for backend rooted at path. If the medium cannot be
// opened the error is logged and a Nop store is returned, so callers always
// get something usable.
func Open(backend, path string, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		s   Store
		err error
	)
	switch backend {
	case BackendBadger, "":
		s, err = OpenBadger(path)
	case BackendDir:
		s, err = OpenDir(path)
	case BackendMemory:
		return NewMemory()
	case BackendNone:
		return Nop{}
	default:
		err = fmt.Errorf("unknown storage backend %q", backend)
	}
	if err != nil {
		logger.Warn("storage unavailable, running without persistence",
			zap.String("backend", backend),
			zap.String("path", path),
			zap.Error(err))
		return Nop{}
	}
	logger.Debug("storage opened", zap.String("backend", backend), zap.String("path", path))
	return s
}

// GetJSON decodes the value at key into dest. It returns ErrNotFound when
// the key is absent, and a decode error when the stored bytes are malformed.
func GetJSON(s Store, key string, dest any) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes value and stores it at key.
func SetJSON(s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, data)
}

func ensureDir(path string) error {
	if path == "" {
		return errors.New("storage path is empty")
	}
	return os.MkdirAll(path, 0700)
}
