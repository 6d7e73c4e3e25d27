package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Well-known keys. Nothing else is ever persisted. KeyKDFSalt is written
// only when encryption is enabled.
const (
	KeyToken   = "token"
	KeyLocale  = "locale"
	KeyKDFSalt = "kdf_salt"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("storage closed")
)

// KV is a minimal durable key-value store.
//
// Implementations must be safe for concurrent use. Remove of a missing key
// is not an error.
type KV interface {
	// Get returns the value stored under key or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. It is idempotent.
	Remove(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Config selects and configures a backend.
type Config struct {
	// Backend is one of "file" (default), "badger" or "memory".
	Backend string

	// Path is the JSON file (file backend) or the database directory
	// (badger backend).
	Path string

	// Passphrase enables at-rest encryption when non-empty.
	Passphrase string
}

// DefaultDir returns ~/.unionhub.
func DefaultDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".unionhub")
}

// Open creates the configured backend, wrapping it with encryption when a
// passphrase is set.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (KV, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		kv  KV
		err error
	)
	switch cfg.Backend {
	case "", BackendFile:
		path := cfg.Path
		if path == "" {
			path = filepath.Join(DefaultDir(), "state.json")
		}
		kv, err = NewFileKV(path)
	case BackendBadger:
		dir := cfg.Path
		if dir == "" {
			dir = filepath.Join(DefaultDir(), "data")
		}
		kv, err = NewBadgerKV(dir, logger)
	case BackendMemory:
		kv = NewMemoryKV()
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Passphrase != "" {
		enc, err := NewEncryptedKV(ctx, kv, cfg.Passphrase)
		if err != nil {
			kv.Close()
			return nil, err
		}
		return enc, nil
	}
	return kv, nil
}
