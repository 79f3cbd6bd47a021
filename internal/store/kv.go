// Package store provides the durable key-value medium and the settings store built on it.
package store

import (
	"fmt"
	"path/filepath"

	"github.com/diogo/companion/internal/config"
)

// KV is a durable string key-value medium
type KV interface {
	// Get returns the value and whether the key exists
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Open creates the KV backend selected by the configuration. dataDir is used when the
// storage path is not set.
func Open(cfg config.StorageConfig, dataDir string) (KV, error) {
	switch cfg.Backend {
	case config.StorageFile, "":
		dir := cfg.Path
		if dir == "" {
			dir = filepath.Join(dataDir, "store")
		}
		return NewFileKV(dir)
	case config.StorageSQLite:
		path := cfg.Path
		if path == "" {
			path = filepath.Join(dataDir, "companion.db")
		}
		return NewSQLiteKV(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
