package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Store is a snapshot store that can be closed.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}

// Open returns the store for driver. For SQLite the parent directory of
// path is created if needed.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite, "":
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s (supported: %s, %s)", driver, DriverSQLite, DriverMemory)
	}
}
