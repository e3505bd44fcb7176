package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("key not found")

// ErrUnknownDriver is returned by Open for an unsupported driver.
var ErrUnknownDriver = errors.New("unknown store driver")

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store is a key/value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Open returns the store for driver. dsn is a directory for the file
// driver and a data source name for the SQL drivers.
func Open(driver, dsn string) (Store, error) {
	switch strings.ToLower(driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return NewFile(afero.NewOsFs(), dsn)
	case DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}

		return openGorm(sqlite.Open(dsn))
	case DriverPostgres:
		return openGorm(postgres.Open(dsn))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func openGorm(dialector gorm.Dialector) (Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	return NewGorm(db)
}

// ensureDir creates the parent directory of a sqlite database file.
func ensureDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, ":memory:") {
		return nil
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}

	return nil
}
