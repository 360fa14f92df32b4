// Package sqlite registers the SQLite dialector with the audit store.
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tigerroll/stockpost/internal/store"
)

func init() {
	store.RegisterDialector("sqlite", func(cfg store.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		// The SQLite dialector takes the file path (or :memory:) directly.
		return sqlite.Open(cfg.Database), nil
	})
}
