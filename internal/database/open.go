package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-site-api/internal/models"
)

// Open connects to the SQL backend used for the audit and error logs and migrates
// its tables. The json driver needs no connection and returns nil.
func Open(driver, dsn string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch driver {
	case "", "json":
		return nil, nil
	case "sqlite":
		db, err = ConnectSQLite(dsn)
	case "postgres":
		db, err = ConnectPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.AuditRecord{}, &models.ErrorLogEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
