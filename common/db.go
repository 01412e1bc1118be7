package common

import (
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectDb opens the sqlite database holding admin users and, for the SQL
// store, the site document.
func ConnectDb(dbFile string) *gorm.DB {
	if dbFile == "" {
		slog.Error("sqlite_db not set")
		return nil
	}

	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		slog.Error("error opening sqlite db", "path", dbFile, "error", err)
		return nil
	}
	slog.Info("opened sqlite db", "path", dbFile)
	return db
}

// ConnectAnalyticsDb opens the separate analytics database.
// It returns nil when analytics is not configured.
func ConnectAnalyticsDb(analyticsDbFile string) *gorm.DB {
	if analyticsDbFile == "" {
		slog.Info("analytics_db not set - analytics will be disabled")
		return nil
	}

	db, err := gorm.Open(sqlite.Open(analyticsDbFile), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		slog.Error("error opening analytics sqlite db", "path", analyticsDbFile, "error", err)
		return nil
	}

	slog.Info("opened analytics sqlite db", "path", analyticsDbFile)
	return db
}
