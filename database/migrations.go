package database

import (
	"log/slog"

	"odontologia/models"

	"gorm.io/gorm"
)

// RunMigrations creates the tables of the SQL document store and of the
// local identity provider.
func RunMigrations(db *gorm.DB) error {
	slog.Info("running database migrations")

	err := db.AutoMigrate(
		&models.SiteDocument{},
		&models.AdminUser{},
	)

	if err != nil {
		slog.Error("error running migrations", "error", err)
		return err
	}

	slog.Info("migrations completed successfully")
	return nil
}
