package db

import (
	"fmt"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/models"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect. The unique
// indexes declared on the models (email, username, verification token,
// reputation IP, one binding per user) are the correctness backstop for
// the pipelines' pre-checks; AutoMigrate creates them on both dialects.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite, DialectPostgres, "":
		if errAutoMigrate := conn.AutoMigrate(
			&models.User{},
			&models.IPReputationRecord{},
			&models.LoginAttempt{},
			&models.IPTracking{},
			&models.MeteredConnectionBinding{},
			&models.EmailVerification{},
			&models.GameProfile{},
		); errAutoMigrate != nil {
			return fmt.Errorf("db: migrate: %w", errAutoMigrate)
		}
		return nil
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}
}
