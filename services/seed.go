package services

import (
	"fmt"

	"case_docket_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultAdminUsername is the account seeded on first start
const DefaultAdminUsername = "admin"

// SeedDefaultAdmin creates the "admin" user with password when no user of
// that name exists yet. It reports whether a user was created.
func SeedDefaultAdmin(db *gorm.DB, password string, log *zap.Logger) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", DefaultAdminUsername).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check for admin user: %w", err)
	}

	if count > 0 {
		log.Debug("admin user already exists, skipping seed")
		return false, nil
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return false, err
	}

	user := &models.User{
		Username:     DefaultAdminUsername,
		PasswordHash: hashedPassword,
	}
	if err := db.Create(user).Error; err != nil {
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Warn("default admin user created, change its password immediately", zap.String("user_id", user.ID))
	return true, nil
}
