package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"case_docket_app_go/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// SessionTokenLength is the length of the session token in bytes (64 chars hex)
	SessionTokenLength = 32
	// DefaultSessionDuration is the default session duration (7 days)
	DefaultSessionDuration = 7 * 24 * time.Hour
)

// dummyHash is compared against when the username does not exist so that
// unknown users and wrong passwords take the same time.
var dummyHash string

func init() {
	hash, err := HashPassword("dummy_password_for_timing_mitigation")
	if err == nil {
		dummyHash = hash
	}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// ValidateRegistration applies the username and password length rules
func ValidateRegistration(username, password string) error {
	usernameLen := utf8.RuneCountInString(username)
	if usernameLen < models.MinUsernameLength || utf8.RuneCountInString(password) < models.MinPasswordLength {
		return newValidationError("username", fmt.Sprintf(
			"Username must be at least %d characters and password at least %d characters",
			models.MinUsernameLength, models.MinPasswordLength))
	}
	if usernameLen > models.MaxUsernameLength {
		return newValidationError("username", fmt.Sprintf("Username must be at most %d characters", models.MaxUsernameLength))
	}
	return nil
}

// Register creates a user with a bcrypt hash of password.
// Usernames are matched exactly (case-sensitive).
func Register(ctx context.Context, db *gorm.DB, username, password string) (*models.User, error) {
	if err := ValidateRegistration(username, password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	user := &models.User{Username: username, PasswordHash: hash}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return newValidationError("username", "Username already exists")
		}
		if err := tx.Create(user).Error; err != nil {
			// a concurrent registration won the race between Count and Create
			if isUniqueViolation(err) {
				return newValidationError("username", "Username already exists")
			}
			return err
		}
		return LogAuditEvent(tx, AuditContextFrom(ctx), models.AuditActionRegister,
			"User", user.ID, user.Username, "User registered", nil, nil)
	})
	if err != nil {
		if IsValidationError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to register user: %v", ErrStorage, err)
	}

	return user, nil
}

// isUniqueViolation recognizes a unique index failure. The libSQL driver does
// not go through gorm's error translation, so its message is matched too.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Authenticate checks a username and password pair.
// Every failure yields ErrInvalidCredentials, whether or not the user exists.
func Authenticate(ctx context.Context, db *gorm.DB, username, password string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: failed to look up user: %v", ErrStorage, err)
		}
		VerifyPassword(dummyHash, password)
		return nil, ErrInvalidCredentials
	}

	if !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to record login: %v", ErrStorage, err)
	}

	return &user, nil
}

// GenerateSessionToken generates a cryptographically secure random token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// CreateSession creates a new session for a user
func CreateSession(db *gorm.DB, userID, ipAddress, userAgent string) (*models.Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(DefaultSessionDuration),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if err := db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// ValidateSession validates a session token and returns the session if valid.
// An expired session is removed on sight.
func ValidateSession(db *gorm.DB, token string) (*models.Session, error) {
	var session models.Session

	err := db.Preload("User").
		Where("token = ?", token).
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session not found")
		}
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	if session.IsExpired() {
		if err := db.Delete(&session).Error; err != nil {
			return nil, fmt.Errorf("%w: failed to remove it: %w", ErrSessionExpired, err)
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// DeleteSession deletes a session (logout)
func DeleteSession(db *gorm.DB, token string) error {
	result := db.Where("token = ?", token).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}
	return nil
}

// CleanupExpiredSessions removes all expired sessions and returns how many were removed
func CleanupExpiredSessions(db *gorm.DB) (int64, error) {
	result := db.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
