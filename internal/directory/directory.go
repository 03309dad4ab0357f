// Package directory is the persistent store of user identity records.
// It owns the users table; the unique indexes on email and username are
// the storage-level backstop for the pipelines' uniqueness pre-checks.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("directory: user not found")

// Directory provides lookups and atomic mutations over user records.
type Directory struct {
	db *gorm.DB
}

// New constructs a Directory backed by GORM.
func New(db *gorm.DB) *Directory { return &Directory{db: db} }

// NormalizeEmail lowercases and trims an email for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ByEmail returns the user with the given email.
func (d *Directory) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	errFind := d.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("directory: lookup by email: %w", errFind)
	}
	return &user, nil
}

// ByUsername returns the user with the given username.
func (d *Directory) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	errFind := d.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("directory: lookup by username: %w", errFind)
	}
	return &user, nil
}

// ByID returns the user with the given primary key.
func (d *Directory) ByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	errFind := d.db.WithContext(ctx).First(&user, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("directory: lookup by id: %w", errFind)
	}
	return &user, nil
}

// ByRegisteredIP returns the first user whose registered IP equals ip,
// or ErrNotFound when the IP is unclaimed.
func (d *Directory) ByRegisteredIP(ctx context.Context, ip string) (*models.User, error) {
	var user models.User
	errFind := d.db.WithContext(ctx).Where("registered_ip = ?", strings.TrimSpace(ip)).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("directory: lookup by ip: %w", errFind)
	}
	return &user, nil
}

// OtherUserHoldsIP reports whether any user besides userID has ip as
// their registered IP.
func (d *Directory) OtherUserHoldsIP(ctx context.Context, ip string, userID uint64) (bool, error) {
	var count int64
	errCount := d.db.WithContext(ctx).Model(&models.User{}).
		Where("registered_ip = ? AND id <> ?", strings.TrimSpace(ip), userID).
		Count(&count).Error
	if errCount != nil {
		return false, fmt.Errorf("directory: count by ip: %w", errCount)
	}
	return count > 0, nil
}

// Create inserts the user, normalizing the email. A duplicate email or
// username surfaces as the dialect's unique-violation error.
func (d *Directory) Create(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	user.Username = strings.TrimSpace(user.Username)
	if errCreate := d.db.WithContext(ctx).Create(user).Error; errCreate != nil {
		return fmt.Errorf("directory: create user: %w", errCreate)
	}
	return nil
}

// RecordLogin stamps the last-login time, moving the registered IP when
// it changed.
func (d *Directory) RecordLogin(ctx context.Context, userID uint64, ip string, at time.Time) error {
	updates := map[string]any{
		"last_login_at": at,
		"registered_ip": strings.TrimSpace(ip),
		"updated_at":    at,
	}
	res := d.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("directory: record login: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkVerified flips the verified flag and clears the pending token fields.
func (d *Directory) MarkVerified(ctx context.Context, userID uint64, at time.Time) error {
	res := d.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"verified":            true,
		"verification_token":  nil,
		"verification_expiry": nil,
		"updated_at":          at,
	})
	if res.Error != nil {
		return fmt.Errorf("directory: mark verified: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVerificationToken installs a fresh pending token on the user record.
func (d *Directory) SetVerificationToken(ctx context.Context, userID uint64, token string, expiry, at time.Time) error {
	res := d.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"verification_token":  token,
		"verification_expiry": expiry,
		"updated_at":          at,
	})
	if res.Error != nil {
		return fmt.Errorf("directory: set verification token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
