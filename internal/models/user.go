package models

import "time"

// User represents a player account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique email, stored lowercased.
	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	DateOfBirth string `gorm:"type:text;not null"` // Birth date as MM/DD/YYYY.

	RegisteredIP string `gorm:"type:text;not null;index"` // IP used at creation, moved on clean logins.
	UserAgent    string `gorm:"type:text"`                // User agent seen at creation.

	Active   bool `gorm:"not null;default:true"`  // Whether the account can sign in.
	Verified bool `gorm:"not null;default:false"` // Whether the email was verified.

	VerificationToken  *string    `gorm:"type:text;index"` // Pending verification token, nil once verified.
	VerificationExpiry *time.Time // Expiry of the pending verification token.

	LastLoginAt *time.Time // Last successful login.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
