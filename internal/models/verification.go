package models

import "time"

// EmailVerification is the single-use ledger entry behind a verification
// token. Used flips false to true exactly once; expired rows are never
// accepted.
type EmailVerification struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`                 // Owning user.
	Email  string `gorm:"type:text;not null"`             // Address the token was mailed to.
	Token  string `gorm:"type:text;not null;uniqueIndex"` // Opaque single-use token.

	Used       bool       `gorm:"not null;default:false"` // Whether the token was consumed.
	VerifiedAt *time.Time // When the token was consumed.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Issue timestamp.
	ExpiresAt time.Time `gorm:"not null;index"`          // Tokens live 24 hours.
}
