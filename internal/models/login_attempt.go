package models

import "time"

// LoginAttempt is an append-only audit row written for every login
// attempt that reaches credential evaluation, successful or not.
type LoginAttempt struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email     string `gorm:"type:text;not null;index"` // Email the caller tried.
	IP        string `gorm:"type:text;not null;index"` // Client IP.
	UserAgent string `gorm:"type:text"`                // Client user agent.

	Success bool `gorm:"not null"`               // Whether the attempt produced a session.
	VPNFlag bool `gorm:"not null;default:false"` // VPN verdict for the IP at attempt time.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Attempt timestamp.
}
