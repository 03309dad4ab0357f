package models

import (
	"time"

	"gorm.io/datatypes"
)

// IPTracking records which IP a user registered from together with the
// reputation flags and geo data observed at that moment.
type IPTracking struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`           // Owning user.
	IP     string `gorm:"type:text;not null;index"` // Registration IP.

	IsVPN   bool `gorm:"not null;default:false"` // VPN verdict at registration.
	IsProxy bool `gorm:"not null;default:false"` // Proxy verdict at registration.

	Geo datatypes.JSON `gorm:"type:json"` // Country/region/city snapshot, if resolved.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Row timestamp.
}
