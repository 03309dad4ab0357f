package models

import "time"

// GameProfile holds the starter game state created after registration.
// The auth pipeline only creates it best-effort; gameplay handlers own it
// from then on.
type GameProfile struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex"` // Owning user.

	Cash   int64 `gorm:"not null;default:500"` // Starting cash on hand.
	Health int   `gorm:"not null;default:100"` // Starting health.
	Level  int   `gorm:"not null;default:1"`   // Starting level.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
