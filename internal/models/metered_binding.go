package models

import "time"

// MeteredConnectionBinding pins a user to the single mobile/hotspot IP
// they first authenticated from. The unique index on UserID is the
// storage-level backstop for the one-active-binding invariant; superseded
// bindings are rewritten in place rather than inserted alongside.
type MeteredConnectionBinding struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex"`     // Bound user.
	IP     string `gorm:"type:text;not null;index"` // Bound IP.

	ConnectionType string `gorm:"type:text"`             // Label from the reputation provider, e.g. "mobile".
	Active         bool   `gorm:"not null;default:true"` // Whether the binding is enforced.

	FirstUsedAt time.Time `gorm:"not null"` // When the binding was created.
	LastUsedAt  time.Time `gorm:"not null"` // Touched on each enforced login.
}
