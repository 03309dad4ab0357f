package models

import "time"

// IPReputationRecord caches the merged reputation verdict for one IP.
// A row past its ExpiresAt is treated as absent and overwritten on the
// next miss; rows are never deleted.
type IPReputationRecord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	IP string `gorm:"type:text;not null;uniqueIndex"` // Cache key.

	IsVPN     bool `gorm:"not null;default:false"` // Any source matched a VPN/hosting keyword or flag.
	IsProxy   bool `gorm:"not null;default:false"` // Any source matched a proxy/tor keyword or flag.
	IsMetered bool `gorm:"not null;default:false"` // Any source matched a mobile/cellular keyword.

	Provider string `gorm:"type:text"` // Organization string the verdict was derived from.
	Country  string `gorm:"type:text"` // Geo fields, cached so hits and misses answer alike.
	Region   string `gorm:"type:text"`
	City     string `gorm:"type:text"`

	CachedAt  time.Time `gorm:"not null"`       // When the verdict was computed.
	ExpiresAt time.Time `gorm:"not null;index"` // Verdicts live 24 hours.
}

// TableName keeps the singular cache-table name.
func (IPReputationRecord) TableName() string { return "ip_reputation_records" }
