package reputation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Cache persists merged verdicts per IP with lazy expiry at read time.
type Cache interface {
	Get(ctx context.Context, ip string, now time.Time) (Verdict, bool, error)
	Put(ctx context.Context, ip string, verdict Verdict, now time.Time, ttl time.Duration) error
}

// GormCache is the persistent reputation cache. Expired rows are treated
// as absent and overwritten in place on the next Put.
type GormCache struct {
	db *gorm.DB
}

// NewGormCache constructs a GormCache.
func NewGormCache(db *gorm.DB) *GormCache { return &GormCache{db: db} }

// Get returns the cached verdict for ip when a non-expired row exists.
func (c *GormCache) Get(ctx context.Context, ip string, now time.Time) (Verdict, bool, error) {
	if c == nil || c.db == nil {
		return Verdict{}, false, fmt.Errorf("reputation cache: not initialized")
	}
	var row models.IPReputationRecord
	errFind := c.db.WithContext(ctx).
		Where("ip = ? AND expires_at > ?", ip, now).
		First(&row).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return Verdict{}, false, nil
		}
		return Verdict{}, false, errFind
	}
	return Verdict{
		IsVPN:     row.IsVPN,
		IsProxy:   row.IsProxy,
		IsMetered: row.IsMetered,
		Provider:  row.Provider,
		Country:   row.Country,
		Region:    row.Region,
		City:      row.City,
	}, true, nil
}

// Put upserts the verdict for ip with a fresh expiry. Last write wins on
// concurrent misses for the same IP.
func (c *GormCache) Put(ctx context.Context, ip string, verdict Verdict, now time.Time, ttl time.Duration) error {
	if c == nil || c.db == nil {
		return fmt.Errorf("reputation cache: not initialized")
	}
	row := models.IPReputationRecord{
		IP:        ip,
		IsVPN:     verdict.IsVPN,
		IsProxy:   verdict.IsProxy,
		IsMetered: verdict.IsMetered,
		Provider:  verdict.Provider,
		Country:   verdict.Country,
		Region:    verdict.Region,
		City:      verdict.City,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	return c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ip"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_vpn", "is_proxy", "is_metered",
			"provider", "country", "region", "city",
			"cached_at", "expires_at",
		}),
	}).Create(&row).Error
}
