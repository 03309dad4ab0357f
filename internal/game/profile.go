// Package game holds the hook the auth pipelines use to hand a new
// account over to the gameplay side.
package game

import (
	"context"
	"errors"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProfileInitializer creates the starter game profile for new accounts.
type ProfileInitializer struct {
	db *gorm.DB
}

// NewProfileInitializer constructs a ProfileInitializer.
func NewProfileInitializer(db *gorm.DB) *ProfileInitializer {
	return &ProfileInitializer{db: db}
}

// EnsureProfile creates the starter profile if the user has none. Called
// fire-and-forget after registration; failures are logged, never surfaced.
func (p *ProfileInitializer) EnsureProfile(ctx context.Context, userID uint64) {
	if p == nil || p.db == nil || userID == 0 {
		return
	}
	var existing models.GameProfile
	errFind := p.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	if errFind == nil {
		return
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		log.WithError(errFind).WithField("user_id", userID).Warn("game: profile lookup failed")
		return
	}
	profile := models.GameProfile{UserID: userID, Cash: 500, Health: 100, Level: 1}
	if errCreate := p.db.WithContext(ctx).Create(&profile).Error; errCreate != nil {
		log.WithError(errCreate).WithField("user_id", userID).Warn("game: profile init failed")
	}
}
