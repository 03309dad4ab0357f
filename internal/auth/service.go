// Package auth orchestrates the registration, login, and verification
// pipelines: credential checks, IP reputation policy, one-account-per-IP,
// and metered-connection binding, in a fixed short-circuiting order.
package auth

import (
	"context"
	"time"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/config"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/game"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/mailer"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/metered"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/reputation"
	"gorm.io/gorm"
)

// Resolver classifies an IP; it never fails outward.
type Resolver interface {
	Resolve(ctx context.Context, ip string) reputation.Verdict
}

// Service wires the pipeline collaborators together.
type Service struct {
	db       *gorm.DB
	binder   *metered.Binder
	resolver Resolver
	mail     mailer.Mailer
	profiles *game.ProfileInitializer

	jwtSecret []byte
	jwtExpiry time.Duration
	baseURL   string

	nowFn func() time.Time
}

// NewService constructs the Service with default dependencies when nil.
func NewService(db *gorm.DB, resolver Resolver, mail mailer.Mailer, jwtCfg config.JWTConfig, baseURL string, nowFn func() time.Time) *Service {
	if mail == nil {
		mail = mailer.LogMailer{}
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		db:        db,
		binder:    metered.NewBinder(db),
		resolver:  resolver,
		mail:      mail,
		profiles:  game.NewProfileInitializer(db),
		jwtSecret: []byte(jwtCfg.Secret),
		jwtExpiry: jwtCfg.Expiry,
		baseURL:   baseURL,
		nowFn:     nowFn,
	}
}
