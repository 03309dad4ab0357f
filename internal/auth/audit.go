package auth

import (
	"context"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/models"
	log "github.com/sirupsen/logrus"
)

// recordAttempt appends a login attempt audit row. Best effort: audit
// trouble is logged and never fails the login itself.
func (s *Service) recordAttempt(ctx context.Context, email, ip, userAgent string, success, vpnFlag bool) {
	row := models.LoginAttempt{
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Success:   success,
		VPNFlag:   vpnFlag,
		CreatedAt: s.nowFn(),
	}
	if errCreate := s.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		log.WithError(errCreate).WithField("email", email).Warn("auth: login attempt audit failed")
	}
}
