// Package mailer delivers account verification mail. The subsystem is a
// black box to the pipelines: they only learn whether a send succeeded.
package mailer

import (
	"context"
	"fmt"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/config"
	log "github.com/sirupsen/logrus"
)

// Mailer sends a verification link to a new or unverified account.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, username, token, baseURL string) error
}

// New selects the SMTP sender when a host is configured, else the
// log-only sender used in development.
func New(cfg config.MailConfig) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

// VerificationLink builds the link embedded in the mail body.
func VerificationLink(baseURL, token string) string {
	return fmt.Sprintf("%s/v0/auth/verify?token=%s", baseURL, token)
}

// LogMailer writes the verification link to the log instead of sending.
type LogMailer struct{}

// SendVerificationEmail logs the link and always succeeds.
func (LogMailer) SendVerificationEmail(_ context.Context, to, username, token, baseURL string) error {
	log.WithFields(log.Fields{
		"to":       to,
		"username": username,
		"link":     VerificationLink(baseURL, token),
	}).Info("mailer: verification mail (log only)")
	return nil
}
