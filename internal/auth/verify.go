package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/directory"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/models"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/security"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Verify consumes a verification token. Not-found and expired collapse
// into one rejection so a caller cannot probe token state. A second call
// with the same token finds no unused record and rejects the same way.
func (s *Service) Verify(ctx context.Context, token string) (*Rejection, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return rejectBadRequest(CodeInvalidOrUsedToken, "Invalid or expired verification token"), nil
	}

	now := s.nowFn()
	var record models.EmailVerification
	errFind := s.db.WithContext(ctx).
		Where("token = ? AND used = ? AND expires_at > ?", token, false, now).
		First(&record).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return rejectBadRequest(CodeInvalidOrUsedToken, "Invalid or expired verification token"), nil
		}
		return nil, fmt.Errorf("auth: lookup verification token: %w", errFind)
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errVerify := directory.New(tx).MarkVerified(ctx, record.UserID, now); errVerify != nil {
			return errVerify
		}
		res := tx.Model(&models.EmailVerification{}).
			Where("id = ? AND used = ?", record.ID, false).
			Updates(map[string]any{"used": true, "verified_at": now})
		if res.Error != nil {
			return fmt.Errorf("auth: consume verification token: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("auth: verification token already consumed")
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return nil, nil
}

// Resend invalidates every unused verification record for the account
// and issues a fresh 24-hour token. Mail failure is reported, not fatal.
func (s *Service) Resend(ctx context.Context, email string) (*ResendResult, *Rejection, error) {
	dir := directory.New(s.db)
	user, errFind := dir.ByEmail(ctx, email)
	if errFind != nil {
		if errors.Is(errFind, directory.ErrNotFound) {
			return nil, reject(CodeNotFound, "No account with this email", http.StatusNotFound), nil
		}
		return nil, nil, errFind
	}
	if user.Verified {
		return nil, rejectBadRequest(CodeAlreadyVerified, "This account is already verified"), nil
	}

	token, errToken := security.GenerateToken()
	if errToken != nil {
		return nil, nil, errToken
	}
	now := s.nowFn()
	expiry := now.Add(settings.VerificationTokenTTL)

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errInvalidate := tx.Model(&models.EmailVerification{}).
			Where("user_id = ? AND used = ?", user.ID, false).
			Update("used", true).Error; errInvalidate != nil {
			return fmt.Errorf("auth: invalidate old tokens: %w", errInvalidate)
		}
		if errSet := directory.New(tx).SetVerificationToken(ctx, user.ID, token, expiry, now); errSet != nil {
			return errSet
		}
		record := models.EmailVerification{
			UserID:    user.ID,
			Email:     user.Email,
			Token:     token,
			ExpiresAt: expiry,
		}
		if errCreate := tx.Create(&record).Error; errCreate != nil {
			return fmt.Errorf("auth: record verification token: %w", errCreate)
		}
		return nil
	})
	if errTx != nil {
		return nil, nil, errTx
	}

	emailSent := true
	if errSend := s.mail.SendVerificationEmail(ctx, user.Email, user.Username, token, s.baseURL); errSend != nil {
		emailSent = false
		log.WithError(errSend).WithField("user_id", user.ID).Warn("auth: verification mail failed")
	}
	return &ResendResult{EmailSent: emailSent}, nil, nil
}
