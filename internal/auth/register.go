package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/directory"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/metered"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/models"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/reputation"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/security"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RegisterInput carries the registration request fields.
type RegisterInput struct {
	Email       string
	Password    string
	Username    string
	DateOfBirth string
	IP          string
	UserAgent   string
}

// dobPattern gates the MM/DD/YYYY shape before the calendar check.
var dobPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(0[1-9]|[12][0-9]|3[01])/(19|20)[0-9]{2}$`)

const dobLayout = "01/02/2006"

// Register runs the registration pipeline. The checks run in a fixed
// order and short-circuit on the first failure; each failure maps to a
// distinct reason code. A non-nil error means storage trouble, not a
// policy rejection.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegistrationResult, *Rejection, error) {
	email := directory.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	dob := strings.TrimSpace(in.DateOfBirth)
	ip := strings.TrimSpace(in.IP)

	if email == "" || in.Password == "" || username == "" || dob == "" {
		return nil, rejectBadRequest(CodeMissingFields, "Email, password, username, and date of birth are required"), nil
	}
	if len(in.Password) < settings.MinPasswordLength {
		return nil, rejectBadRequest(CodePasswordTooShort,
			fmt.Sprintf("Password must be at least %d characters", settings.MinPasswordLength)), nil
	}

	birthDate, rej := validateDateOfBirth(dob, s.nowFn())
	if rej != nil {
		return nil, rej, nil
	}
	if age := fullYearsSince(birthDate, s.nowFn()); age < settings.MinAgeYears {
		return nil, rejectForbidden(CodeUnderage,
			fmt.Sprintf("You must be at least %d years old to play", settings.MinAgeYears)), nil
	}

	dir := directory.New(s.db)
	if _, errFind := dir.ByEmail(ctx, email); errFind == nil {
		return nil, rejectConflict(CodeEmailTaken, "An account with this email already exists"), nil
	} else if !errors.Is(errFind, directory.ErrNotFound) {
		return nil, nil, errFind
	}
	if _, errFind := dir.ByUsername(ctx, username); errFind == nil {
		return nil, rejectConflict(CodeUsernameTaken, "This username is already taken"), nil
	} else if !errors.Is(errFind, directory.ErrNotFound) {
		return nil, nil, errFind
	}

	// One account per IP, checked before reputation and regardless of
	// whether the IP is metered.
	if _, errFind := dir.ByRegisteredIP(ctx, ip); errFind == nil {
		return nil, rejectConflict(CodeIPTaken, "IP address already associated with another account."), nil
	} else if !errors.Is(errFind, directory.ErrNotFound) {
		return nil, nil, errFind
	}

	verdict := s.resolver.Resolve(ctx, ip)
	if verdict.IsVPN && !verdict.IsMetered {
		return nil, rejectForbidden(CodeVPNBlocked, "Registrations over VPN connections are not allowed"), nil
	}
	if verdict.IsProxy {
		return nil, rejectForbidden(CodeProxyBlocked, "Registrations over proxy connections are not allowed"), nil
	}

	hash, errHash := security.HashPassword(in.Password)
	if errHash != nil {
		return nil, nil, fmt.Errorf("auth: hash password: %w", errHash)
	}
	token, errToken := security.GenerateToken()
	if errToken != nil {
		return nil, nil, errToken
	}

	now := s.nowFn()
	expiry := now.Add(settings.VerificationTokenTTL)
	user := models.User{
		Email:              email,
		Username:           username,
		Password:           hash,
		DateOfBirth:        dob,
		RegisteredIP:       ip,
		UserAgent:          in.UserAgent,
		Active:             true,
		Verified:           false,
		VerificationToken:  &token,
		VerificationExpiry: &expiry,
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := directory.New(tx).Create(ctx, &user); errCreate != nil {
			return errCreate
		}
		tracking := models.IPTracking{
			UserID:  user.ID,
			IP:      ip,
			IsVPN:   verdict.IsVPN,
			IsProxy: verdict.IsProxy,
			Geo:     geoJSON(verdict),
		}
		if errCreate := tx.Create(&tracking).Error; errCreate != nil {
			return fmt.Errorf("auth: record ip tracking: %w", errCreate)
		}
		if verdict.IsMetered {
			if errBind := metered.NewBinder(tx).Bind(ctx, user.ID, ip, verdict.ConnectionType, now); errBind != nil {
				return errBind
			}
		}
		record := models.EmailVerification{
			UserID:    user.ID,
			Email:     email,
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
	if errSend := s.mail.SendVerificationEmail(ctx, email, username, token, s.baseURL); errSend != nil {
		emailSent = false
		log.WithError(errSend).WithField("user_id", user.ID).Warn("auth: verification mail failed")
	}

	go s.profiles.EnsureProfile(context.Background(), user.ID)

	return &RegistrationResult{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Verified:  false,
		EmailSent: emailSent,
	}, nil, nil
}

// validateDateOfBirth applies the pattern, the calendar round-trip, and
// the not-in-the-future rule.
func validateDateOfBirth(dob string, now time.Time) (time.Time, *Rejection) {
	if !dobPattern.MatchString(dob) {
		return time.Time{}, rejectBadRequest(CodeInvalidDOB, "Date of birth must be MM/DD/YYYY")
	}
	parsed, errParse := time.Parse(dobLayout, dob)
	if errParse != nil || parsed.Format(dobLayout) != dob {
		return time.Time{}, rejectBadRequest(CodeInvalidDOB, "Date of birth is not a valid calendar date")
	}
	if parsed.After(now) {
		return time.Time{}, rejectBadRequest(CodeDOBInFuture, "Date of birth cannot be in the future")
	}
	return parsed, nil
}

// fullYearsSince counts elapsed years, one less when the birthday has
// not yet occurred this year.
func fullYearsSince(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

// geoJSON packs the verdict's geo fields for the tracking row, nil when
// nothing was resolved.
func geoJSON(verdict reputation.Verdict) datatypes.JSON {
	if verdict.Country == "" && verdict.Region == "" && verdict.City == "" {
		return nil
	}
	payload, errMarshal := json.Marshal(map[string]string{
		"country": verdict.Country,
		"region":  verdict.Region,
		"city":    verdict.City,
	})
	if errMarshal != nil {
		return nil
	}
	return datatypes.JSON(payload)
}
