package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/directory"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/security"
)

// LoginInput carries the login request fields.
type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

// Login runs the login pipeline. Binding enforcement runs before the
// IP-change branch and is unconditional; the registered-IP/VPN/proxy
// checks only run when the client IP differs from the stored one, so a
// bound metered user logging in from their bound IP skips them entirely.
// An unbound user whose acting IP resolves metered is bound to it once
// every check has passed.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, *Rejection, error) {
	email := directory.NormalizeEmail(in.Email)
	ip := strings.TrimSpace(in.IP)

	if email == "" || in.Password == "" {
		return nil, rejectBadRequest(CodeMissingFields, "Email and password are required"), nil
	}

	dir := directory.New(s.db)
	user, errFind := dir.ByEmail(ctx, email)
	if errFind != nil {
		if errors.Is(errFind, directory.ErrNotFound) {
			s.recordAttempt(ctx, email, ip, in.UserAgent, false, false)
			return nil, reject(CodeInvalidCredentials, invalidCredentialsMessage, http.StatusUnauthorized), nil
		}
		return nil, nil, errFind
	}

	if !security.CheckPassword(user.Password, in.Password) {
		s.recordAttempt(ctx, email, ip, in.UserAgent, false, false)
		return nil, reject(CodeInvalidCredentials, invalidCredentialsMessage, http.StatusUnauthorized), nil
	}

	if !user.Active {
		s.recordAttempt(ctx, email, ip, in.UserAgent, false, false)
		return nil, rejectForbidden(CodeAccountDeactivated, "This account has been deactivated"), nil
	}
	if !user.Verified {
		s.recordAttempt(ctx, email, ip, in.UserAgent, false, false)
		return nil, rejectForbidden(CodeNeedsVerification, "Please verify your email address before logging in"), nil
	}

	verdict := s.resolver.Resolve(ctx, ip)

	binding, errBinding := s.binder.ActiveBinding(ctx, user.ID)
	if errBinding != nil {
		return nil, nil, errBinding
	}
	if binding != nil {
		if binding.IP != ip {
			s.recordAttempt(ctx, email, ip, in.UserAgent, false, verdict.IsVPN)
			rej := rejectForbidden(CodeMeteredIPMismatch,
				fmt.Sprintf("This account is locked to its metered connection (registered IP %s, current IP %s)", binding.IP, ip))
			rej.RegisteredIP = binding.IP
			rej.CurrentIP = ip
			return nil, rej, nil
		}
		if errTouch := s.binder.Touch(ctx, binding.ID, s.nowFn()); errTouch != nil {
			return nil, nil, errTouch
		}
	}

	if ip != user.RegisteredIP {
		taken, errTaken := dir.OtherUserHoldsIP(ctx, ip, user.ID)
		if errTaken != nil {
			return nil, nil, errTaken
		}
		if taken {
			s.recordAttempt(ctx, email, ip, in.UserAgent, false, verdict.IsVPN)
			return nil, rejectConflict(CodeIPTaken, "IP address already associated with another account."), nil
		}
		if verdict.IsVPN && !verdict.IsMetered {
			s.recordAttempt(ctx, email, ip, in.UserAgent, false, verdict.IsVPN)
			return nil, rejectForbidden(CodeVPNBlocked, "Logins over VPN connections are not allowed"), nil
		}
		if verdict.IsProxy {
			s.recordAttempt(ctx, email, ip, in.UserAgent, false, verdict.IsVPN)
			return nil, rejectForbidden(CodeProxyBlocked, "Logins over proxy connections are not allowed"), nil
		}
	}

	// A metered IP that cleared every check becomes the account's first
	// and only binding.
	if binding == nil && verdict.IsMetered {
		if errBind := s.binder.Bind(ctx, user.ID, ip, verdict.ConnectionType, s.nowFn()); errBind != nil {
			return nil, nil, errBind
		}
	}

	s.recordAttempt(ctx, email, ip, in.UserAgent, true, verdict.IsVPN)

	// Stamps last-login and moves the registered IP when it changed.
	if errRecord := dir.RecordLogin(ctx, user.ID, ip, s.nowFn()); errRecord != nil {
		return nil, nil, errRecord
	}

	token, errToken := security.IssueSessionToken(user.ID, user.Email, user.Username, s.jwtSecret, s.jwtExpiry)
	if errToken != nil {
		return nil, nil, errToken
	}

	return &LoginResult{
		Token:    token,
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	}, nil, nil
}
