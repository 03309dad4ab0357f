package auth

import "net/http"

// Reason codes returned to callers. Every rejection carries exactly one
// of these so clients can branch without parsing messages.
const (
	CodeMissingFields       = "missing_fields"
	CodePasswordTooShort    = "password_too_short"
	CodeInvalidDOB          = "invalid_dob"
	CodeDOBInFuture         = "dob_in_future"
	CodeUnderage            = "underage"
	CodeEmailTaken          = "email_taken"
	CodeUsernameTaken       = "username_taken"
	CodeIPTaken             = "ip_taken"
	CodeVPNBlocked          = "vpn_blocked"
	CodeProxyBlocked        = "proxy_blocked"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeAccountDeactivated  = "account_deactivated"
	CodeNeedsVerification   = "verification_required"
	CodeMeteredIPMismatch   = "metered_ip_mismatch"
	CodeInvalidOrUsedToken  = "invalid_or_expired_token"
	CodeAlreadyVerified     = "already_verified"
	CodeNotFound            = "not_found"
)

// invalidCredentialsMessage is shared byte-for-byte between the
// unknown-email and wrong-password rejections so neither leaks account
// existence.
const invalidCredentialsMessage = "Invalid credentials"

// Rejection is a structured policy or validation failure. It is a result
// value, not a Go error; storage trouble travels the error return.
type Rejection struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`

	// RegisteredIP and CurrentIP are set for metered_ip_mismatch only.
	RegisteredIP string `json:"registered_ip,omitempty"`
	CurrentIP    string `json:"current_ip,omitempty"`
}

func reject(code, message string, status int) *Rejection {
	return &Rejection{Code: code, Message: message, Status: status}
}

func rejectBadRequest(code, message string) *Rejection {
	return reject(code, message, http.StatusBadRequest)
}

func rejectConflict(code, message string) *Rejection {
	return reject(code, message, http.StatusConflict)
}

func rejectForbidden(code, message string) *Rejection {
	return reject(code, message, http.StatusForbidden)
}

// RegistrationResult reports a created account.
type RegistrationResult struct {
	UserID    uint64 `json:"user_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Verified  bool   `json:"verified"`
	EmailSent bool   `json:"email_sent"`
}

// LoginResult reports an issued session.
type LoginResult struct {
	Token    string `json:"token"`
	UserID   uint64 `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// ResendResult reports a re-issued verification token.
type ResendResult struct {
	EmailSent bool `json:"email_sent"`
}
