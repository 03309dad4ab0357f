package settings

import "time"

// Policy constants for the account gate.
const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6
	// MinAgeYears is the minimum account-holder age.
	MinAgeYears = 13
	// VerificationTokenTTL is how long an email verification token stays valid.
	VerificationTokenTTL = 24 * time.Hour
	// SessionTokenTTL is how long a login session token stays valid.
	SessionTokenTTL = 7 * 24 * time.Hour
	// ReputationCacheTTL is how long a cached IP verdict stays valid.
	ReputationCacheTTL = 24 * time.Hour
	// ReputationSourceTimeout bounds each external reputation lookup.
	ReputationSourceTimeout = 5 * time.Second
	// DefaultRedisPrefix is the fallback Redis key prefix for the reputation cache.
	DefaultRedisPrefix = "ccg:rep"
)
