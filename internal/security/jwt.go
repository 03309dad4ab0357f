package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for unparsable, forged, or expired session tokens.
var ErrInvalidToken = errors.New("security: invalid session token")

// SessionClaims are the claims carried by a login session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Identity is the authenticated principal decoded from a session token.
type Identity struct {
	UserID   uint64
	Email    string
	Username string
}

// IssueSessionToken signs a session token for the user.
func IssueSessionToken(userID uint64, email, username string, secret []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Email:    email,
		Username: username,
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("security: sign session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates a session token and returns the identity it carries.
func ParseSessionToken(tokenString string, secret []byte) (Identity, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	userID, errParse := strconv.ParseUint(claims.Subject, 10, 64)
	if errParse != nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: userID, Email: claims.Email, Username: claims.Username}, nil
}
