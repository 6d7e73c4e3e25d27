package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned by ParseUser for tokens that are not JWTs.
var ErrOpaqueToken = errors.New("session: token is not a JWT")

// User is what the client knows about the signed-in user. It is read from
// the access token claims; the signature is not verified because the
// server does that on every request.
type User struct {
	Username  string    `json:"username" yaml:"username"`
	ExpiresAt time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// Expired reports whether the token expiry has passed at now. Tokens
// without an expiry never expire.
func (u *User) Expired(now time.Time) bool {
	return u != nil && !u.ExpiresAt.IsZero() && now.After(u.ExpiresAt)
}

// ParseUser decodes the sub and exp claims of an access token.
func ParseUser(token string) (*User, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrOpaqueToken
		}
		return nil, fmt.Errorf("decode token claims: %w", err)
	}

	u := &User{Username: claims.Subject}
	if claims.ExpiresAt != nil {
		u.ExpiresAt = claims.ExpiresAt.Time
	}
	return u, nil
}
