package auth

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Claims are the parts of the access token the client cares about.
type Claims struct {
	Subject  string
	Username string
	Expires  time.Time
}

// Expired reports whether the token has an expiry that is not after now.
func (c Claims) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

// ParseClaims decodes a JWT without verifying its signature.
func ParseClaims(token string) (Claims, error) {
	t, err := jwt.ParseString(token, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return Claims{}, fmt.Errorf("parsing token: %w", err)
	}
	c := Claims{Subject: t.Subject(), Expires: t.Expiration()}
	if v, ok := t.Get("username"); ok {
		c.Username, _ = v.(string)
	}
	// The platform nests the user as {"user": {"id", "username", "email"}}.
	if v, ok := t.Get("user"); ok && c.Username == "" {
		if user, ok := v.(map[string]interface{}); ok {
			c.Username, _ = user["username"].(string)
			if c.Subject == "" {
				c.Subject, _ = user["id"].(string)
			}
		}
	}
	if c.Username == "" {
		c.Username = c.Subject
	}
	return c, nil
}
