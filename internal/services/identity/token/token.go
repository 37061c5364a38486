// Package token issues and verifies access tokens and mints opaque
// refresh identifiers
package token

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	perr "cardduel/internal/platform/errors"
)

// Claims carried by an access token
type Claims struct {
	Admin bool `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies access tokens with a shared symmetric secret
// Immutable after construction; safe for concurrent use
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer constructs an Issuer; the secret must be non-empty
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if secret == "" {
		panic("token: empty signing secret")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an access token for subject
func (i *Issuer) Issue(subject string, admin bool) (string, error) {
	now := i.now()
	claims := Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "sign access token")
	}
	return signed, nil
}

// Verify parses and validates an access token, returning subject and admin
func (i *Issuer) Verify(tokenString string) (subject string, admin bool, err error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, perr.Unauthorizedf("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(5*time.Second))
	if err != nil || !tok.Valid {
		return "", false, perr.Unauthorizedf("invalid or expired token")
	}
	if claims.Subject == "" {
		return "", false, perr.Unauthorizedf("token carries no subject")
	}
	return claims.Subject, claims.Admin, nil
}

// Parse implements the middleware AuthPort over the Authorization header
func (i *Issuer) Parse(r *http.Request) (string, bool, error) {
	raw, err := FromHeader(r)
	if err != nil {
		return "", false, err
	}
	return i.Verify(raw)
}

// FromHeader extracts the bearer token from a request
func FromHeader(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	if !strings.HasPrefix(h, "Bearer ") {
		return "", perr.Unauthorizedf("malformed authorization header")
	}
	return strings.TrimPrefix(h, "Bearer "), nil
}

// NewRefresh mints an opaque 256-bit refresh identifier
func NewRefresh() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "refresh token entropy")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
