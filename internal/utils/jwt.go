package utils // package utils provides helper functions for token creation and hashing

import (
	"errors" // errors wraps parser failures into one sentinel
	"time"   // time utilities for computing expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// ErrInvalidToken is returned by ParseAccessToken for every rejected token:
// wrong segment count, bad encoding, foreign algorithm, signature mismatch or
// expiry. Callers never need to distinguish between these cases.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims is the self-contained claim set carried by a bearer token.
// Only exp from the registered claims is populated; the token is never
// looked up server-side.
type TokenClaims struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the three dot-separated base64url segments. Exp
// stores the expiration timestamp.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user. The expiry is
// now+ttl, truncated to whole seconds because exp is a NumericDate.
func NewAccessToken(secret string, userID uint64, email, name string, ttl time.Duration, now time.Time) (AccessToken, error) {
	if secret == "" {
		return AccessToken{}, errors.New("jwt secret is empty")
	}
	exp := now.UTC().Add(ttl).Truncate(time.Second)
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	// HS256: HMAC-SHA256 over "header.payload" keyed by the server secret.
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw against secret as of now and returns its
// claims. The signature is compared in constant time by the HMAC verifier,
// base64url segments are decoded strictly so that no character of the
// signature can change without invalidating it, and a token without exp is
// rejected.
func ParseAccessToken(secret, raw string, now time.Time) (*TokenClaims, error) {
	claims := &TokenClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
