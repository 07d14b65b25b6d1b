package access

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScannerTokenIssuer mints and verifies the short-lived device tokens handed
// out after a successful event-code unlock. The event code itself is a
// convenience gate, not a security boundary; the signed token is what the
// roster and check-in routes actually check.
type ScannerTokenIssuer struct {
	Secret []byte
	TTL    time.Duration
}

func NewScannerTokenIssuer(secret string, ttl time.Duration) *ScannerTokenIssuer {
	return &ScannerTokenIssuer{Secret: []byte(secret), TTL: ttl}
}

// Issue returns a signed HS256 token scoped to one event.
func (i *ScannerTokenIssuer) Issue(eventID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": eventID,
		"aud": "scanner",
		"iat": now.Unix(),
		"exp": now.Add(i.TTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.Secret)
}

// Verify checks signature and expiry and returns the event ID the token was
// issued for.
func (i *ScannerTokenIssuer) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("empty token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.Secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("subject claim not found in token")
	}
	return sub, nil
}
