// Package token issues and verifies the short-lived signed credentials that
// bind an identity to upload capability. Verification is stateless; there is
// no session table and no revocation before natural expiry.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cliplink/internal/clip/models"
)

const purposeUpload = "upload"

type Service struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	clock  func() time.Time
}

func New(secret, algorithm string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("token: signing secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token: ttl must be positive, got %v", ttl)
	}

	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("token: unsupported signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("token: algorithm %q is not an HMAC method", algorithm)
	}

	return &Service{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		clock:  time.Now,
	}, nil
}

// TTL reports the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a token binding identity to the upload purpose. Expiry is
// absolute wall-clock time embedded in the token.
func (s *Service) Issue(identity string) (string, error) {
	if identity == "" {
		return "", models.ErrInvalidArgument
	}

	claims := jwt.MapClaims{
		"sub":     identity,
		"exp":     jwt.NewNumericDate(s.clock().Add(s.ttl)),
		"purpose": purposeUpload,
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded identity.
// Every failure mode maps to models.ErrInvalidToken.
func (s *Service) Verify(tokenStr string) (string, error) {
	parsed, err := jwt.Parse(tokenStr,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.clock),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", models.ErrInvalidToken
	}
	if purpose, _ := claims["purpose"].(string); purpose != purposeUpload {
		return "", fmt.Errorf("%w: wrong purpose", models.ErrInvalidToken)
	}
	identity, _ := claims["sub"].(string)
	if identity == "" {
		return "", fmt.Errorf("%w: missing subject", models.ErrInvalidToken)
	}

	return identity, nil
}
