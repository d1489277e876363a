package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
)

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// JWTTokenSource mints HS256 access tokens for the console and reuses each one
// until shortly before it expires.
type JWTTokenSource struct {
	secret  []byte
	subject string
	ttl     time.Duration
	cache   *cache.Cache
}

func NewJWTTokenSource(secret, subject string, ttl time.Duration) *JWTTokenSource {
	return &JWTTokenSource{
		secret:  []byte(secret),
		subject: subject,
		ttl:     ttl,
		cache:   cache.New(ttl, ttl),
	}
}

func (s *JWTTokenSource) Token(ctx context.Context) (string, error) {
	if cached, found := s.cache.Get(s.subject); found {
		return cached.(string), nil
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   s.subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)

	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	s.cache.Set(s.subject, signed, s.ttl-s.ttl/5)

	return signed, nil
}
