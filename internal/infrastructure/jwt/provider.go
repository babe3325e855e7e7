package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/aarsha-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload fields. The verified email is the subject.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs bound to a verified email identity.
type Provider struct {
	secret []byte
	expiry time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	return &Provider{secret: []byte(cfg.JWTSecret), expiry: cfg.JWTExpiry}, nil
}

// Sign mints a time-bounded token asserting the given email identity.
func (p *Provider) Sign(email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify checks signature and expiry and returns the embedded claims.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
