package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"mjnutrafit/coaching-api/internal/config"
	"mjnutrafit/coaching-api/internal/domain"
)

const tokenIssuer = "mjnutrafit"

// Claims is the payload of both access and refresh tokens. Role is empty in
// refresh tokens.
type Claims struct {
	UserID uint        `json:"id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is what login, registration and refresh hand back to the caller.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// TokenIssuer signs and verifies HS256 tokens. Access and refresh tokens use
// separate secrets so one can never be replayed as the other.
type TokenIssuer struct {
	secret            []byte
	refreshSecret     []byte
	expiration        time.Duration
	refreshExpiration time.Duration
	now               func() time.Time
}

// NewTokenIssuer builds an issuer from the jwt config section.
func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	if cfg.Secret == "" || cfg.RefreshSecret == "" {
		panic("JWT secrets cannot be empty") // Critical configuration
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = 24 * time.Hour
	}
	if cfg.RefreshExpiration <= 0 {
		cfg.RefreshExpiration = 7 * 24 * time.Hour
	}
	return &TokenIssuer{
		secret:            []byte(cfg.Secret),
		refreshSecret:     []byte(cfg.RefreshSecret),
		expiration:        cfg.Expiration,
		refreshExpiration: cfg.RefreshExpiration,
		now:               time.Now,
	}
}

// Issue creates a fresh access/refresh pair for user.
func (t *TokenIssuer) Issue(user *domain.User) (TokenPair, error) {
	access, err := t.sign(t.secret, Claims{UserID: user.ID, Email: user.Email, Role: user.Role}, t.expiration)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.sign(t.refreshSecret, Claims{UserID: user.ID, Email: user.Email}, t.refreshExpiration)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Token: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) sign(secret []byte, claims Claims, ttl time.Duration) (string, error) {
	now := t.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   fmt.Sprint(claims.UserID),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAccess verifies an access token's signature and expiry.
func (t *TokenIssuer) ParseAccess(token string) (*Claims, error) {
	return t.parse(t.secret, token)
}

// ParseRefresh verifies a refresh token's signature and expiry.
func (t *TokenIssuer) ParseRefresh(token string) (*Claims, error) {
	return t.parse(t.refreshSecret, token)
}

func (t *TokenIssuer) parse(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
