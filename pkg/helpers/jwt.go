package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
)

// JWTManager signs and validates short-lived access tokens. Refresh tokens
// are opaque random values stored server-side and are never JWTs.
type JWTManager struct {
	Secret    []byte
	Issuer    string
	AccessTTL time.Duration
}

var defaultManager *JWTManager

func NewJWTManager(secret, issuer string, accessTTL time.Duration) *JWTManager {
	m := &JWTManager{
		Secret:    []byte(secret),
		Issuer:    issuer,
		AccessTTL: accessTTL,
	}
	defaultManager = m
	return m
}

// DefaultJWT returns the last constructed JWTManager (used for auto-wiring routes)
func DefaultJWT() *JWTManager { return defaultManager }

type Claims struct {
	UserID   string `json:"uid"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

// GenerateAccessToken issues a signed access token carrying the user's
// identity claims.
func (m *JWTManager) GenerateAccessToken(u *entity.User) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(m.AccessTTL)
	claims := &Claims{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		Name:     u.Name,
		Verified: u.IsVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    m.Issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

var ErrTokenExpired = jwt.ErrTokenExpired

func (m *JWTManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
