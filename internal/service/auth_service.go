//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminSubject  = "admin"
	tokenLifetime = 7 * 24 * time.Hour
)

var (
	ErrAdminDisabled    = errors.New("admin login is disabled")
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidPassword  = errors.New("invalid password")
)

// AuthResponse is a freshly issued admin token.
type AuthResponse struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService guards the admin endpoints with one bcrypt password.
type AuthService interface {
	Login(ctx context.Context, password string) (*AuthResponse, error)
	ValidateToken(token string) (bool, error)
}

type authService struct {
	passwordHash []byte
	secret       []byte
	now          func() time.Time
}

// NewAuthService checks logins against passwordHash. An empty hash disables
// admin login; an empty secret is replaced by a random per-process one.
func NewAuthService(passwordHash, jwtSecret string) AuthService {
	secret := []byte(jwtSecret)
	if len(secret) == 0 {
		secret = randomSecret()
	}
	return &authService{
		passwordHash: []byte(passwordHash),
		secret:       secret,
		now:          time.Now,
	}
}

func (s *authService) Login(ctx context.Context, password string) (*AuthResponse, error) {
	if len(s.passwordHash) == 0 {
		return nil, ErrAdminDisabled
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}

	now := s.now()
	expiresAt := now.Add(tokenLifetime)
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateToken reports whether token is a live admin token. Malformed,
// expired or foreign tokens are invalid without an error.
func (s *authService) ValidateToken(token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return false, nil
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return false, nil
	}
	return claims.Subject == adminSubject, nil
}

func randomSecret() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("generate jwt secret: %v", err))
	}
	return []byte(hex.EncodeToString(buf))
}
