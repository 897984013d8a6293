// Package auth issues and validates the rider token for the presentation
// API. There is a single rider; a passcode is exchanged for a JWT.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// defaultPasscode is used when RIDER_PASSCODE is unset.
const defaultPasscode = "shocktracker"

// Service handles authentication operations
type Service struct {
	jwtSecret    []byte
	tokenExp     time.Duration
	passcodeHash string
}

// NewService creates the authentication service. The rider passcode is
// read from RIDER_PASSCODE and stored only as a bcrypt hash.
func NewService() (*Service, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default-secret-key-change-in-production"
	}

	expStr := os.Getenv("JWT_EXPIRY")
	exp := 24 * time.Hour // default 24 hours
	if expStr != "" {
		if parsed, err := time.ParseDuration(expStr); err == nil {
			exp = parsed
		}
	}

	passcode := os.Getenv("RIDER_PASSCODE")
	if passcode == "" {
		passcode = defaultPasscode
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash passcode: %w", err)
	}

	return &Service{
		jwtSecret:    []byte(secret),
		tokenExp:     exp,
		passcodeHash: string(hash),
	}, nil
}

// CheckPasscode checks a login attempt against the stored hash.
func (s *Service) CheckPasscode(passcode string) bool {
	return bcrypt.CompareHashAndPassword([]byte(s.passcodeHash), []byte(passcode)) == nil
}

// GenerateToken generates a rider JWT.
func (s *Service) GenerateToken() (string, error) {
	claims := jwt.MapClaims{
		"sub": "rider",
		"exp": time.Now().Add(s.tokenExp).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a rider JWT.
func (s *Service) ValidateToken(tokenString string) error {
	// Remove "Bearer " prefix if present
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}

	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// ExtractTokenFromHeader extracts the token from an Authorization header.
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}
