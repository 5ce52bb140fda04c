// ABOUTME: JWT issuing and verification for access and refresh tokens
// ABOUTME: Uses HS256 signing with a separate secret per token kind

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// MinSecretLength is the minimum length in bytes for signing secrets.
const MinSecretLength = 32

// TokenVerifier defines the interface for access token verification
type TokenVerifier interface {
	VerifyAccessToken(tokenString string) (userID string, err error)
}

// Service issues and verifies HS256 signed JWTs carrying the user ID in the
// "sub" claim. Access and refresh tokens are signed with separate secrets,
// so a token of one kind can never verify as the other.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewService creates a token service with the given signing secrets
func NewService(accessSecret, refreshSecret []byte) (*Service, error) {
	if len(accessSecret) < MinSecretLength {
		return nil, fmt.Errorf("access secret must be at least %d bytes, got %d", MinSecretLength, len(accessSecret))
	}
	if len(refreshSecret) < MinSecretLength {
		return nil, fmt.Errorf("refresh secret must be at least %d bytes, got %d", MinSecretLength, len(refreshSecret))
	}
	return &Service{accessSecret: accessSecret, refreshSecret: refreshSecret}, nil
}

// IssueAccessToken creates an access token for the given user ID with expiration
func (s *Service) IssueAccessToken(userID string, expiresIn time.Duration) (string, error) {
	return generate(s.accessSecret, userID, expiresIn)
}

// IssueRefreshToken creates a refresh token for the given user ID with expiration
func (s *Service) IssueRefreshToken(userID string, expiresIn time.Duration) (string, error) {
	return generate(s.refreshSecret, userID, expiresIn)
}

// VerifyAccessToken validates an access token and extracts the user ID from the "sub" claim
func (s *Service) VerifyAccessToken(tokenString string) (userID string, err error) {
	return verify(s.accessSecret, tokenString)
}

// VerifyRefreshToken validates a refresh token and extracts the user ID from the "sub" claim
func (s *Service) VerifyRefreshToken(tokenString string) (userID string, err error) {
	return verify(s.refreshSecret, tokenString)
}

func generate(secret []byte, userID string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(expiresIn).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func verify(secret []byte, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		// Check if it's specifically an expiration error
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	return sub, nil
}
