package utils

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/o1egl/paseto"
)

const (
	// Set expiration times for access and refresh tokens.
	AccessTokenExpiry  = 24 * time.Hour
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

// Token types. An access token opens a session, a refresh token only mints new access tokens.
const (
	AccessTokenType  = "access"
	RefreshTokenType = "refresh"
)

var (
	ErrTokenExpired           = errors.New("token expired")
	ErrWrongTokenType         = errors.New("wrong token type")
	ErrInsufficientPermission = errors.New("insufficient permissions")
)

// TokenClaims struct represents the data in the token (UserID, Role, Type, Expiry).
type TokenClaims struct {
	UserID string    `json:"userId"`
	Role   string    `json:"role"`
	Type   string    `json:"type"`
	Expiry time.Time `json:"expiry"`
}

// TokenMaker issues and validates PASETO v2 local tokens with one symmetric key.
type TokenMaker struct {
	symmetricKey []byte
	now          func() time.Time
}

// NewTokenMaker checks that the key has the 32 bytes PASETO v2 requires.
func NewTokenMaker(symmetricKey string) (*TokenMaker, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be 32 bytes long, got %d", len(symmetricKey))
	}
	return &TokenMaker{symmetricKey: []byte(symmetricKey), now: time.Now}, nil
}

// GenerateTokens generates both the access token and refresh token for the given user ID and role.
func (m *TokenMaker) GenerateTokens(userID, role string) (accessToken, refreshToken string, err error) {
	accessToken, err = m.generate(userID, role, AccessTokenType, AccessTokenExpiry)
	if err != nil {
		log.Printf("Error generating access token: %v", err)
		return "", "", err
	}

	refreshToken, err = m.generate(userID, role, RefreshTokenType, RefreshTokenExpiry)
	if err != nil {
		log.Printf("Error generating refresh token: %v", err)
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// GenerateAccessToken generates only the access token for a user.
func (m *TokenMaker) GenerateAccessToken(userID, role string) (string, error) {
	token, err := m.generate(userID, role, AccessTokenType, AccessTokenExpiry)
	if err != nil {
		log.Printf("Error generating access token: %v", err)
		return "", err
	}
	return token, nil
}

func (m *TokenMaker) generate(userID, role, tokenType string, expiry time.Duration) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		Role:   role,
		Type:   tokenType,
		Expiry: m.now().Add(expiry),
	}

	token, err := paseto.NewV2().Encrypt(m.symmetricKey, claims, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ValidateToken validates the given token string and checks its type, expiry and required roles.
func (m *TokenMaker) ValidateToken(tokenString, tokenType string, requiredRoles ...string) (*TokenClaims, error) {
	var claims TokenClaims
	if err := paseto.NewV2().Decrypt(tokenString, m.symmetricKey, &claims, nil); err != nil {
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}

	if claims.Type != tokenType {
		return nil, ErrWrongTokenType
	}

	if m.now().After(claims.Expiry) {
		return nil, ErrTokenExpired
	}

	// If no roles are required, any valid token is acceptable
	if len(requiredRoles) == 0 {
		return &claims, nil
	}

	for _, role := range requiredRoles {
		if claims.Role == role {
			return &claims, nil
		}
	}

	log.Printf("Insufficient permissions. Required roles: %v, found role: %v", requiredRoles, claims.Role)
	return nil, ErrInsufficientPermission
}
