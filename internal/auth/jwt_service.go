package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is used when no TTL is configured.
const DefaultTokenTTL = 30 * 24 * time.Hour

// Claims represents JWT claims carried by an access token.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService creates a new JWT service with the given secret and token TTL.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Secret exposes the signing key for middleware configuration.
func (s *JWTService) Secret() []byte {
	return s.secret
}

// Issue generates a signed token for the user. Every token carries a unique
// jti so it can be revoked individually.
func (s *JWTService) Issue(userID uint, email, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates a token string and returns the claims. Expired tokens
// surface jwt.ErrTokenExpired through the returned error chain.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// ExtractClaims parses a token without failing on expiry, so logout can still
// revoke a token that expired between issuance and the call.
func (s *JWTService) ExtractClaims(tokenString string) (*Claims, error) {
	claims, err := s.Verify(tokenString)
	if err == nil {
		return claims, nil
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		parsed, _, parseErr := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
		if parseErr != nil {
			return nil, parseErr
		}
		if c, ok := parsed.Claims.(*Claims); ok {
			return c, nil
		}
	}
	return nil, err
}
