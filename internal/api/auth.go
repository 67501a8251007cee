package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ppiankov/credence/internal/model"
)

const (
	bearerPrefix = "Bearer "
	ctxUserID    = "user_id"
	tokenIssuer  = "credence"
)

// ErrInvalidToken is returned for tokens that fail signature, method or claim checks
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the user id in the standard subject claim
type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a manager; ttl <= 0 issues tokens without expiry
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Enabled reports whether a secret is configured
func (m *TokenManager) Enabled() bool {
	return m != nil && len(m.secret) > 0
}

// Issue signs a token for userID
func (m *TokenManager) Issue(userID string) (string, error) {
	if !m.Enabled() {
		return "", errors.New("jwt secret not configured")
	}
	if userID == "" {
		return "", errors.New("user id required")
	}

	now := time.Now()
	claims := Claims{
		Sub: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   tokenIssuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString and returns the user id it was issued for
func (m *TokenManager) Verify(tokenString string) (string, error) {
	if !m.Enabled() {
		return "", ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Sub == "" {
		return "", ErrInvalidToken
	}
	return claims.Sub, nil
}

// bearerToken returns the token from the Authorization header, or ""
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			respondError(c, &model.AuthError{Message: "Access token required"})
			c.Abort()
			return
		}

		userID, err := tokens.Verify(raw)
		if err != nil {
			respondError(c, &model.AuthError{Message: "Invalid token"})
			c.Abort()
			return
		}

		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// OptionalAuth sets the user id when a valid token is present and otherwise
// lets the request through anonymously
func OptionalAuth(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := bearerToken(c); raw != "" {
			if userID, err := tokens.Verify(raw); err == nil {
				c.Set(ctxUserID, userID)
			}
		}
		c.Next()
	}
}

// currentUser returns the authenticated user id, or "" for anonymous requests
func currentUser(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
