// Package auth validates the access tokens issued by the asset backend.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "assetdesk/internal/core/context"
)

// Permissions checked by this service.
const (
	PermissionAuditRead  = "report:audit:read"
	PermissionSetupWrite = "setup:write"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
	Leeway         time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "asset-backend",
		AccessTokenTTL: 15 * time.Minute,
		Leeway:         30 * time.Second,
	}
}

// Claims are the access token claims shared with the backend.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"uid"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"perms,omitempty"`
	BranchIDs   []string `json:"branches,omitempty"`
	IsAdmin     bool     `json:"adm,omitempty"`
}

// JWTService signs and validates HS256 tokens.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// GenerateAccessToken signs a token for the claims. Registered claims left
// empty are filled from the config.
func (s *JWTService) GenerateAccessToken(claims Claims) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	if claims.Issuer == "" {
		claims.Issuer = s.config.Issuer
	}
	if claims.Subject == "" {
		claims.Subject = claims.UserID
	}
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a token and returns the user it carries. The raw
// token is kept so backend calls can forward it.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.config.Leeway),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, errors.New("token has no subject")
	}

	return &appctx.UserContext{
		UserID:      userID,
		Email:       claims.Email,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
		BranchIDs:   claims.BranchIDs,
		IsAdmin:     claims.IsAdmin,
		Token:       tokenString,
	}, nil
}
