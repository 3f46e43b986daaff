// Package auth verifies identity tokens from the external auth collaborator.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ArticleGate/internal/domain"
	"ArticleGate/internal/ports"
)

const adminRole = "admin"

var (
	errMissingSecret = errors.New("jwt secret not configured")
	errInvalidClaims = errors.New("invalid claims")
)

// Config holds token verification and issuing settings.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Claims carried by identity tokens.
type Claims struct {
	Username string `json:"preferred_username"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWT validates HS256 tokens and can mint them for operators.
type JWT struct {
	cfg Config
}

var _ ports.Authenticator = (*JWT)(nil)

// NewJWT builds the verifier; an empty secret is rejected.
func NewJWT(cfg Config) (*JWT, error) {
	if cfg.Secret == "" {
		return nil, errMissingSecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return &JWT{cfg: cfg}, nil
}

// Authenticate parses the token and returns its principal. Every failure is a
// PermissionError.
func (j *JWT) Authenticate(_ context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Anonymous, domain.Permissionf("missing token")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if j.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.cfg.Issuer))
	}
	if j.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(j.cfg.Audience))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return []byte(j.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return domain.Anonymous, &domain.Error{Kind: domain.KindPermission, Message: "invalid token", Cause: err}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.Anonymous, &domain.Error{Kind: domain.KindPermission, Message: "invalid token", Cause: errInvalidClaims}
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return domain.Anonymous, domain.Permissionf("token subject is not a user id")
	}

	return domain.Principal{
		UserID:   userID,
		Username: claims.Username,
		Admin:    claims.Role == adminRole,
	}, nil
}

// Issue signs a token for the principal.
func (j *JWT) Issue(p domain.Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: p.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.cfg.Issuer,
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.cfg.TTL)),
		},
	}
	if j.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{j.cfg.Audience}
	}
	if p.Admin {
		claims.Role = adminRole
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
