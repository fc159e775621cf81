package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrRevokedToken = errors.New("token has been revoked")
	ErrWeakSecret   = errors.New("jwt secret must be at least 32 bytes")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Identity is the subject a token is issued for.
type Identity struct {
	ID        string
	Role      string
	IsAdmin   bool
	AdminRole string
}

// Claims represents JWT claims. The session payload is {id, role, isAdmin, adminRole}.
type Claims struct {
	jwt.RegisteredClaims
	ID        string `json:"id"`
	Role      string `json:"role"`
	IsAdmin   bool   `json:"isAdmin"`
	AdminRole string `json:"adminRole,omitempty"`
	Type      string `json:"type"`
	Version   int64  `json:"ver"`
}

// Identity returns the subject carried by the claims.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.ID, Role: c.Role, IsAdmin: c.IsAdmin, AdminRole: c.AdminRole}
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  int64
	RefreshExpiresAt int64
}

// Manager handles JWT operations.
type Manager struct {
	secret          []byte
	accessDuration  time.Duration
	refreshDuration time.Duration
	issuer          string
	versions        VersionStore
	now             func() time.Time
}

// NewManager creates a new JWT manager signing with HS256.
func NewManager(secret string, accessDuration, refreshDuration time.Duration, issuer string, versions VersionStore) (*Manager, error) {
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}
	if versions == nil {
		versions = NewMemoryVersionStore()
	}

	return &Manager{
		secret:          []byte(secret),
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
		issuer:          issuer,
		versions:        versions,
		now:             time.Now,
	}, nil
}

// GenerateTokenPair creates access and refresh tokens for the identity.
func (m *Manager) GenerateTokenPair(ctx context.Context, id Identity) (*TokenPair, error) {
	version, err := m.versions.Current(ctx, id.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read token version: %w", err)
	}

	now := m.now()
	accessExp := now.Add(m.accessDuration)
	refreshExp := now.Add(m.refreshDuration)

	access, err := m.sign(m.claims(id, TokenTypeAccess, version, now, accessExp))
	if err != nil {
		return nil, err
	}

	refresh, err := m.sign(m.claims(id, TokenTypeRefresh, version, now, refreshExp))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp.Unix(),
		RefreshExpiresAt: refreshExp.Unix(),
	}, nil
}

// ValidateToken validates a token of the expected type and returns its claims.
func (m *Manager) ValidateToken(ctx context.Context, tokenString, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if claims.Type != tokenType {
		return nil, ErrInvalidToken
	}

	current, err := m.versions.Current(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read token version: %w", err)
	}
	if claims.Version != current {
		return nil, ErrRevokedToken
	}

	return claims, nil
}

// RevokeUserTokens invalidates every token issued to the user so far.
func (m *Manager) RevokeUserTokens(ctx context.Context, userID string) error {
	_, err := m.versions.Bump(ctx, userID)
	return err
}

func (m *Manager) claims(id Identity, tokenType string, version int64, now, exp time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		ID:        id.ID,
		Role:      id.Role,
		IsAdmin:   id.IsAdmin,
		AdminRole: id.AdminRole,
		Type:      tokenType,
		Version:   version,
	}
}

func (m *Manager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}
