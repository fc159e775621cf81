package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blackicons2020/skillskonnect-sub001/pkg/jwt"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/response"
)

const (
	UserIDKey     = log.FieldUserID
	RoleKey       = log.FieldRole
	IsAdminKey    = "is_admin"
	AdminRoleKey  = log.FieldAdminRole
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	TokenQueryKey = "token"
)

// TokenValidator validates access tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token, tokenType string) (*jwt.Claims, error)
}

// AuthMiddleware validates bearer JWTs and exposes the session on the Gin context.
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAuth returns a Gin middleware that validates the bearer token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		m.authenticate(c, strings.TrimPrefix(authHeader, BearerPrefix))
	}
}

// RequireAuthQuery authenticates with the "token" query parameter, falling back
// to the Authorization header. Browsers cannot set headers on WebSocket upgrades.
func (m *AuthMiddleware) RequireAuthQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query(TokenQueryKey)
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader(AuthHeaderKey), BearerPrefix)
		}
		if token == "" {
			abortUnauthorized(c, "missing token")
			return
		}

		m.authenticate(c, token)
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, token string) {
	claims, err := m.validator.ValidateToken(c.Request.Context(), token, jwt.TokenTypeAccess)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			abortUnauthorized(c, "token has expired")
		case errors.Is(err, jwt.ErrRevokedToken):
			abortUnauthorized(c, "token has been revoked")
		case errors.Is(err, jwt.ErrInvalidToken):
			abortUnauthorized(c, "invalid token")
		default:
			l := log.Ctx(c.Request.Context())
			l.Error().Err(err).Msg("failed to validate token")
			response.InternalError(c, "failed to validate token")
			c.Abort()
		}
		return
	}

	c.Set(UserIDKey, claims.ID)
	c.Set(RoleKey, claims.Role)
	c.Set(IsAdminKey, claims.IsAdmin)
	c.Set(AdminRoleKey, claims.AdminRole)

	c.Next()
}

// RequireRole allows only sessions whose role is one of roles.
// Must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "this action requires role: "+strings.Join(roles, " or "))
		c.Abort()
	}
}

// RequireAdmin allows only admin sessions. When adminRoles is non-empty the
// session's admin role must be one of them; super_admin always passes.
// Must run after RequireAuth.
func RequireAdmin(adminRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		if len(adminRoles) == 0 {
			c.Next()
			return
		}

		adminRole := GetAdminRole(c)
		if adminRole == SuperAdminRole {
			c.Next()
			return
		}
		for _, r := range adminRoles {
			if r == adminRole {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "insufficient admin role")
		c.Abort()
	}
}

// SuperAdminRole bypasses every admin role check.
const SuperAdminRole = "super_admin"

func abortUnauthorized(c *gin.Context, message string) {
	response.Unauthorized(c, message)
	c.Abort()
}

// GetUserID extracts user ID from Gin context.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetRole extracts the session role from Gin context.
func GetRole(c *gin.Context) string {
	return c.GetString(RoleKey)
}

// IsAdmin reports whether the session belongs to an admin.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(IsAdminKey)
}

// GetAdminRole extracts the admin role from Gin context.
func GetAdminRole(c *gin.Context) string {
	return c.GetString(AdminRoleKey)
}
