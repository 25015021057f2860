package middleware

import (
	"net/http"

	"github.com/devmarket/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleGuardConfig holds configuration for the role guard middleware
type RoleGuardConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when access is denied (optional)
	OnDenied func(c *gin.Context, required []identity.Role)
}

// RequireRole creates middleware that admits only users whose role is in
// the allowed set. Every handler behind a protected group goes through
// this single check instead of doing its own role comparison.
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return RequireRoleWithConfig(RoleGuardConfig{}, roles...)
}

// RequireRoleWithConfig creates the role guard with custom config
func RequireRoleWithConfig(cfg RoleGuardConfig, roles ...identity.Role) gin.HandlerFunc {
	allowed := make(map[identity.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			denyRole(c, cfg, roles, "No authentication claims found")
			return
		}

		role := identity.Role(claims.Role)
		if _, ok := allowed[role]; !ok {
			denyRole(c, cfg, roles, "User role not permitted")
			return
		}

		c.Next()
	}
}

// RequireSeller admits sellers and admins
func RequireSeller() gin.HandlerFunc {
	return RequireRole(identity.RoleSeller, identity.RoleAdmin)
}

// RequireAdmin admits admins only
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin)
}

func denyRole(c *gin.Context, cfg RoleGuardConfig, required []identity.Role, reason string) {
	if cfg.Logger != nil {
		names := make([]string, 0, len(required))
		for _, r := range required {
			names = append(names, r.String())
		}
		cfg.Logger.Warn("Role guard denied request",
			zap.String("path", c.Request.URL.Path),
			zap.Strings("required_roles", names),
			zap.String("reason", reason),
		)
	}

	if cfg.OnDenied != nil {
		cfg.OnDenied(c, required)
		return
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_FORBIDDEN",
			"message": "You do not have permission to access this resource",
		},
	})
}
