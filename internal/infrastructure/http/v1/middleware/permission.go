// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"assetdesk/internal/core/apperror"
	appctx "assetdesk/internal/core/context"
)

// RequirePermission middleware checks if user has required permission.
// Admins automatically have all permissions.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if user.IsAdmin || slices.Contains(getUserPermissions(c), permission) {
			c.Next()
			return
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_permission", permission),
		)
		c.Abort()
	}
}

// RequireAnyPermission middleware checks if user has any of the required permissions.
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if user.IsAdmin {
			c.Next()
			return
		}

		userPerms := getUserPermissions(c)
		for _, required := range permissions {
			if slices.Contains(userPerms, required) {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_permissions", permissions),
		)
		c.Abort()
	}
}

// getUserPermissions returns the permissions stored by Auth, falling back
// to the user in the request context.
func getUserPermissions(c *gin.Context) []string {
	if perms, exists := c.Get("permissions"); exists {
		if p, ok := perms.([]string); ok {
			return p
		}
	}
	if user := appctx.GetUser(c.Request.Context()); user != nil {
		return user.Permissions
	}
	return nil
}
