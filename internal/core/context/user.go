// Package context provides request-scoped values extraction.
package context

import (
	"context"
	"slices"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID      string
	Email       string
	Roles       []string
	Permissions []string
	BranchIDs   []string // Branches the user may report on; empty means all
	IsAdmin     bool

	// Token is the raw bearer token, forwarded to the asset backend.
	Token string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetToken returns the bearer token of the current user or empty string.
func GetToken(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.Token
	}
	return ""
}

// HasPermission checks if user holds a permission. Admins hold all of them.
func HasPermission(ctx context.Context, permission string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return u.IsAdmin || slices.Contains(u.Permissions, permission)
}
