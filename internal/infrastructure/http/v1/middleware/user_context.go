package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "assetdesk/internal/core/context"
	"assetdesk/pkg/logger"
)

// UserContext binds a request logger carrying the user to the request
// context, so domain code logging through logger.Info(ctx, ...) tags every
// line with the caller.
//
// It must run after Auth:
//
//	protected.Use(middleware.Auth(cfg.JWTValidator))
//	protected.Use(middleware.UserContext(cfg.Logger))
func UserContext(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if user := appctx.GetUser(ctx); user != nil && log != nil {
			scoped := log.With("user_email", user.Email)
			if len(user.BranchIDs) > 0 {
				scoped = scoped.With("branch_ids", user.BranchIDs)
			}
			c.Request = c.Request.WithContext(logger.WithLogger(ctx, scoped))
		}
		c.Next()
	}
}
