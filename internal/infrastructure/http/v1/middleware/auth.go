package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"hydrostock/internal/core/apperror"
	appctx "hydrostock/internal/core/context"
)

// HeaderRequestedBy carries the actor when no token validator is configured.
const HeaderRequestedBy = "X-Requested-By"

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.UserContext, error)
}

// Auth resolves the actor submitting the request and stores it in the
// request context. With a validator, a bearer token is required. Without one
// (development), the X-Requested-By header names the actor.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user *appctx.UserContext

		if validator == nil {
			actor := strings.TrimSpace(c.GetHeader(HeaderRequestedBy))
			if actor == "" {
				abortUnauthorized(c, "missing "+HeaderRequestedBy+" header")
				return
			}
			user = &appctx.UserContext{UserID: actor}
		} else {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				abortUnauthorized(c, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				abortUnauthorized(c, "invalid authorization header format")
				return
			}

			var err error
			user, err = validator.ValidateToken(parts[1])
			if err != nil {
				_ = c.Error(apperror.NewUnauthorized("invalid token").WithCause(err))
				c.Abort()
				return
			}
		}

		c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
		c.Set("user_id", user.UserID)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
