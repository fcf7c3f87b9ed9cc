package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/authctx"
	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/permission"
	"github.com/kbukum/authkit/token"
)

// ClaimsKey is the gin context key holding the validated *token.Claims.
const ClaimsKey = "auth_claims"

// RequireAuth validates the Bearer access token and stores its claims in
// the request context (authctx) and under ClaimsKey for downstream handlers.
func (a *API) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, errors.Unauthorized("Authorization header required"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, errors.Unauthorized("Authorization header must be a Bearer token"))
			return
		}

		claims, err := a.tokens.Validate(parts[1], token.TypeAccess)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(authctx.Set(c.Request.Context(), claims))
		c.Next()
	}
}

// RequirePermission loads the authenticated user and checks the required
// permission against the user's effective set. Mount after RequireAuth.
func (a *API) RequirePermission(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authctx.Get(c.Request.Context())
		if !ok {
			abortWithError(c, errors.Unauthorized("authentication required"))
			return
		}

		user, err := a.auth.CurrentUser(c.Request.Context(), claims)
		if err != nil {
			abortWithError(c, err)
			return
		}

		if !permission.NewUserChecker(user).HasPermission(required) {
			abortWithError(c, errors.Forbidden(required))
			return
		}
		c.Next()
	}
}
