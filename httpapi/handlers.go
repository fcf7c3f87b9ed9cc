package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/authctx"
	"github.com/kbukum/authkit/authn"
	"github.com/kbukum/authkit/errors"
)

// loginResponse returns the short-lived access token in the body; the
// refresh token is delivered only as a cookie.
type loginResponse struct {
	User        any    `json:"user"`
	AccessToken string `json:"accessToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (a *API) handleRegister(c *gin.Context) {
	var req authn.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.InvalidInput("request body must be valid JSON"))
		return
	}

	user, err := a.auth.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (a *API) handleLogin(c *gin.Context) {
	var req authn.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.InvalidInput("request body must be valid JSON"))
		return
	}

	result, err := a.auth.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	a.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, loginResponse{
		User:        result.User,
		AccessToken: result.AccessToken,
	})
}

func (a *API) handleRefresh(c *gin.Context) {
	refreshToken, err := c.Cookie(a.cfg.RefreshCookieName)
	if err != nil || refreshToken == "" {
		writeError(c, errors.InvalidRefreshToken())
		return
	}

	result, err := a.auth.RefreshSession(c.Request.Context(), refreshToken)
	if err != nil {
		a.clearRefreshCookie(c)
		writeError(c, err)
		return
	}

	// Under rotation the presented token was just invalidated; hand the
	// browser its replacement.
	if result.RefreshToken != "" {
		a.setRefreshCookie(c, result.RefreshToken)
	}
	c.JSON(http.StatusOK, refreshResponse{AccessToken: result.AccessToken})
}

func (a *API) handleLogout(c *gin.Context) {
	subject, err := authctx.Subject(c.Request.Context())
	if err != nil {
		writeError(c, errors.Unauthorized("authentication required"))
		return
	}

	if err := a.auth.Logout(c.Request.Context(), subject); err != nil {
		writeError(c, err)
		return
	}
	a.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

func (a *API) handleMe(c *gin.Context) {
	claims, ok := authctx.Get(c.Request.Context())
	if !ok {
		writeError(c, errors.Unauthorized("authentication required"))
		return
	}

	user, err := a.auth.CurrentUser(c.Request.Context(), claims)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (a *API) setRefreshCookie(c *gin.Context, refreshToken string) {
	maxAge := int(a.tokens.RefreshTokenTTL().Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(a.cfg.RefreshCookieName, refreshToken, maxAge,
		a.cfg.RefreshCookiePath, "", a.cfg.CookieSecure, true)
}

func (a *API) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(a.cfg.RefreshCookieName, "", -1,
		a.cfg.RefreshCookiePath, "", a.cfg.CookieSecure, true)
}
