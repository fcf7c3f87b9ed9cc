// Package httpapi exposes the authentication core over HTTP.
//
// Access tokens travel in the Authorization header; refresh tokens travel
// in an HttpOnly cookie scoped to the refresh path, so browser scripts
// never see them.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/authn"
	"github.com/kbukum/authkit/config"
	"github.com/kbukum/authkit/token"
)

// API wires the authentication core to HTTP routes.
type API struct {
	auth   *authn.Service
	tokens *token.Service
	cfg    config.HTTPConfig
}

// New creates the HTTP API over the given services.
func New(cfg config.HTTPConfig, auth *authn.Service, tokens *token.Service) *API {
	return &API{auth: auth, tokens: tokens, cfg: cfg}
}

// Register mounts the auth routes on the router.
func (a *API) Register(r gin.IRouter) {
	grp := r.Group("/auth")
	grp.POST("/register", a.handleRegister)
	grp.POST("/login", a.handleLogin)
	grp.POST("/refresh", a.handleRefresh)

	authed := grp.Group("")
	authed.Use(a.RequireAuth())
	authed.POST("/logout", a.handleLogout)
	authed.GET("/me", a.handleMe)
}

// NewRouter builds a standalone engine with the auth routes mounted.
func NewRouter(cfg config.HTTPConfig, auth *authn.Service, tokens *token.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	New(cfg, auth, tokens).Register(r)
	return r
}
