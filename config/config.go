// Package config assembles the service configuration from a YAML file,
// a .env file, and process environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"

	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/password"
	"github.com/kbukum/authkit/token"
)

// Config is the full service configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging  logger.Config   `yaml:"logging" mapstructure:"logging"`
	Password password.Config `yaml:"password" mapstructure:"password"`
	Token    token.Config    `yaml:"token" mapstructure:"token"`
	HTTP     HTTPConfig      `yaml:"http" mapstructure:"http"`
}

// HTTPConfig configures the HTTP surface, including the refresh cookie.
type HTTPConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`

	// RefreshCookieName is the cookie carrying the refresh token.
	RefreshCookieName string `yaml:"refresh_cookie_name" mapstructure:"refresh_cookie_name"`
	// RefreshCookiePath scopes the cookie to the refresh endpoint so it is
	// not sent on every request.
	RefreshCookiePath string `yaml:"refresh_cookie_path" mapstructure:"refresh_cookie_path"`
	// CookieSecure marks the refresh cookie HTTPS-only. Leave on outside
	// local development.
	CookieSecure bool `yaml:"cookie_secure" mapstructure:"cookie_secure"`

	// LoginRate and LoginBurst bound login attempts per identifier.
	// A zero rate disables throttling.
	LoginRate  float64 `yaml:"login_rate" mapstructure:"login_rate"`
	LoginBurst int     `yaml:"login_burst" mapstructure:"login_burst"`
}

// ApplyDefaults applies default values to HTTP configuration.
func (c *HTTPConfig) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.RefreshCookieName == "" {
		c.RefreshCookieName = "auth_rt"
	}
	if c.RefreshCookiePath == "" {
		c.RefreshCookiePath = "/auth/refresh"
	}
}

// ApplyDefaults applies default values to the whole configuration tree.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	} else {
		c.HTTP.CookieSecure = true
	}
	c.Logging.ApplyDefaults()
	c.Password.ApplyDefaults()
	c.Token.ApplyDefaults()
	c.HTTP.ApplyDefaults()
}

// Validate validates the whole configuration tree. A missing token secret
// is an error here so a misconfigured service fails at startup rather than
// at first login.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Token.Validate(); err != nil {
		return err
	}
	return nil
}
