package token

import (
	"errors"
	"time"
)

// Config configures the token service.
type Config struct {
	// Secret is the HMAC signing key. Required: the service refuses to
	// construct without it, so a misconfigured process fails at startup
	// rather than per request.
	Secret string `mapstructure:"secret"`

	// Issuer is the "iss" claim (optional, enforced on validation when set).
	Issuer string `mapstructure:"issuer"`

	// AccessTokenTTL is the lifetime of access tokens (default: 15m).
	// Access tokens are never revoked, only left to expire.
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`

	// RefreshTokenTTL is the lifetime of refresh tokens (default: 7d).
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`

	// RotateRefresh enables rotation-on-use: each refresh invalidates the
	// presented refresh token and issues a replacement. Requires a
	// RotationStore on the service.
	RotateRefresh bool `mapstructure:"rotate_refresh"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 15 * time.Minute
	}
	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = 7 * 24 * time.Hour
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("token: signing secret is required")
	}
	if c.AccessTokenTTL < 0 || c.RefreshTokenTTL < 0 {
		return errors.New("token: TTLs must be positive")
	}
	return nil
}
