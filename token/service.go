// Package token issues, validates, and rotates the signed tokens that prove
// identity: short-lived access tokens and longer-lived refresh tokens.
//
// Tokens are self-contained HS256 JWTs. Validation is a pure cryptographic
// check over the process-wide signing key loaded once at construction; no
// store lookup is involved unless rotation-on-use is enabled, in which case
// refresh tokens additionally carry a generation marker checked against a
// RotationStore.
package token

import (
	stderrors "errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/authkit/errors"
)

// Service issues and validates access/refresh tokens. The signing key is
// immutable after construction, so all methods are safe for concurrent use.
type Service struct {
	cfg      Config
	key      []byte
	rotation RotationStore
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRotationStore supplies the store backing rotation-on-use.
func WithRotationStore(store RotationStore) Option {
	return func(s *Service) { s.rotation = store }
}

// WithClock overrides the service clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a token service. A missing signing secret is a
// construction error: the process must not start without one.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		cfg: cfg,
		key: []byte(cfg.Secret),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.RotateRefresh && s.rotation == nil {
		s.rotation = NewMemoryRotationStore()
	}
	return s, nil
}

// IssueAccessToken signs an access token for the subject with
// expiry = now + AccessTokenTTL.
func (s *Service) IssueAccessToken(subject string) (string, error) {
	return s.sign(subject, TypeAccess, s.cfg.AccessTokenTTL, "")
}

// IssueRefreshToken signs a refresh token for the subject with
// expiry = now + RefreshTokenTTL. With rotation enabled the token carries a
// fresh generation marker that supersedes any earlier one for the subject,
// so only the newest refresh token stays usable.
func (s *Service) IssueRefreshToken(subject string) (string, error) {
	var gen string
	if s.cfg.RotateRefresh {
		gen = uuid.NewString()
		if err := s.rotation.Set(subject, gen); err != nil {
			return "", fmt.Errorf("token: record refresh generation: %w", err)
		}
	}
	return s.sign(subject, TypeRefresh, s.cfg.RefreshTokenTTL, gen)
}

// Validate verifies signature, expiry, and claims, and checks the token is
// of the expected type. Every failure maps to exactly one of TokenExpired
// or TokenMalformed.
func (s *Service) Validate(tokenString string, expected Type) (*Claims, error) {
	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		if stderrors.Is(err, gojwt.ErrTokenExpired) {
			return nil, errors.TokenExpired().WithCause(err)
		}
		return nil, errors.TokenMalformed().WithCause(err)
	}
	if !parsed.Valid {
		return nil, errors.TokenMalformed()
	}
	if claims.Subject == "" {
		return nil, errors.TokenMalformed().WithCause(fmt.Errorf("token: missing subject claim"))
	}
	if claims.TokenType != expected {
		return nil, errors.TokenMalformed().WithCause(
			fmt.Errorf("token: expected %s token, got %q", expected, claims.TokenType))
	}
	return claims, nil
}

// RefreshResult is the outcome of a successful refresh.
type RefreshResult struct {
	Subject     string
	AccessToken string
	// RefreshToken is the rotated replacement; empty when rotation is off.
	RefreshToken string
}

// Refresh validates a refresh token and issues a new access token for the
// same subject. With rotation enabled it additionally invalidates the
// presented token and returns a replacement refresh token; replaying a
// superseded token fails.
func (s *Service) Refresh(refreshToken string) (*RefreshResult, error) {
	claims, err := s.Validate(refreshToken, TypeRefresh)
	if err != nil {
		return nil, err
	}

	result := &RefreshResult{Subject: claims.Subject}

	if s.cfg.RotateRefresh {
		current, err := s.rotation.Current(claims.Subject)
		if err != nil {
			return nil, fmt.Errorf("token: load refresh generation: %w", err)
		}
		if current == "" || current != claims.Generation {
			return nil, errors.InvalidRefreshToken().WithCause(
				fmt.Errorf("token: refresh generation superseded"))
		}
		rotated, err := s.IssueRefreshToken(claims.Subject)
		if err != nil {
			return nil, err
		}
		result.RefreshToken = rotated
	}

	access, err := s.IssueAccessToken(claims.Subject)
	if err != nil {
		return nil, err
	}
	result.AccessToken = access
	return result, nil
}

// Revoke drops the subject's refresh generation so no outstanding refresh
// token can be used again. No-op when rotation is off. Access tokens are
// left to expire naturally either way.
func (s *Service) Revoke(subject string) error {
	if !s.cfg.RotateRefresh {
		return nil
	}
	return s.rotation.Clear(subject)
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *Service) AccessTokenTTL() time.Duration { return s.cfg.AccessTokenTTL }

// RefreshTokenTTL returns the configured refresh token lifetime.
func (s *Service) RefreshTokenTTL() time.Duration { return s.cfg.RefreshTokenTTL }

func (s *Service) sign(subject string, typ Type, ttl time.Duration, gen string) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType:  typ,
		Generation: gen,
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("token: sign %s token: %w", typ, err)
	}
	return signed, nil
}

// keyFunc rejects any signing method other than the configured HS256.
func (s *Service) keyFunc(t *gojwt.Token) (interface{}, error) {
	if t.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("token: unexpected signing method: %s", t.Method.Alg())
	}
	return s.key, nil
}

func (s *Service) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	return opts
}
