// Package authn orchestrates the registration, login, and session-refresh
// flows over the identity store, password policy, and token service.
//
// Ordering inside each flow is deliberate: cheap validations (field format,
// password/confirmation match, strength rules) run before the store lookup
// and the hash computation, so malformed requests fail fast without
// touching the collaborators.
package authn

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/identity"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/observability"
	"github.com/kbukum/authkit/password"
	"github.com/kbukum/authkit/token"
	"github.com/kbukum/authkit/validation"
)

// Service is the authentication core. It is stateless per request; the only
// shared mutable state is the identity store, whose atomicity guarantees it
// relies on for concurrent hash upgrades.
type Service struct {
	store    identity.Store
	hasher   *password.Hasher
	tokens   *token.Service
	throttle *loginThrottle
	metrics  *observability.AuthMetrics
	log      *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches the auth instrument set.
func WithMetrics(m *observability.AuthMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithLoginThrottle enables a per-identifier attempt limiter: rate attempts
// per second refill with the given burst.
func WithLoginThrottle(rate float64, burst int) Option {
	return func(s *Service) { s.throttle = newLoginThrottle(rate, burst) }
}

// NewService creates the authentication core.
func NewService(store identity.Store, hasher *password.Hasher, tokens *token.Service, opts ...Option) *Service {
	s := &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		log:    logger.WithComponent("authn"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates and creates a new user. Failure kinds: INVALID_INPUT
// (missing/malformed fields, confirmation mismatch), WEAK_PASSWORD (first
// unmet strength rule), ALREADY_EXISTS (duplicate email).
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*identity.User, error) {
	ctx, span := observability.StartSpan(ctx, "authn.register")
	defer span.End()

	if err := validation.Validate(req); err != nil {
		s.metrics.RecordRegistration(ctx, "invalid_input")
		return nil, err
	}
	if err := password.ValidateStrength(req.Password); err != nil {
		s.metrics.RecordRegistration(ctx, "weak_password")
		return nil, err
	}

	email := identity.NormalizeEmail(req.Email)
	_, err := s.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.metrics.RecordRegistration(ctx, "duplicate")
		return nil, errors.AlreadyExists("user")
	case !stderrors.Is(err, identity.ErrNotFound):
		s.metrics.RecordRegistration(ctx, "store_error")
		return nil, errors.StoreError(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.metrics.RecordRegistration(ctx, "error")
		return nil, errors.Internal(err)
	}

	user, err := s.store.Save(ctx, &identity.User{
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		// Save may lose a uniqueness race the earlier lookup could not see.
		if stderrors.Is(err, identity.ErrDuplicateEmail) {
			s.metrics.RecordRegistration(ctx, "duplicate")
			return nil, errors.AlreadyExists("user")
		}
		s.metrics.RecordRegistration(ctx, "store_error")
		return nil, errors.StoreError(err)
	}

	s.metrics.RecordRegistration(ctx, "success")
	s.log.Info("user registered", logger.Fields(
		logger.FieldUserID, user.ID.String(),
	))
	return user, nil
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User         *identity.User
	AccessToken  string
	RefreshToken string
}

// Login verifies credentials and issues both tokens. Unknown identifier and
// wrong password surface the same INVALID_CREDENTIALS error so callers
// cannot enumerate accounts; the distinction is logged at debug level only.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	ctx, span := observability.StartSpan(ctx, "authn.login")
	defer span.End()

	if err := validation.Validate(req); err != nil {
		s.metrics.RecordLogin(ctx, "invalid_input")
		return nil, err
	}

	email := identity.NormalizeEmail(req.Email)
	if s.throttle != nil && !s.throttle.Allow(email) {
		s.metrics.RecordLogin(ctx, "throttled")
		return nil, errors.RateLimited()
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, identity.ErrNotFound) {
			s.metrics.RecordLogin(ctx, "unknown_identifier")
			s.log.Debug("login rejected: unknown identifier")
			return nil, errors.InvalidCredentials()
		}
		s.metrics.RecordLogin(ctx, "store_error")
		return nil, errors.StoreError(err)
	}

	matched, shouldUpgrade, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		s.metrics.RecordLogin(ctx, "error")
		return nil, errors.Internal(err)
	}
	if !matched {
		s.metrics.RecordLogin(ctx, "wrong_password")
		s.log.Debug("login rejected: password mismatch", logger.Fields(
			logger.FieldUserID, user.ID.String(),
		))
		return nil, errors.InvalidCredentials()
	}

	if shouldUpgrade {
		s.upgradeHash(ctx, user, req.Password)
	}

	if err := s.store.TouchLastActive(ctx, user.ID); err != nil {
		s.log.Warn("touch last active failed", logger.ErrorFields("login", err))
	}

	access, err := s.tokens.IssueAccessToken(user.Subject())
	if err != nil {
		s.metrics.RecordLogin(ctx, "error")
		return nil, errors.Internal(err)
	}
	refresh, err := s.tokens.IssueRefreshToken(user.Subject())
	if err != nil {
		s.metrics.RecordLogin(ctx, "error")
		return nil, errors.Internal(err)
	}

	s.metrics.RecordLogin(ctx, "success")
	s.metrics.RecordTokenIssued(ctx, string(token.TypeAccess))
	s.metrics.RecordTokenIssued(ctx, string(token.TypeRefresh))
	s.log.Info("user logged in", logger.Fields(
		logger.FieldUserID, user.ID.String(),
	))
	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshSession exchanges a refresh token for a new access token (and,
// under rotation, a replacement refresh token). Every token failure
// collapses to INVALID_REFRESH_TOKEN; the underlying kind is logged only.
func (s *Service) RefreshSession(ctx context.Context, refreshToken string) (*token.RefreshResult, error) {
	ctx, span := observability.StartSpan(ctx, "authn.refresh")
	defer span.End()

	result, err := s.tokens.Refresh(refreshToken)
	if err != nil {
		s.metrics.RecordRefresh(ctx, "rejected")
		s.log.Debug("refresh rejected", logger.Fields(
			logger.FieldError, err.Error(),
		))
		return nil, errors.InvalidRefreshToken()
	}

	s.metrics.RecordRefresh(ctx, "success")
	s.metrics.RecordTokenIssued(ctx, string(token.TypeAccess))
	if result.RefreshToken != "" {
		s.metrics.RecordTokenIssued(ctx, string(token.TypeRefresh))
	}
	return result, nil
}

// Logout revokes the subject's outstanding refresh tokens where rotation
// tracking makes that possible. Access tokens are left to expire.
func (s *Service) Logout(ctx context.Context, subject string) error {
	_, span := observability.StartSpan(ctx, "authn.logout")
	defer span.End()

	if err := s.tokens.Revoke(subject); err != nil {
		return errors.Internal(err)
	}
	return nil
}

// CurrentUser loads the user behind validated claims, with roles and
// permissions populated for authorization decisions.
func (s *Service) CurrentUser(ctx context.Context, claims *token.Claims) (*identity.User, error) {
	id, err := identityIDFromSubject(claims.Subject)
	if err != nil {
		return nil, errors.TokenMalformed().WithCause(err)
	}
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, identity.ErrNotFound) {
			return nil, errors.NotFound("user")
		}
		return nil, errors.StoreError(err)
	}
	return user, nil
}

// upgradeHash re-hashes a verified password under the current algorithm and
// persists it with compare-and-swap. Losing the swap means a concurrent
// login already upgraded; that is success, not failure.
func (s *Service) upgradeHash(ctx context.Context, user *identity.User, plaintext string) {
	newHash, err := s.hasher.Hash(plaintext)
	if err != nil {
		s.metrics.RecordHashUpgrade(ctx, "error")
		s.log.Warn("hash upgrade failed", logger.ErrorFields("hash", err))
		return
	}

	err = s.store.UpdatePasswordHash(ctx, user.ID, user.PasswordHash, newHash)
	switch {
	case err == nil:
		user.PasswordHash = newHash
		s.metrics.RecordHashUpgrade(ctx, "success")
		s.log.Info("password hash upgraded", logger.Fields(
			logger.FieldUserID, user.ID.String(),
			logger.FieldAlgorithm, string(password.CurrentAlgorithm),
		))
	case stderrors.Is(err, identity.ErrStaleHash):
		s.metrics.RecordHashUpgrade(ctx, "lost_race")
		s.log.Debug("hash upgrade lost to concurrent login", logger.Fields(
			logger.FieldUserID, user.ID.String(),
		))
	default:
		s.metrics.RecordHashUpgrade(ctx, "error")
		s.log.Warn("hash upgrade persist failed", logger.ErrorFields("update", err))
	}
}
