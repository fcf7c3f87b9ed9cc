package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthMetrics holds the metric instruments reported by the authentication
// core. A nil *AuthMetrics is valid and records nothing, so callers never
// need to guard instrumentation sites.
type AuthMetrics struct {
	registrations metric.Int64Counter
	logins        metric.Int64Counter
	tokensIssued  metric.Int64Counter
	refreshes     metric.Int64Counter
	hashUpgrades  metric.Int64Counter
}

// NewAuthMetrics creates the auth instrument set on the given meter.
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	registrations, err := meter.Int64Counter("auth.registrations.total",
		metric.WithDescription("Total registration attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.registrations.total counter: %w", err)
	}

	logins, err := meter.Int64Counter("auth.logins.total",
		metric.WithDescription("Total login attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.logins.total counter: %w", err)
	}

	tokensIssued, err := meter.Int64Counter("auth.tokens.issued.total",
		metric.WithDescription("Total tokens issued by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.tokens.issued.total counter: %w", err)
	}

	refreshes, err := meter.Int64Counter("auth.refreshes.total",
		metric.WithDescription("Total session refreshes by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.refreshes.total counter: %w", err)
	}

	hashUpgrades, err := meter.Int64Counter("auth.hash_upgrades.total",
		metric.WithDescription("Total password hash upgrades by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.hash_upgrades.total counter: %w", err)
	}

	return &AuthMetrics{
		registrations: registrations,
		logins:        logins,
		tokensIssued:  tokensIssued,
		refreshes:     refreshes,
		hashUpgrades:  hashUpgrades,
	}, nil
}

// RecordRegistration counts a registration attempt.
func (m *AuthMetrics) RecordRegistration(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordLogin counts a login attempt.
func (m *AuthMetrics) RecordLogin(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordTokenIssued counts an issued token by type.
func (m *AuthMetrics) RecordTokenIssued(ctx context.Context, tokenType string) {
	if m == nil {
		return
	}
	m.tokensIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("type", tokenType)))
}

// RecordRefresh counts a session refresh.
func (m *AuthMetrics) RecordRefresh(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordHashUpgrade counts a password hash upgrade attempt.
func (m *AuthMetrics) RecordHashUpgrade(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.hashUpgrades.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
