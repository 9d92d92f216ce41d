package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/accounting-sync/internal/domain/errors"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/repository"
)

const (
	// expirySkew is subtracted from every lifetime so a token is never used
	// in its final minute. Lifetimes shorter than two skews lose half instead.
	expirySkew = 60 * time.Second

	// Used when the token endpoint omits a lifetime.
	defaultAccessLifetime  = 30 * time.Minute
	defaultRefreshLifetime = 60 * 24 * time.Hour
)

// TokenManager owns the stored OAuth token of one provider and refreshes it
// on demand.
type TokenManager struct {
	provider string
	repo     repository.TokenRepository
	oauth    provider.OAuthClient
	logger   *zap.Logger
	now      func() time.Time
	refresh  singleflight.Group
}

func NewTokenManager(
	providerType provider.ProviderType,
	repo repository.TokenRepository,
	oauth provider.OAuthClient,
	logger *zap.Logger,
) *TokenManager {
	return &TokenManager{
		provider: string(providerType),
		repo:     repo,
		oauth:    oauth,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// GetAccessToken returns a token that is valid now, refreshing it when the
// access token has expired. Concurrent callers share one refresh.
func (m *TokenManager) GetAccessToken(ctx context.Context) (*entity.ProviderToken, error) {
	token, err := m.repo.Get(ctx, m.provider)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s token: %w", m.provider, err)
	}
	if token == nil {
		return nil, domainErrors.ErrNoToken
	}

	now := m.now()
	if now.Before(token.AccessTokenExpiresAt) {
		return token, nil
	}
	if !now.Before(token.RefreshTokenExpiresAt) {
		m.logger.Warn("Refresh token expired, re-authorization required",
			zap.String("provider", m.provider),
			zap.Time("refresh_expires_at", token.RefreshTokenExpiresAt))
		return nil, domainErrors.ErrRefreshExpired
	}

	v, err, shared := m.refresh.Do(m.provider, func() (interface{}, error) {
		// A refresh that finished after our read has already stored a
		// fresh token.
		latest, err := m.repo.Get(ctx, m.provider)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s token: %w", m.provider, err)
		}
		if latest != nil && m.now().Before(latest.AccessTokenExpiresAt) {
			return latest, nil
		}
		if latest == nil {
			latest = token
		}
		return m.refreshToken(ctx, latest)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		m.logger.Debug("Joined in-flight token refresh", zap.String("provider", m.provider))
	}

	refreshed := *v.(*entity.ProviderToken)
	return &refreshed, nil
}

func (m *TokenManager) refreshToken(ctx context.Context, current *entity.ProviderToken) (*entity.ProviderToken, error) {
	m.logger.Info("Refreshing provider access token", zap.String("provider", m.provider))

	issuedAt := m.now()
	grant, err := m.oauth.Refresh(ctx, current.RefreshToken)
	if err != nil {
		m.logger.Error("Token refresh failed",
			zap.String("provider", m.provider),
			zap.Error(err))
		return nil, fmt.Errorf("failed to refresh %s token: %w", m.provider, err)
	}

	token := m.tokenFromGrant(grant, issuedAt, current.TenantID)
	switch {
	case grant.RefreshToken == "":
		token.RefreshToken = current.RefreshToken
		token.RefreshTokenExpiresAt = current.RefreshTokenExpiresAt
	case grant.RefreshExpiresIn <= 0 && grant.RefreshToken == current.RefreshToken:
		token.RefreshTokenExpiresAt = current.RefreshTokenExpiresAt
	}

	if err := m.repo.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store refreshed %s token: %w", m.provider, err)
	}
	return token, nil
}

// HandleAuthCallback exchanges an authorization code and stores the first
// token for tenantID. An empty tenantID is looked up after the exchange when
// the OAuth client is a provider.TenantResolver.
func (m *TokenManager) HandleAuthCallback(ctx context.Context, code, tenantID string) (*entity.ProviderToken, error) {
	if code == "" {
		return nil, domainErrors.NewValidationError("code", "is required")
	}
	resolver, canResolve := m.oauth.(provider.TenantResolver)
	if tenantID == "" && !canResolve {
		return nil, domainErrors.NewValidationError("realmId", "is required")
	}

	issuedAt := m.now()
	grant, err := m.oauth.ExchangeCode(ctx, code)
	if err != nil {
		m.logger.Error("Authorization code exchange failed",
			zap.String("provider", m.provider),
			zap.Error(err))
		return nil, &domainErrors.RemoteError{Provider: m.provider, Op: "exchange code", Err: err}
	}

	if tenantID == "" {
		tenantID, err = resolver.ResolveTenant(ctx, grant.AccessToken)
		if err != nil {
			m.logger.Error("Tenant lookup failed",
				zap.String("provider", m.provider),
				zap.Error(err))
			return nil, &domainErrors.RemoteError{Provider: m.provider, Op: "resolve tenant", Err: err}
		}
	}

	token := m.tokenFromGrant(grant, issuedAt, tenantID)
	if err := m.repo.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store %s token: %w", m.provider, err)
	}

	m.logger.Info("Provider connected",
		zap.String("provider", m.provider),
		zap.String("tenant_id", tenantID),
		zap.Time("access_expires_at", token.AccessTokenExpiresAt))
	return token, nil
}

// ConnectURL returns the provider consent URL carrying state.
func (m *TokenManager) ConnectURL(state string) string {
	return m.oauth.AuthorizeURL(state)
}

func (m *TokenManager) tokenFromGrant(grant *entity.TokenGrant, issuedAt time.Time, tenantID string) *entity.ProviderToken {
	return &entity.ProviderToken{
		Provider:              m.provider,
		AccessToken:           grant.AccessToken,
		RefreshToken:          grant.RefreshToken,
		AccessTokenExpiresAt:  expiresAt(issuedAt, grant.ExpiresIn, defaultAccessLifetime),
		RefreshTokenExpiresAt: expiresAt(issuedAt, grant.RefreshExpiresIn, defaultRefreshLifetime),
		TenantID:              tenantID,
	}
}

func expiresAt(issuedAt time.Time, seconds int64, fallback time.Duration) time.Time {
	lifetime := time.Duration(seconds) * time.Second
	if lifetime <= 0 {
		lifetime = fallback
	}
	skew := expirySkew
	if lifetime < 2*skew {
		skew = lifetime / 2
	}
	return issuedAt.Add(lifetime - skew)
}
