package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/accounting-sync/internal/domain/errors"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
	"github.com/wekeepgrowing/accounting-sync/internal/usecase"
)

func TestTokenManager_GetAccessToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("no stored token", func(t *testing.T) {
		repo := new(MockTokenRepository)
		oauth := new(MockOAuthClient)
		repo.On("Get", ctx, "quickbooks").Return(nil, nil)

		manager := usecase.NewTokenManager(provider.ProviderTypeQuickBooks, repo, oauth, zap.NewNop()).WithClock(clock)
		token, err := manager.GetAccessToken(ctx)

		assert.Nil(t, token)
		assert.ErrorIs(t, err, domainErrors.ErrNoToken)
		oauth.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	})

	t.Run("valid access token is returned as stored", func(t *testing.T) {
		repo := new(MockTokenRepository)
		oauth := new(MockOAuthClient)
		stored := &entity.ProviderToken{
			Provider:              "quickbooks",
			AccessToken:           "access-1",
			RefreshToken:          "refresh-1",
			AccessTokenExpiresAt:  now.Add(10 * time.Minute),
			RefreshTokenExpiresAt: now.Add(24 * time.Hour),
			TenantID:              "realm-1",
		}
		repo.On("Get", ctx, "quickbooks").Return(stored, nil)

		manager := usecase.NewTokenManager(provider.ProviderTypeQuickBooks, repo, oauth, zap.NewNop()).WithClock(clock)
		token, err := manager.GetAccessToken(ctx)

		require.NoError(t, err)
		assert.Equal(t, "access-1", token.AccessToken)
		oauth.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("expired access token triggers exactly one refresh", func(t *testing.T) {
		repo := new(MockTokenRepository)
		oauth := new(MockOAuthClient)
		stored := &entity.ProviderToken{
			Provider:              "quickbooks",
			AccessToken:           "access-1",
			RefreshToken:          "refresh-1",
			AccessTokenExpiresAt:  now.Add(-time.Minute),
			RefreshTokenExpiresAt: now.Add(24 * time.Hour),
			TenantID:              "realm-1",
		}
		repo.On("Get", ctx, "quickbooks").Return(stored, nil)
		oauth.On("Refresh", ctx, "refresh-1").Return(&entity.TokenGrant{
			AccessToken:      "access-2",
			RefreshToken:     "refresh-2",
			ExpiresIn:        3600,
			RefreshExpiresIn: 8726400,
		}, nil).Once()

		var saved *entity.ProviderToken
		repo.On("Save", ctx, mock.AnythingOfType("*entity.ProviderToken")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*entity.ProviderToken) }).
			Return(nil).Once()

		manager := usecase.NewTokenManager(provider.ProviderTypeQuickBooks, repo, oauth, zap.NewNop()).WithClock(clock)
		token, err := manager.GetAccessToken(ctx)

		require.NoError(t, err)
		assert.Equal(t, "access-2", token.AccessToken)
		assert.Equal(t, "refresh-2", token.RefreshToken)
		assert.Equal(t, "realm-1", token.TenantID)
		assert.Equal(t, now.Add(59*time.Minute), token.AccessTokenExpiresAt)
		assert.Equal(t, now.Add(8726400*time.Second-time.Minute), token.RefreshTokenExpiresAt)
		require.NotNil(t, saved)
		assert.Equal(t, "access-2", saved.AccessToken)
		oauth.AssertNumberOfCalls(t, "Refresh", 1)
	})

	t.Run("refresh keeps the old refresh token when none is returned", func(t *testing.T) {
		repo := new(MockTokenRepository)
		oauth := new(MockOAuthClient)
		refreshExpiry := now.Add(48 * time.Hour)
		repo.On("Get", ctx, "quickbooks").Return(&entity.ProviderToken{
			Provider:              "quickbooks",
			AccessToken:           "access-1",
			RefreshToken:          "refresh-1",
			AccessTokenExpiresAt:  now,
			RefreshTokenExpiresAt: refreshExpiry,
		}, nil)
		oauth.On("Refresh", ctx, "refresh-1").Return(&entity.TokenGrant{AccessToken: "access-2", ExpiresIn: 3600}, nil)
		repo.On("Save", ctx, mock.Anything).Return(nil)

		manager := usecase.NewTokenManager(provider.ProviderTypeQuickBooks, repo, oauth, zap.NewNop()).WithClock(clock)
		token, err := manager.GetAccessToken(ctx)

		require.NoError(t, err)
		assert.Equal(t, "refresh-1", token.RefreshToken)
		assert.Equal(t, refreshExpiry, token.RefreshTokenExpiresAt)
	})

	t.Run("expired refresh token fails without calling the token endpoint", func(t *testing.T) {
		repo := new(MockTokenRepository)
		oauth := new(MockOAuthClient)
		repo.On("Get", ctx, "quickbooks").Return(&entity.ProviderToken{
			Provider:              "quickbooks",
			AccessToken:           "access-1",
			RefreshToken:          "refresh-1",
			AccessTokenExpiresAt:  now.Add(-time.Hour),
			RefreshTokenExpiresAt: now.Add(-time.Second),
		}, nil)

		manager := usecase.NewTokenManager(provider.ProviderTypeQuickBooks, repo, oauth, zap.NewNop()).WithClock(clock)
		token, err := manager.GetAccessToken(ctx)

		assert.Nil(t, token)
		assert.ErrorIs(t, err, domainErrors.ErrRefreshExpired)
		oauth.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	})

	t.Run("refresh failure is returned", func(t *testing.T) {
		repo := new(MockTokenRepository)
		oauth := new(MockOAuthClient)
		repo.On("Get", ctx, "quickbooks").Return(&entity.ProviderToken{
			Provider:              "quickbooks",
			RefreshToken:          "refresh-1",
			AccessTokenExpiresAt:  now.Add(-time.Hour),
			RefreshTokenExpiresAt: now.Add(time.Hour),
		}, nil)
		oauth.On("Refresh", ctx, "refresh-1").Return(nil, errors.New("invalid_grant"))

		manager := usecase.NewTokenManager(provider.ProviderTypeQuickBooks, repo, oauth, zap.NewNop()).WithClock(clock)
		_, err := manager.GetAccessToken(ctx)

		assert.ErrorContains(t, err, "invalid_grant")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

// memoryTokenRepository stores one token per provider and counts reads.
type memoryTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]entity.ProviderToken
	gets   int
}

func (r *memoryTokenRepository) Get(ctx context.Context, provider string) (*entity.ProviderToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	token, ok := r.tokens[provider]
	if !ok {
		return nil, nil
	}
	return &token, nil
}

func (r *memoryTokenRepository) Save(ctx context.Context, token *entity.ProviderToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Provider] = *token
	return nil
}

func (r *memoryTokenRepository) getCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}

func TestTokenManager_ConcurrentCallersShareOneRefresh(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := &memoryTokenRepository{tokens: map[string]entity.ProviderToken{
		"quickbooks": {
			Provider:              "quickbooks",
			RefreshToken:          "refresh-1",
			AccessTokenExpiresAt:  now.Add(-time.Minute),
			RefreshTokenExpiresAt: now.Add(time.Hour),
		},
	}}

	oauth := new(MockOAuthClient)
	release := make(chan time.Time)
	oauth.On("Refresh", ctx, "refresh-1").
		WaitUntil(release).
		Return(&entity.TokenGrant{AccessToken: "access-2", RefreshToken: "refresh-2", ExpiresIn: 3600, RefreshExpiresIn: 86400}, nil)

	manager := usecase.NewTokenManager(provider.ProviderTypeQuickBooks, repo, oauth, zap.NewNop()).
		WithClock(func() time.Time { return now })

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			token, err := manager.GetAccessToken(ctx)
			errs[i] = err
			if token != nil {
				results[i] = token.AccessToken
			}
		}(i)
	}

	// Every caller has read the expired token and one of them holds the
	// refresh open.
	require.Eventually(t, func() bool {
		return repo.getCount() >= callers+1
	}, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "access-2", results[i])
	}
	oauth.AssertNumberOfCalls(t, "Refresh", 1)

	stored, err := repo.Get(ctx, "quickbooks")
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", stored.RefreshToken)
}

func TestTokenManager_RefreshAfterCompletedRefresh(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	expired := &entity.ProviderToken{
		Provider:              "xero",
		RefreshToken:          "refresh-1",
		AccessTokenExpiresAt:  now.Add(-time.Minute),
		RefreshTokenExpiresAt: now.Add(time.Hour),
	}
	fresh := &entity.ProviderToken{
		Provider:              "xero",
		AccessToken:           "access-2",
		RefreshToken:          "refresh-2",
		AccessTokenExpiresAt:  now.Add(time.Hour),
		RefreshTokenExpiresAt: now.Add(24 * time.Hour),
	}

	repo := new(MockTokenRepository)
	oauth := new(MockOAuthClient)
	repo.On("Get", ctx, "xero").Return(expired, nil).Once()
	repo.On("Get", ctx, "xero").Return(fresh, nil).Once()

	manager := usecase.NewTokenManager(provider.ProviderTypeXero, repo, oauth, zap.NewNop()).
		WithClock(func() time.Time { return now })
	token, err := manager.GetAccessToken(ctx)

	require.NoError(t, err)
	assert.Equal(t, "access-2", token.AccessToken)
	oauth.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTokenManager_GrantLifetimes(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	currentRefreshExpiry := now.Add(40 * 24 * time.Hour)

	tests := []struct {
		name              string
		grant             *entity.TokenGrant
		wantAccessExpiry  time.Time
		wantRefreshExpiry time.Time
	}{
		{
			name:              "same refresh token without lifetime keeps stored expiry",
			grant:             &entity.TokenGrant{AccessToken: "a", RefreshToken: "refresh-1", ExpiresIn: 1800},
			wantAccessExpiry:  now.Add(29 * time.Minute),
			wantRefreshExpiry: currentRefreshExpiry,
		},
		{
			name:              "rotated refresh token without lifetime gets default",
			grant:             &entity.TokenGrant{AccessToken: "a", RefreshToken: "refresh-2", ExpiresIn: 1800},
			wantAccessExpiry:  now.Add(29 * time.Minute),
			wantRefreshExpiry: now.Add(60*24*time.Hour - time.Minute),
		},
		{
			name:              "short access lifetime loses half",
			grant:             &entity.TokenGrant{AccessToken: "a", RefreshToken: "refresh-2", ExpiresIn: 60, RefreshExpiresIn: 86400},
			wantAccessExpiry:  now.Add(30 * time.Second),
			wantRefreshExpiry: now.Add(24*time.Hour - time.Minute),
		},
		{
			name:              "missing access lifetime gets default",
			grant:             &entity.TokenGrant{AccessToken: "a", RefreshToken: "refresh-2", RefreshExpiresIn: 86400},
			wantAccessExpiry:  now.Add(29 * time.Minute),
			wantRefreshExpiry: now.Add(24*time.Hour - time.Minute),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTokenRepository)
			oauth := new(MockOAuthClient)
			repo.On("Get", ctx, "xero").Return(&entity.ProviderToken{
				Provider:              "xero",
				RefreshToken:          "refresh-1",
				AccessTokenExpiresAt:  now.Add(-time.Minute),
				RefreshTokenExpiresAt: currentRefreshExpiry,
			}, nil)
			oauth.On("Refresh", ctx, "refresh-1").Return(tt.grant, nil)
			repo.On("Save", ctx, mock.Anything).Return(nil)

			manager := usecase.NewTokenManager(provider.ProviderTypeXero, repo, oauth, zap.NewNop()).
				WithClock(func() time.Time { return now })
			token, err := manager.GetAccessToken(ctx)

			require.NoError(t, err)
			assert.Equal(t, tt.wantAccessExpiry, token.AccessTokenExpiresAt)
			assert.Equal(t, tt.wantRefreshExpiry, token.RefreshTokenExpiresAt)
			assert.True(t, now.Before(token.AccessTokenExpiresAt))
		})
	}
}

func TestTokenManager_HandleAuthCallback(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tests := []struct {
		name    string
		code    string
		realmID string
		field   string
	}{
		{name: "missing code", code: "", realmID: "realm-1", field: "code"},
		{name: "missing realm", code: "auth-code", realmID: "", field: "realmId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTokenRepository)
			oauth := new(MockOAuthClient)
			manager := usecase.NewTokenManager(provider.ProviderTypeQuickBooks, repo, oauth, zap.NewNop()).WithClock(clock)

			_, err := manager.HandleAuthCallback(ctx, tt.code, tt.realmID)

			var validationErr *domainErrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields, tt.field)
			oauth.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything)
		})
	}

	t.Run("stores the first token", func(t *testing.T) {
		repo := new(MockTokenRepository)
		oauth := new(MockOAuthClient)
		oauth.On("ExchangeCode", ctx, "auth-code").Return(&entity.TokenGrant{
			AccessToken:      "access-1",
			RefreshToken:     "refresh-1",
			ExpiresIn:        3600,
			RefreshExpiresIn: 86400,
		}, nil)
		repo.On("Save", ctx, mock.MatchedBy(func(token *entity.ProviderToken) bool {
			return token.Provider == "quickbooks" && token.TenantID == "realm-1" && token.AccessToken == "access-1"
		})).Return(nil)

		manager := usecase.NewTokenManager(provider.ProviderTypeQuickBooks, repo, oauth, zap.NewNop()).WithClock(clock)
		token, err := manager.HandleAuthCallback(ctx, "auth-code", "realm-1")

		require.NoError(t, err)
		assert.Equal(t, now.Add(59*time.Minute), token.AccessTokenExpiresAt)
		repo.AssertExpectations(t)
	})

	t.Run("tenant is resolved when the callback names none", func(t *testing.T) {
		repo := new(MockTokenRepository)
		oauth := new(MockTenantOAuthClient)
		oauth.On("ExchangeCode", ctx, "auth-code").Return(&entity.TokenGrant{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresIn:    1800,
		}, nil)
		oauth.On("ResolveTenant", ctx, "access-1").Return("org-1", nil)
		repo.On("Save", ctx, mock.MatchedBy(func(token *entity.ProviderToken) bool {
			return token.Provider == "xero" && token.TenantID == "org-1"
		})).Return(nil)

		manager := usecase.NewTokenManager(provider.ProviderTypeXero, repo, oauth, zap.NewNop()).WithClock(clock)
		token, err := manager.HandleAuthCallback(ctx, "auth-code", "")

		require.NoError(t, err)
		assert.Equal(t, "org-1", token.TenantID)
		assert.Equal(t, now.Add(60*24*time.Hour-time.Minute), token.RefreshTokenExpiresAt)
		repo.AssertExpectations(t)
	})

	t.Run("tenant lookup failure stores nothing", func(t *testing.T) {
		repo := new(MockTokenRepository)
		oauth := new(MockTenantOAuthClient)
		oauth.On("ExchangeCode", ctx, "auth-code").Return(&entity.TokenGrant{AccessToken: "access-1"}, nil)
		oauth.On("ResolveTenant", ctx, "access-1").Return("", errors.New("no organisation"))

		manager := usecase.NewTokenManager(provider.ProviderTypeXero, repo, oauth, zap.NewNop()).WithClock(clock)
		_, err := manager.HandleAuthCallback(ctx, "auth-code", "")

		assert.ErrorContains(t, err, "no organisation")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("exchange failure is a remote error", func(t *testing.T) {
		repo := new(MockTokenRepository)
		oauth := new(MockOAuthClient)
		oauth.On("ExchangeCode", ctx, "bad-code").Return(nil, &provider.ProviderError{
			Provider:   provider.ProviderTypeQuickBooks,
			StatusCode: 400,
			Message:    "invalid_grant",
		})

		manager := usecase.NewTokenManager(provider.ProviderTypeQuickBooks, repo, oauth, zap.NewNop()).WithClock(clock)
		_, err := manager.HandleAuthCallback(ctx, "bad-code", "realm-1")

		assert.ErrorIs(t, err, domainErrors.ErrRemoteWriteFailed)
		var providerErr *provider.ProviderError
		assert.ErrorAs(t, err, &providerErr)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestTokenManager_ConnectURL(t *testing.T) {
	oauth := new(MockOAuthClient)
	oauth.On("AuthorizeURL", "state-1").Return("https://appcenter.intuit.com/connect/oauth2?state=state-1")

	manager := usecase.NewTokenManager(provider.ProviderTypeQuickBooks, new(MockTokenRepository), oauth, zap.NewNop())

	assert.Equal(t, "https://appcenter.intuit.com/connect/oauth2?state=state-1", manager.ConnectURL("state-1"))
}
