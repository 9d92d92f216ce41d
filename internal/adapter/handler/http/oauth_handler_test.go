package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	handlers "github.com/wekeepgrowing/accounting-sync/internal/adapter/handler/http"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/accounting-sync/internal/domain/errors"
)

func TestOAuthHandler_Connect(t *testing.T) {
	auth := new(MockAuthorizer)
	var state string
	auth.On("ConnectURL", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { state = args.String(0) }).
		Return("https://appcenter.intuit.com/connect/oauth2?state=x")
	h := handlers.NewQuickBooksOAuthHandler(auth, zap.NewNop())

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/oauth/quickbooks/connect", nil), rec)
	require.NoError(t, h.Connect(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://appcenter.intuit.com/connect/oauth2?state=x", rec.Header().Get(echo.HeaderLocation))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, state, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "/oauth/quickbooks", cookies[0].Path)
	assert.NotEmpty(t, state)
}

func TestOAuthHandler_Callback(t *testing.T) {
	expires := time.Date(2025, 3, 1, 10, 59, 0, 0, time.UTC)

	tests := []struct {
		name   string
		query  string
		cookie string
		setup  func(auth *MockAuthorizer)
		status int
	}{
		{name: "missing code", query: "?realmId=9130&state=s1", status: http.StatusBadRequest},
		{name: "missing realm", query: "?code=abc&state=s1", status: http.StatusBadRequest},
		{name: "state mismatch", query: "?code=abc&realmId=9130&state=s2", cookie: "s1", status: http.StatusBadRequest},
		{
			name:   "connected",
			query:  "?code=abc&realmId=9130&state=s1",
			cookie: "s1",
			setup: func(auth *MockAuthorizer) {
				auth.On("HandleAuthCallback", mock.Anything, "abc", "9130").
					Return(&entity.ProviderToken{Provider: "quickbooks", TenantID: "9130", AccessTokenExpiresAt: expires}, nil)
			},
			status: http.StatusOK,
		},
		{
			name:  "exchange rejected",
			query: "?code=abc&realmId=9130",
			setup: func(auth *MockAuthorizer) {
				auth.On("HandleAuthCallback", mock.Anything, "abc", "9130").
					Return(nil, &domainErrors.RemoteError{Provider: "quickbooks", Op: "exchange code", Err: errors.New("invalid_grant")})
			},
			status: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(MockAuthorizer)
			if tt.setup != nil {
				tt.setup(auth)
			}
			h := handlers.NewQuickBooksOAuthHandler(auth, zap.NewNop())

			req := httptest.NewRequest(http.MethodGet, "/oauth/quickbooks/callback"+tt.query, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "qbo_oauth_state", Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			require.NoError(t, h.Callback(echo.New().NewContext(req, rec)))

			assert.Equal(t, tt.status, rec.Code)
			auth.AssertExpectations(t)
			if tt.setup == nil {
				auth.AssertNotCalled(t, "HandleAuthCallback", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestXeroOAuthHandler_Callback(t *testing.T) {
	expires := time.Date(2025, 3, 1, 10, 29, 0, 0, time.UTC)

	tests := []struct {
		name     string
		query    string
		cookie   string
		setup    func(auth *MockAuthorizer)
		status   int
		wantBody string
	}{
		{name: "missing code", query: "?state=s1", status: http.StatusBadRequest},
		{name: "state mismatch", query: "?code=abc&state=s2", cookie: "s1", status: http.StatusBadRequest},
		{
			name:   "connected without tenant parameter",
			query:  "?code=abc&state=s1",
			cookie: "s1",
			setup: func(auth *MockAuthorizer) {
				auth.On("HandleAuthCallback", mock.Anything, "abc", "").
					Return(&entity.ProviderToken{Provider: "xero", TenantID: "org-1", AccessTokenExpiresAt: expires}, nil)
			},
			status:   http.StatusOK,
			wantBody: `"tenant_id":"org-1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(MockAuthorizer)
			if tt.setup != nil {
				tt.setup(auth)
			}
			h := handlers.NewXeroOAuthHandler(auth, zap.NewNop())

			req := httptest.NewRequest(http.MethodGet, "/oauth/xero/callback"+tt.query, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "xero_oauth_state", Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			require.NoError(t, h.Callback(echo.New().NewContext(req, rec)))

			assert.Equal(t, tt.status, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			auth.AssertExpectations(t)
			if tt.setup == nil {
				auth.AssertNotCalled(t, "HandleAuthCallback", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
