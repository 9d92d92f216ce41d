package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/wekeepgrowing/accounting-sync/internal/adapter/handler/http"
	"github.com/wekeepgrowing/accounting-sync/internal/config"
	"github.com/wekeepgrowing/accounting-sync/internal/middleware/auth"
	"github.com/wekeepgrowing/accounting-sync/internal/usecase"
	"github.com/wekeepgrowing/accounting-sync/pkg/logger"
)

// Handlers groups the route handlers the server mounts.
type Handlers struct {
	Customers         *handlers.CustomerHandler
	Invoices          *handlers.InvoiceHandler
	Quotes            *handlers.QuoteHandler
	Sync              *handlers.SyncHandler
	WebhookEvents     *handlers.WebhookEventHandler
	XeroOAuth         *handlers.OAuthHandler
	QuickBooksOAuth   *handlers.OAuthHandler
	XeroWebhook       *handlers.XeroWebhookHandler
	QuickBooksWebhook *handlers.QuickBooksWebhookHandler
	// Queue, when set, is reported by /health.
	Queue QueueDepth
}

// QueueDepth reports how many jobs are waiting.
type QueueDepth interface {
	Len(ctx context.Context) (int, error)
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	handlers Handlers
}

func NewServer(cfg *config.Config, log *zap.Logger, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = usecase.NewValidator()
	logger.WithEchoLogger(e, log)

	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())
	if len(cfg.Server.HTTP.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.HTTP.CORSOrigins,
			AllowMethods: []string{echo.GET, echo.POST, echo.PUT},
		}))
	}

	s := &Server{
		config:   cfg,
		logger:   log,
		echo:     e,
		handlers: h,
	}
	s.setupRoutes()
	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.health)

	v1 := s.echo.Group("/api/v1")
	if s.config.JWT.Secret != "" {
		v1.Use(auth.JWTMiddleware(auth.JWTConfig{
			Secret: s.config.JWT.Secret,
			Logger: s.logger,
		}))
	} else {
		s.logger.Warn("JWT secret not configured, /api/v1 is unauthenticated")
	}

	customers := v1.Group("/customers")
	customers.POST("", s.handlers.Customers.Create)
	customers.GET("", s.handlers.Customers.List)
	customers.GET("/:id", s.handlers.Customers.Get)
	customers.PUT("/:xeroId", s.handlers.Customers.Update)

	invoices := v1.Group("/invoices")
	invoices.POST("", s.handlers.Invoices.Create)
	invoices.GET("", s.handlers.Invoices.List)
	invoices.PUT("/:xeroId", s.handlers.Invoices.Update)

	quotes := v1.Group("/quotes")
	quotes.POST("", s.handlers.Quotes.Create)
	quotes.GET("", s.handlers.Quotes.List)
	quotes.PUT("/:xeroId", s.handlers.Quotes.Update)

	sync := v1.Group("/sync")
	sync.POST("/customers/:xeroId/pull", s.handlers.Sync.PullCustomer)
	sync.POST("/invoices/:xeroId/pull", s.handlers.Sync.PullInvoice)
	sync.POST("/quotes/:xeroId/pull", s.handlers.Sync.PullQuote)
	sync.POST("/quotes/poll", s.handlers.Sync.PollQuotes)

	v1.GET("/webhook-events", s.handlers.WebhookEvents.List)
	v1.GET("/webhook-events/:id", s.handlers.WebhookEvents.Get)
	v1.POST("/webhook-events/replay", s.handlers.WebhookEvents.Replay)

	// Provider-facing routes authenticate by OAuth state and HMAC signature.
	if s.handlers.XeroOAuth != nil {
		oauth := s.echo.Group("/oauth/xero")
		oauth.GET("/connect", s.handlers.XeroOAuth.Connect)
		oauth.GET("/callback", s.handlers.XeroOAuth.Callback)
	}
	if s.handlers.QuickBooksOAuth != nil {
		oauth := s.echo.Group("/oauth/quickbooks")
		oauth.GET("/connect", s.handlers.QuickBooksOAuth.Connect)
		oauth.GET("/callback", s.handlers.QuickBooksOAuth.Callback)
	}

	webhooks := s.echo.Group("/webhooks")
	webhooks.POST("/xero", s.handlers.XeroWebhook.Handle)
	webhooks.POST("/quickbooks", s.handlers.QuickBooksWebhook.Handle)
}

func (s *Server) health(c echo.Context) error {
	body := echo.Map{
		"status":  "healthy",
		"service": s.config.Service.Name,
	}
	if s.handlers.Queue == nil {
		return c.JSON(http.StatusOK, body)
	}

	depth, err := s.handlers.Queue.Len(c.Request().Context())
	if err != nil {
		s.logger.Warn("Queue depth unavailable", zap.Error(err))
		body["status"] = "degraded"
		return c.JSON(http.StatusServiceUnavailable, body)
	}
	body["queue_depth"] = depth
	return c.JSON(http.StatusOK, body)
}
