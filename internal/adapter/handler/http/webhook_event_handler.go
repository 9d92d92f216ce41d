package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/middleware/auth"
)

const defaultEventLimit = 50

// WebhookEvents lists, inspects and replays stored webhook events.
type WebhookEvents interface {
	ListEvents(ctx context.Context, status model.WebhookStatus, limit int) ([]*model.WebhookEvent, error)
	GetEvent(ctx context.Context, id string) (*model.WebhookEvent, error)
	Replay(ctx context.Context, limit int) (int, error)
}

type WebhookEventHandler struct {
	events WebhookEvents
	logger *zap.Logger
}

func NewWebhookEventHandler(events WebhookEvents, logger *zap.Logger) *WebhookEventHandler {
	return &WebhookEventHandler{
		events: events,
		logger: logger,
	}
}

// List returns events by status, failed by default.
func (h *WebhookEventHandler) List(c echo.Context) error {
	status := model.WebhookStatus(c.QueryParam("status"))
	switch status {
	case "":
		status = model.WebhookStatusFailed
	case model.WebhookStatusPending, model.WebhookStatusProcessing,
		model.WebhookStatusCompleted, model.WebhookStatusFailed:
	default:
		return badRequest(c, "Invalid status parameter")
	}

	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return badRequest(c, "Invalid limit parameter")
	}

	events, err := h.events.ListEvents(c.Request().Context(), status, limit)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list webhook events", zap.String("status", string(status)))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"events": events,
		"count":  len(events),
	})
}

// Get returns one event with its payload and last error.
func (h *WebhookEventHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return badRequest(c, "Invalid event ID")
	}

	event, err := h.events.GetEvent(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get webhook event", zap.String("event_id", id))
	}
	return c.JSON(http.StatusOK, event)
}

func (h *WebhookEventHandler) Replay(c echo.Context) error {
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return badRequest(c, "Invalid limit parameter")
	}

	ctx := c.Request().Context()
	queued, err := h.events.Replay(ctx, limit)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to replay webhook events")
	}
	h.logger.Info("Webhook events replayed", zap.Int("queued", queued), auth.OperatorField(ctx))

	return c.JSON(http.StatusAccepted, echo.Map{"queued": queued})
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultEventLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, echo.ErrBadRequest
	}
	if limit > 500 {
		limit = 500
	}
	return limit, nil
}
