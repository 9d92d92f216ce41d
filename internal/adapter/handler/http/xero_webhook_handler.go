package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
)

const xeroSignatureHeader = "x-xero-signature"

// EventIngester stores verified webhook events and queues them.
type EventIngester interface {
	Ingest(ctx context.Context, events []*model.WebhookEvent) (int, error)
}

type xeroWebhookPayload struct {
	Events             []xeroWebhookEvent `json:"events"`
	FirstEventSequence int                `json:"firstEventSequence"`
	LastEventSequence  int                `json:"lastEventSequence"`
	Entropy            string             `json:"entropy"`
}

type xeroWebhookEvent struct {
	ResourceURL   string `json:"resourceUrl"`
	ResourceID    string `json:"resourceId"`
	TenantID      string `json:"tenantId"`
	TenantType    string `json:"tenantType"`
	EventCategory string `json:"eventCategory"`
	EventType     string `json:"eventType"`
	EventDateUTC  string `json:"eventDateUtc"`
}

type XeroWebhookHandler struct {
	ingester   EventIngester
	webhookKey string
	logger     *zap.Logger
}

func NewXeroWebhookHandler(ingester EventIngester, webhookKey string, logger *zap.Logger) *XeroWebhookHandler {
	return &XeroWebhookHandler{
		ingester:   ingester,
		webhookKey: webhookKey,
		logger:     logger,
	}
}

// Handle verifies the signature and acknowledges quickly; processing happens
// in the queue workers. The intent-to-receive handshake is a signed request
// with no events and gets the same treatment.
func (h *XeroWebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body", zap.Error(err))
		return badRequest(c, "Failed to read request body")
	}

	if !validSignature(body, h.webhookKey, c.Request().Header.Get(xeroSignatureHeader)) {
		h.logger.Warn("Invalid Xero webhook signature", zap.Int("body_size", len(body)))
		return c.NoContent(http.StatusUnauthorized)
	}

	var payload xeroWebhookPayload
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			h.logger.Warn("Failed to parse Xero webhook payload", zap.Error(err))
			return badRequest(c, "Invalid webhook payload")
		}
	}

	events := make([]*model.WebhookEvent, 0, len(payload.Events))
	for _, ev := range payload.Events {
		raw, _ := json.Marshal(ev)
		category := strings.ToUpper(ev.EventCategory)
		events = append(events, &model.WebhookEvent{
			Provider:   string(provider.ProviderTypeXero),
			EventKey:   category + ":" + ev.ResourceID + ":" + ev.EventDateUTC,
			EventType:  category,
			Operation:  ev.EventType,
			ResourceID: ev.ResourceID,
			TenantID:   ev.TenantID,
			Payload:    string(raw),
			Status:     model.WebhookStatusPending,
			OccurredAt: parseEventTime(ev.EventDateUTC),
		})
	}

	if len(events) == 0 {
		h.logger.Info("Xero webhook handshake acknowledged")
		return c.NoContent(http.StatusOK)
	}

	queued, err := h.ingester.Ingest(c.Request().Context(), events)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to record Xero webhook events")
	}

	h.logger.Info("Xero webhook accepted",
		zap.Int("events", len(events)),
		zap.Int("queued", queued),
		zap.Int("last_sequence", payload.LastEventSequence))
	return c.NoContent(http.StatusOK)
}
