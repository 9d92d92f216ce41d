package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
)

const quickBooksSignatureHeader = "intuit-signature"

type quickBooksWebhookPayload struct {
	EventNotifications []struct {
		RealmID         string `json:"realmId"`
		DataChangeEvent struct {
			Entities []quickBooksEntityChange `json:"entities"`
		} `json:"dataChangeEvent"`
	} `json:"eventNotifications"`
}

type quickBooksEntityChange struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Operation   string `json:"operation"`
	LastUpdated string `json:"lastUpdated"`
}

type QuickBooksWebhookHandler struct {
	ingester EventIngester
	verifier string
	logger   *zap.Logger
}

func NewQuickBooksWebhookHandler(ingester EventIngester, verifier string, logger *zap.Logger) *QuickBooksWebhookHandler {
	return &QuickBooksWebhookHandler{
		ingester: ingester,
		verifier: verifier,
		logger:   logger,
	}
}

func (h *QuickBooksWebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body", zap.Error(err))
		return badRequest(c, "Failed to read request body")
	}

	if !validSignature(body, h.verifier, c.Request().Header.Get(quickBooksSignatureHeader)) {
		h.logger.Warn("Invalid QuickBooks webhook signature", zap.Int("body_size", len(body)))
		return c.NoContent(http.StatusUnauthorized)
	}

	var payload quickBooksWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("Failed to parse QuickBooks webhook payload", zap.Error(err))
		return badRequest(c, "Invalid webhook payload")
	}

	var events []*model.WebhookEvent
	for _, notification := range payload.EventNotifications {
		for _, change := range notification.DataChangeEvent.Entities {
			raw, _ := json.Marshal(change)
			events = append(events, &model.WebhookEvent{
				Provider:   string(provider.ProviderTypeQuickBooks),
				EventKey:   change.Name + ":" + change.ID + ":" + change.Operation + ":" + change.LastUpdated,
				EventType:  change.Name,
				Operation:  change.Operation,
				ResourceID: change.ID,
				TenantID:   notification.RealmID,
				Payload:    string(raw),
				Status:     model.WebhookStatusPending,
				OccurredAt: parseEventTime(change.LastUpdated),
			})
		}
	}

	if len(events) == 0 {
		return c.NoContent(http.StatusOK)
	}

	queued, err := h.ingester.Ingest(c.Request().Context(), events)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to record QuickBooks webhook events")
	}

	h.logger.Info("QuickBooks webhook accepted",
		zap.Int("events", len(events)),
		zap.Int("queued", queued))
	return c.NoContent(http.StatusOK)
}
