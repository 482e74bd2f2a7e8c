package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
	"github.com/detailiq/dashboard-system/internal/pkg/metrics"
)

const maxWebhookBody = 1 << 20

// WebhookHandler applies identity-provider and billing deliveries. Signature
// checks run in middleware before these handlers.
type WebhookHandler struct {
	service ports.WebhookService
}

func NewWebhookHandler(service ports.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// Identity handles POST /webhooks/identity.
//
// @Summary      Identity-provider events (user.created)
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        svix-id         header    string  true  "Delivery id"
// @Param        svix-timestamp  header    string  true  "Unix seconds"
// @Param        svix-signature  header    string  true  "v1,<base64 signature> list"
// @Success      200             {object}  webhookResponse
// @Failure      400             {object}  errorResponse
// @Failure      401             {object}  errorResponse
// @Router       /webhooks/identity [post]
func (h *WebhookHandler) Identity(c echo.Context) error {
	return h.handle(c, "identity", h.service.HandleIdentityEvent)
}

// Billing handles POST /webhooks/billing.
//
// @Summary      Billing events (subscription.created, subscription.updated)
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        svix-id         header    string  true  "Delivery id"
// @Param        svix-timestamp  header    string  true  "Unix seconds"
// @Param        svix-signature  header    string  true  "v1,<base64 signature> list"
// @Success      200             {object}  webhookResponse
// @Failure      400             {object}  errorResponse
// @Failure      401             {object}  errorResponse
// @Router       /webhooks/billing [post]
func (h *WebhookHandler) Billing(c echo.Context) error {
	return h.handle(c, "billing", h.service.HandleBillingEvent)
}

type webhookFunc func(ctx context.Context, payload []byte) (ports.WebhookOutcome, error)

func (h *WebhookHandler) handle(c echo.Context, source string, apply webhookFunc) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	outcome, err := apply(c.Request().Context(), body)
	if errors.Is(err, domain.ErrValidation) {
		metrics.WebhookEventsTotal.WithLabelValues(source, "invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, domain.PublicMessage(err))
	}
	if err != nil {
		return err
	}
	metrics.WebhookEventsTotal.WithLabelValues(source, string(outcome)).Inc()
	return c.JSON(http.StatusOK, webhookResponse{Outcome: outcome})
}
