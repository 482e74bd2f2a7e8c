package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/detailiq/dashboard-system/internal/pkg/metrics"
)

const maxWebhookBody = 1 << 20

// SignatureVerifier checks a webhook delivery against its headers.
type SignatureVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

// VerifyWebhook rejects deliveries whose signature does not verify. The body
// is buffered and restored so the handler can read it again.
func VerifyWebhook(v SignatureVerifier, source string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			body, err := io.ReadAll(io.LimitReader(req.Body, maxWebhookBody))
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
			}
			if err := v.Verify(body, req.Header); err != nil {
				metrics.WebhookEventsTotal.WithLabelValues(source, "unverified").Inc()
				log.Warn().Err(err).Str("source", source).Msg("webhook signature rejected")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook signature")
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			return next(c)
		}
	}
}
