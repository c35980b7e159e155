package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nativeschema/site-api/internal/metrics"
	"github.com/nativeschema/site-api/internal/service/inbound"
	"go.uber.org/zap"
)

const msgWebhookFailed = "Webhook processing failed"

// webhookHandler acknowledges every well-formed delivery; route action
// failures never change the response.
func webhookHandler(d InboundDispatcher, lg *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			lg.Error("webhook body read failed", zap.Error(err))
			return c.JSON(http.StatusBadRequest, map[string]string{"error": msgWebhookFailed})
		}

		ev, err := inbound.ParseEvent(body)
		if err != nil {
			metrics.InboundEvents.WithLabelValues("invalid").Inc()
			lg.Warn("webhook payload rejected", zap.Error(err))
			return c.JSON(http.StatusBadRequest, map[string]string{"error": msgWebhookFailed})
		}

		out := d.Dispatch(c.Request().Context(), ev)
		return c.JSON(http.StatusOK, map[string]bool{
			"received":  true,
			"processed": out.Processed,
		})
	}
}

func webhookStatusHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "Webhook endpoint active"})
}
