package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nativeschema/site-api/internal/apperr"
	"github.com/nativeschema/site-api/internal/model"
	"go.uber.org/zap"
)

const (
	msgBadRequest     = "Invalid request body"
	msgDeliveryFailed = "Failed to send message. Please try again."
	msgInternal       = "Internal server error"
)

func contactHandler(svc ContactSubmitter, lg *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var sub model.ContactSubmission
		if err := c.Bind(&sub); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": msgBadRequest})
		}
		sub.RemoteIP = c.RealIP()

		err := svc.Submit(c.Request().Context(), sub)
		if err == nil {
			return c.JSON(http.StatusOK, map[string]bool{"success": true})
		}

		if ve, ok := apperr.AsValidation(err); ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": ve.Message})
		}
		if apperr.IsDelivery(err) {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": msgDeliveryFailed})
		}

		lg.Error("contact submit failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": msgInternal})
	}
}
