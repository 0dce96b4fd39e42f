package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shanemcgraw/tillage-vestaboard/internal/service/ingest"
)

// EmailWebhook receives SendGrid Inbound Parse deliveries. It always
// acknowledges with 200 — a non-2xx would make SendGrid redeliver, and our
// own processing failures are not the sender's problem.
func EmailWebhook(service IngestService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := ingest.EmailParams{
			From:    c.FormValue("from"),
			Subject: c.FormValue("subject"),
			Text:    c.FormValue("text"),
			HTML:    c.FormValue("html"),
			Headers: c.FormValue("headers"),
		}

		c.Logger().Infof("received email webhook from=%q subject=%q", params.From, params.Subject)

		if _, _, err := service.SubmitEmail(c.Request().Context(), params); err != nil {
			c.Logger().Errorf("email webhook: %v", err)
			return c.JSON(http.StatusOK, map[string]interface{}{
				"received": true,
				"error":    "Processing error",
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{"received": true})
	}
}
