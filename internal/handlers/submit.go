package handlers

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shanemcgraw/tillage-vestaboard/internal/model"
	"github.com/shanemcgraw/tillage-vestaboard/internal/service/ingest"
)

type IngestService interface {
	SubmitEmail(ctx context.Context, params ingest.EmailParams) (*model.Message, bool, error)
	SubmitWeb(ctx context.Context, params ingest.WebParams) (*model.Message, error)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func SubmitForm() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "submit.html", map[string]interface{}{
			"FormData": map[string]string{},
		})
	}
}

func Submit(service IngestService) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.FormValue("name")
		email := c.FormValue("email")
		text := c.FormValue("vestaboard_text")

		// honeypot: bots fill the hidden website field; pretend it worked
		if strings.TrimSpace(c.FormValue("website")) != "" {
			return c.Render(http.StatusOK, "submit-success.html", map[string]interface{}{
				"SenderName": name,
			})
		}

		errs := []string{}
		if strings.TrimSpace(name) == "" {
			errs = append(errs, "Name is required")
		}
		if strings.TrimSpace(email) == "" {
			errs = append(errs, "Email is required")
		} else if !emailPattern.MatchString(strings.TrimSpace(email)) {
			errs = append(errs, "Please enter a valid email address")
		}
		if strings.TrimSpace(text) == "" {
			errs = append(errs, "Message is required")
		}
		if len(errs) > 0 {
			return c.Render(http.StatusOK, "submit.html", map[string]interface{}{
				"Error": strings.Join(errs, ". "),
				"FormData": map[string]string{
					"Name":    name,
					"Email":   email,
					"Message": text,
				},
			})
		}

		message, err := service.SubmitWeb(c.Request().Context(), ingest.WebParams{
			Name:  name,
			Email: email,
			Text:  text,
		})
		if err != nil {
			c.Logger().Errorf("submit: %v", err)
			return c.Render(http.StatusOK, "submit.html", map[string]interface{}{
				"Error": "Something went wrong. Please try again.",
				"FormData": map[string]string{
					"Name":    name,
					"Email":   email,
					"Message": text,
				},
			})
		}

		senderName := ""
		if message.SenderName != nil {
			senderName = *message.SenderName
		}
		return c.Render(http.StatusOK, "submit-success.html", map[string]interface{}{
			"SenderName": senderName,
		})
	}
}
