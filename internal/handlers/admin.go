package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shanemcgraw/tillage-vestaboard/internal/model"
)

const historyLimit = 20

// ModerationService drives the message lifecycle. Approve, Retry and Compose
// resolve their post attempt into the returned message's status; they only
// error when the transition itself is invalid.
type ModerationService interface {
	Approve(ctx context.Context, id model.MessageID, editedText string) (*model.Message, error)
	Reject(ctx context.Context, id model.MessageID) (*model.Message, error)
	Retry(ctx context.Context, id model.MessageID) (*model.Message, error)
	Delete(ctx context.Context, id model.MessageID) error
	Compose(ctx context.Context, text string) (*model.Message, error)
}

type MessageLister interface {
	Get(id model.MessageID) (*model.Message, error)
	ListByStatus(status model.Status, limit int) ([]model.Message, error)
	ListReviewed(limit int) ([]model.Message, error)
}

func Dashboard(store MessageLister) echo.HandlerFunc {
	return func(c echo.Context) error {
		pending, err := store.ListByStatus(model.StatusPending, 0)
		if err != nil {
			return err
		}
		history, err := store.ListReviewed(historyLimit)
		if err != nil {
			return err
		}
		return c.Render(http.StatusOK, "dashboard.html", map[string]interface{}{
			"Pending": pending,
			"History": history,
			"Flash":   takeFlash(c),
		})
	}
}

func Review(store MessageLister) echo.HandlerFunc {
	return func(c echo.Context) error {
		message, err := store.Get(model.MessageID(c.Param("id")))
		if err != nil {
			if errors.Is(err, model.ErrorMessageNotFound) {
				return c.String(http.StatusNotFound, "Message not found")
			}
			return err
		}
		return c.Render(http.StatusOK, "review.html", map[string]interface{}{
			"Message": message,
		})
	}
}

func Approve(service ModerationService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := model.MessageID(c.Param("id"))
		message, err := service.Approve(c.Request().Context(), id, c.FormValue("vestaboard_text"))
		if err != nil {
			if errors.Is(err, model.ErrorStaleStatus) {
				setFlash(c, "error", "Message is no longer pending")
				return c.Redirect(http.StatusFound, "/admin")
			}
			return err
		}
		flashPostOutcome(c, message)
		return c.Redirect(http.StatusFound, "/admin")
	}
}

func Reject(service ModerationService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := model.MessageID(c.Param("id"))
		if _, err := service.Reject(c.Request().Context(), id); err != nil {
			if errors.Is(err, model.ErrorStaleStatus) {
				setFlash(c, "error", "Message is no longer pending")
				return c.Redirect(http.StatusFound, "/admin")
			}
			return err
		}
		setFlash(c, "success", "Message rejected")
		return c.Redirect(http.StatusFound, "/admin")
	}
}

func Retry(service ModerationService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := model.MessageID(c.Param("id"))
		message, err := service.Retry(c.Request().Context(), id)
		if err != nil {
			if errors.Is(err, model.ErrorMessageNotFound) || errors.Is(err, model.ErrorStaleStatus) {
				setFlash(c, "error", "Message not found or not in failed state")
				return c.Redirect(http.StatusFound, "/admin")
			}
			return err
		}
		flashPostOutcome(c, message)
		return c.Redirect(http.StatusFound, "/admin")
	}
}

func Delete(service ModerationService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := model.MessageID(c.Param("id"))
		if err := service.Delete(c.Request().Context(), id); err != nil {
			if errors.Is(err, model.ErrorNotDeletable) {
				setFlash(c, "error", "Message not found or not in failed state")
				return c.Redirect(http.StatusFound, "/admin")
			}
			return err
		}
		setFlash(c, "success", "Failed message deleted")
		return c.Redirect(http.StatusFound, "/admin")
	}
}

func ComposeForm() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "compose.html", map[string]interface{}{
			"Flash": takeFlash(c),
		})
	}
}

func Compose(service ModerationService) echo.HandlerFunc {
	return func(c echo.Context) error {
		text := c.FormValue("vestaboard_text")
		if strings.TrimSpace(text) == "" {
			setFlash(c, "error", "Message cannot be empty")
			return c.Redirect(http.StatusFound, "/admin/compose")
		}

		message, err := service.Compose(c.Request().Context(), text)
		if err != nil {
			return err
		}
		flashPostOutcome(c, message)
		return c.Redirect(http.StatusFound, "/admin")
	}
}

func flashPostOutcome(c echo.Context, message *model.Message) {
	if message.Status == model.StatusPosted {
		setFlash(c, "success", "Message posted to Vestaboard!")
		return
	}
	reason := "unknown error"
	if message.ErrorMessage != nil {
		reason = *message.ErrorMessage
	}
	setFlash(c, "error", "Failed to post: "+reason)
}
