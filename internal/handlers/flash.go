package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const flashCookie = "board_flash"

// Flash is a one-shot notice shown on the next admin page load.
type Flash struct {
	Type    string `json:"type"` // "success" or "error"
	Message string `json:"message"`
}

func setFlash(c echo.Context, kind, message string) {
	data, err := json.Marshal(Flash{Type: kind, Message: message})
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
	})
}

func takeFlash(c echo.Context) *Flash {
	cookie, err := c.Cookie(flashCookie)
	if err != nil {
		return nil
	}

	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	data, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	flash := &Flash{}
	if err := json.Unmarshal(data, flash); err != nil {
		return nil
	}
	return flash
}
