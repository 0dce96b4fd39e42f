package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/shanemcgraw/tillage-vestaboard/internal/boot"
)

const sessionCookie = "board_session"
const sessionTTL = 24 * time.Hour

func LoginForm(config *boot.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		if sessionValid(c, config) {
			return c.Redirect(http.StatusFound, "/admin")
		}
		return c.Render(http.StatusOK, "login.html", map[string]interface{}{})
	}
}

// Login checks the submitted password against the configured bcrypt hash and
// issues a signed session cookie. There is no fallback password.
func Login(config *boot.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		if config.Admin.PasswordHash == "" {
			return c.Render(http.StatusOK, "login.html", map[string]interface{}{
				"Error": "admin password not configured",
			})
		}

		password := c.FormValue("password")
		if err := bcrypt.CompareHashAndPassword([]byte(config.Admin.PasswordHash), []byte(password)); err != nil {
			return c.Render(http.StatusOK, "login.html", map[string]interface{}{
				"Error": "invalid password",
			})
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
			Subject:   "admin",
			ExpiresAt: time.Now().Add(sessionTTL).Unix(),
		})
		signed, err := token.SignedString([]byte(config.Admin.SessionSecret))
		if err != nil {
			return fmt.Errorf("signing session token: %w", err)
		}

		c.SetCookie(&http.Cookie{
			Name:     sessionCookie,
			Value:    signed,
			Path:     "/",
			MaxAge:   int(sessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   config.IsProduction(),
		})
		return c.Redirect(http.StatusFound, "/admin")
	}
}

func Logout() echo.HandlerFunc {
	return func(c echo.Context) error {
		c.SetCookie(&http.Cookie{
			Name:     sessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		return c.Redirect(http.StatusFound, "/login")
	}
}

func RequireAuth(config *boot.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !sessionValid(c, config) {
				return c.Redirect(http.StatusFound, "/login")
			}
			return next(c)
		}
	}
}

func sessionValid(c echo.Context, config *boot.Config) bool {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return false
	}

	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Admin.SessionSecret), nil
	})

	return err == nil && token.Valid
}
