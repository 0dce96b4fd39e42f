package handlers

import (
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shanemcgraw/tillage-vestaboard/internal/boot"
	"github.com/shanemcgraw/tillage-vestaboard/internal/model"
	"github.com/shanemcgraw/tillage-vestaboard/internal/service/ingest"
)

type stubRenderer struct{}

func (r *stubRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return template.Must(template.New(name).Parse(`{{.}}`)).Execute(w, name)
}

type stubIngest struct {
	webCalls   []ingest.WebParams
	emailCalls []ingest.EmailParams
	err        error
}

func (s *stubIngest) SubmitEmail(ctx context.Context, params ingest.EmailParams) (*model.Message, bool, error) {
	s.emailCalls = append(s.emailCalls, params)
	if s.err != nil {
		return nil, false, s.err
	}
	return &model.Message{ID: "m1", Status: model.StatusPending}, true, nil
}

func (s *stubIngest) SubmitWeb(ctx context.Context, params ingest.WebParams) (*model.Message, error) {
	s.webCalls = append(s.webCalls, params)
	if s.err != nil {
		return nil, s.err
	}
	name := params.Name
	return &model.Message{ID: "m1", Status: model.StatusPending, SenderName: &name}, nil
}

func newContext(t *testing.T, method, target string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	server := echo.New()
	server.Renderer = &stubRenderer{}

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return server.NewContext(req, rec), rec
}

func TestSubmit(t *testing.T) {
	assert := assert.New(t)

	t.Run("valid submission is stored", func(t *testing.T) {
		service := &stubIngest{}
		form := url.Values{
			"name":            {"Carol"},
			"email":           {"carol@mail.com"},
			"vestaboard_text": {"The coffee machine is fixed!"},
		}
		c, rec := newContext(t, http.MethodPost, "/submit", form)

		require.NoError(t, Submit(service)(c))
		assert.Equal(http.StatusOK, rec.Code)
		require.Len(t, service.webCalls, 1)
		assert.Equal("Carol", service.webCalls[0].Name)
		assert.Contains(rec.Body.String(), "submit-success.html")
	})

	t.Run("honeypot silently accepts without storing", func(t *testing.T) {
		service := &stubIngest{}
		form := url.Values{
			"name":            {"Bot"},
			"email":           {"bot@spam.example"},
			"vestaboard_text": {"BUY NOW"},
			"website":         {"https://spam.example"},
		}
		c, rec := newContext(t, http.MethodPost, "/submit", form)

		require.NoError(t, Submit(service)(c))
		assert.Equal(http.StatusOK, rec.Code)
		assert.Empty(service.webCalls, "honeypot submissions never reach the store")
		assert.Contains(rec.Body.String(), "submit-success.html")
	})

	t.Run("validation failures re-render the form", func(t *testing.T) {
		service := &stubIngest{}
		form := url.Values{
			"name":            {""},
			"email":           {"not-an-address"},
			"vestaboard_text": {""},
		}
		c, rec := newContext(t, http.MethodPost, "/submit", form)

		require.NoError(t, Submit(service)(c))
		assert.Empty(service.webCalls)
		assert.Contains(rec.Body.String(), "submit.html")
	})
}

func TestEmailWebhook(t *testing.T) {
	assert := assert.New(t)

	t.Run("acknowledges deliveries", func(t *testing.T) {
		service := &stubIngest{}
		form := url.Values{
			"from":    {"Alice <alice@example.com>"},
			"subject": {"Hi"},
			"text":    {"Hello board"},
			"headers": {"Message-ID: <a@b>"},
		}
		c, rec := newContext(t, http.MethodPost, "/webhook/email", form)

		require.NoError(t, EmailWebhook(service)(c))
		assert.Equal(http.StatusOK, rec.Code)
		assert.Contains(rec.Body.String(), `"received":true`)
		require.Len(t, service.emailCalls, 1)
		assert.Equal("Alice <alice@example.com>", service.emailCalls[0].From)
	})

	t.Run("still returns 200 on processing errors", func(t *testing.T) {
		service := &stubIngest{err: errors.New("db down")}
		c, rec := newContext(t, http.MethodPost, "/webhook/email", url.Values{"from": {"x@y.z"}})

		require.NoError(t, EmailWebhook(service)(c))
		assert.Equal(http.StatusOK, rec.Code)
		assert.Contains(rec.Body.String(), "Processing error")
	})
}

func TestLogin(t *testing.T) {
	assert := assert.New(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	newConfig := func() *boot.Config {
		config := &boot.Config{}
		config.Admin.PasswordHash = string(hash)
		config.Admin.SessionSecret = "test-secret"
		return config
	}

	t.Run("correct password sets a session cookie", func(t *testing.T) {
		config := newConfig()
		c, rec := newContext(t, http.MethodPost, "/login", url.Values{"password": {"correct horse"}})

		require.NoError(t, Login(config)(c))
		assert.Equal(http.StatusFound, rec.Code)
		assert.Equal("/admin", rec.Header().Get("Location"))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(sessionCookie, cookies[0].Name)
		assert.NotEmpty(cookies[0].Value)
		assert.True(cookies[0].HttpOnly)
	})

	t.Run("wrong password re-renders login", func(t *testing.T) {
		config := newConfig()
		c, rec := newContext(t, http.MethodPost, "/login", url.Values{"password": {"wrong"}})

		require.NoError(t, Login(config)(c))
		assert.Equal(http.StatusOK, rec.Code)
		assert.Empty(rec.Result().Cookies())
	})

	t.Run("unconfigured hash never authenticates", func(t *testing.T) {
		config := newConfig()
		config.Admin.PasswordHash = ""
		c, rec := newContext(t, http.MethodPost, "/login", url.Values{"password": {"anything"}})

		require.NoError(t, Login(config)(c))
		assert.Equal(http.StatusOK, rec.Code)
		assert.Empty(rec.Result().Cookies())
	})

	t.Run("session cookie passes the auth middleware", func(t *testing.T) {
		config := newConfig()
		c, rec := newContext(t, http.MethodPost, "/login", url.Values{"password": {"correct horse"}})
		require.NoError(t, Login(config)(c))
		session := rec.Result().Cookies()[0]

		protected := RequireAuth(config)(func(c echo.Context) error {
			return c.String(http.StatusOK, "in")
		})

		c2, rec2 := newContext(t, http.MethodGet, "/admin", nil)
		c2.Request().AddCookie(session)
		require.NoError(t, protected(c2))
		assert.Equal(http.StatusOK, rec2.Code)

		c3, rec3 := newContext(t, http.MethodGet, "/admin", nil)
		require.NoError(t, protected(c3))
		assert.Equal(http.StatusFound, rec3.Code)
		assert.Equal("/login", rec3.Header().Get("Location"))
	})
}
