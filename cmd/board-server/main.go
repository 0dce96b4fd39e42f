package main

import (
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"

	"github.com/shanemcgraw/tillage-vestaboard/internal/boot"
	"github.com/shanemcgraw/tillage-vestaboard/internal/handlers"
	"github.com/shanemcgraw/tillage-vestaboard/internal/mailer"
	"github.com/shanemcgraw/tillage-vestaboard/internal/messagestore"
	"github.com/shanemcgraw/tillage-vestaboard/internal/service/ingest"
	"github.com/shanemcgraw/tillage-vestaboard/internal/service/moderation"
	"github.com/shanemcgraw/tillage-vestaboard/internal/vestaboard"
)

type Template struct {
	templates *template.Template
	watcher   *fsnotify.Watcher
}

func NewTemplate() *Template {
	return &Template{
		templates: template.Must(template.ParseGlob("ui/views/*.html")),
	}
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

func (t *Template) Watch() {
	var err error

	t.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("watcher: %+v", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-t.watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) {
					log.Infof("reloading templates: %s", event.Name)
					t.templates = template.Must(template.ParseGlob("ui/views/*.html"))
				}
			case err, ok := <-t.watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("watcher: %+v", err)
			}
		}
	}()

	if err = t.watcher.Add("./ui/views"); err != nil {
		log.Fatalf("watcher: %+v", err)
	}
}

func (t *Template) Close() {
	if t.watcher != nil {
		t.watcher.Close()
	}
}

func main() {
	godotenv.Load()

	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	store, err := messagestore.New(config)
	if err != nil {
		log.Fatalf("opening message store: %+v", err)
	}
	defer store.Close()

	poster := vestaboard.New(vestaboard.Config{
		APIKey:         config.Vestaboard.APIKey,
		APISecret:      config.Vestaboard.APISecret,
		SubscriptionID: config.Vestaboard.SubscriptionID,
	})
	autoReplyMailer := mailer.New(mailer.Config{
		APIKey:    config.SendGrid.APIKey,
		FromEmail: config.SendGrid.FromEmail,
	})

	moderationService := moderation.New(store, poster)
	ingestService := ingest.New(store, autoReplyMailer)

	server := echo.New()
	server.Use(middleware.BodyLimit("1M"))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("tillage_board"))
	server.Use(middleware.Recover())

	server.Logger.SetLevel(log.INFO)

	server.Static("/static", "ui/static")

	t := NewTemplate()
	defer t.Close()
	if config.IsDevelopment() {
		t.Watch()
	}
	server.Renderer = t

	server.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	server.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/admin")
	})

	server.GET("/login", handlers.LoginForm(config))
	server.POST("/login", handlers.Login(config))
	server.POST("/logout", handlers.Logout())

	server.GET("/submit", handlers.SubmitForm())
	server.POST("/submit", handlers.Submit(ingestService))

	server.POST("/webhook/email", handlers.EmailWebhook(ingestService))

	admin := server.Group("/admin", handlers.RequireAuth(config))
	admin.GET("", handlers.Dashboard(store))
	admin.GET("/compose", handlers.ComposeForm())
	admin.POST("/compose", handlers.Compose(moderationService))
	admin.GET("/message/:id", handlers.Review(store))
	admin.POST("/message/:id/approve", handlers.Approve(moderationService))
	admin.POST("/message/:id/reject", handlers.Reject(moderationService))
	admin.POST("/message/:id/retry", handlers.Retry(moderationService))
	admin.POST("/message/:id/delete", handlers.Delete(moderationService))

	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + config.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + config.Server.Port); err != nil && err != http.ErrServerClosed {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Fatal(err)
	}
}
