package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"alfredoptarigan/resume-studio/internal/config"
	"alfredoptarigan/resume-studio/internal/middleware"
	"alfredoptarigan/resume-studio/internal/services"
	"alfredoptarigan/resume-studio/internal/views"
)

// Dependencies is everything NewApp wires into routes.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Score   services.ScoreWidget
	Enhance services.EnhanceWidget
	// HealthCheck is optional; a failure marks the service unhealthy.
	HealthCheck func(ctx context.Context) error
}

// NewApp builds the fiber app with all pages, APIs and middleware.
func NewApp(deps Dependencies) *fiber.App {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		AppName:      "Resume Studio",
		Views:        views.NewEngine(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Services.Timeout + 30*time.Second,
		// Bounds the whole multipart body, so the file itself must be slightly smaller.
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: newErrorHandler(deps.Logger),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	var frameOrigins []string
	if origin := middleware.OriginOf(cfg.Services.BuilderURL); origin != "" {
		frameOrigins = append(frameOrigins, origin)
	}
	app.Use(middleware.SecurityHeaders(frameOrigins...))

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   views.StaticFS(),
		MaxAge: 3600,
	}))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(middleware.Session(middleware.SessionConfig{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	}))

	pageHandler := NewPageHandler(cfg.Services.BuilderURL)
	scoreHandler := NewScoreHandler(deps.Score, cfg.UI.SilentErrors)
	enhanceHandler := NewEnhanceHandler(deps.Enhance, cfg.UI.SilentErrors)

	// Pages
	app.Get("/", pageHandler.HandleHome)
	app.Get("/builder", pageHandler.HandleBuilder)

	app.Get("/ats", scoreHandler.HandlePage)
	app.Post("/ats/upload", scoreHandler.HandleUpload)
	app.Post("/ats/reset", scoreHandler.HandleReset)

	app.Get("/enhance", enhanceHandler.HandlePage)
	app.Post("/enhance/upload", enhanceHandler.HandleUpload)
	app.Post("/enhance/reset", enhanceHandler.HandleReset)
	app.Get("/downloads/:id", enhanceHandler.HandleDownload)

	// API
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "unhealthy",
					"error":  err.Error(),
					"time":   time.Now(),
				})
			}
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Get("/ats/state", scoreHandler.HandleState)
	api.Get("/enhance/state", enhanceHandler.HandleState)

	return app
}

// newErrorHandler answers API and JSON clients with {"error", "code"} and
// everyone else with the error page.
func newErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := err.Error()

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("❌ Request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		if strings.HasPrefix(c.Path(), "/api/") || wantsJSON(c) {
			return c.Status(code).JSON(fiber.Map{
				"error": message,
				"code":  code,
			})
		}

		if code >= fiber.StatusInternalServerError {
			message = "Something went wrong. Please try again."
		}

		renderErr := c.Status(code).Render("error", fiber.Map{
			"Title":   "Error",
			"Code":    code,
			"Message": message,
		}, views.Layout)
		if renderErr != nil {
			return c.Status(code).JSON(fiber.Map{
				"error": message,
				"code":  code,
			})
		}
		return nil
	}
}

// wantsJSON reports whether the client asked for JSON instead of a page.
func wantsJSON(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}
