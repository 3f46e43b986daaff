// Package rest exposes the access engine over HTTP with echo.
package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ArticleGate/internal/infrastructure/metrics"
	"ArticleGate/internal/ports"
	"ArticleGate/internal/usecase"
)

// Deps wires the handlers to the use cases.
type Deps struct {
	Domains  *usecase.DomainRegistry
	Progress *usecase.ProgressTracker
	Ledger   *usecase.Ledger
	Catalog  *usecase.Catalog
	Auth     ports.Authenticator
	Metrics  *metrics.Recorder
	Health   func(ctx context.Context) error
	Logger   *slog.Logger
}

type handlers struct {
	domains  *usecase.DomainRegistry
	progress *usecase.ProgressTracker
	ledger   *usecase.Ledger
	catalog  *usecase.Catalog
	health   func(ctx context.Context) error
	logger   *slog.Logger
}

// NewServer builds the echo instance with middleware and all routes under /api/v1.
func NewServer(deps Deps) *echo.Echo {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/healthz" || path == "/metrics"
		},
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.InfoContext(c.Request().Context(), "http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
				"error", v.Error)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if deps.Metrics != nil {
		e.Use(observe(deps.Metrics))
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}

	h := &handlers{
		domains:  deps.Domains,
		progress: deps.Progress,
		ledger:   deps.Ledger,
		catalog:  deps.Catalog,
		health:   deps.Health,
		logger:   logger.With("component", "rest"),
	}
	e.GET("/healthz", h.healthz)

	api := e.Group("/api/v1", authenticate(deps.Auth))

	api.GET("/scientific-domains", h.listDomains)
	api.GET("/scientific-domains/:id", h.getDomain)
	api.POST("/scientific-domains", h.createDomain, requireAdmin)
	api.PUT("/scientific-domains/:id", h.renameDomain, requireAdmin)
	api.PATCH("/scientific-domains/:id", h.renameDomain, requireAdmin)
	api.DELETE("/scientific-domains/:id", h.deleteDomain, requireAdmin)

	api.GET("/articles", h.listArticles, requireAuth)
	api.GET("/articles/:id", h.getArticle, requireAuth)
	api.POST("/articles", h.createArticle, requireAdmin)
	api.PUT("/articles/:id", h.updateArticle, requireAdmin)
	api.PATCH("/articles/:id", h.updateArticle, requireAdmin)
	api.DELETE("/articles/:id", h.deleteArticle, requireAdmin)
	api.GET("/store-articles", h.listStoreArticles, requireAuth)

	ledger := api.Group("", requireAuth)
	ledger.GET("/user-articles", h.listReadingStates)
	ledger.POST("/user-articles", h.createReadingState)
	ledger.GET("/user-articles/:id", h.getReadingState)
	ledger.PATCH("/user-articles/:id", h.updateReadingState)
	ledger.PUT("/user-articles/:id", h.updateReadingState)
	ledger.DELETE("/user-articles/:id", h.deleteReadingState)
	ledger.GET("/reviews", h.listReviews)
	ledger.POST("/reviews", h.submitReview)
	ledger.GET("/reviews/:id", h.getReview)
	ledger.DELETE("/reviews/:id", h.deleteReview)

	ledger.POST("/register", h.register)
	ledger.GET("/profile", h.getProfile)
	ledger.PATCH("/profile", h.updateProfile)
	ledger.PUT("/profile", h.updateProfile)
	ledger.DELETE("/profile/progress/:domainId", h.deleteProgress)

	return e
}

// observe records request counts and latency by route template.
func observe(rec *metrics.Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			rec.ObserveRequest(c.Request().Method, route, c.Response().Status, time.Since(start))
			return err
		}
	}
}

func (h *handlers) healthz(c echo.Context) error {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			h.logger.Warn("health check failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
