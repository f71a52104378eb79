package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/ticketing-system/docs"
	"github.com/99minutos/ticketing-system/internal/api/handler"
	"github.com/99minutos/ticketing-system/internal/api/middleware"
	"github.com/99minutos/ticketing-system/internal/core/ports"
)

// Dependencies are the services and probes the router exposes.
type Dependencies struct {
	Purchases ports.PurchaseService
	Events    ports.EventService
	Users     ports.UserService
	// Ready lists the dependencies checked by /health/ready, by name.
	Ready map[string]handler.Pinger
	// Registry receives the HTTP metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Pre(middleware.CORS())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "ticketing",
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health" || c.Path() == "/health/ready"
		},
	}))

	// --- Handlers ---
	purchases := handler.NewPurchaseHandler(deps.Purchases)
	events := handler.NewEventHandler(deps.Events)
	users := handler.NewUserHandler(deps.Users)
	health := handler.NewHealthHandler(deps.Ready)

	// --- Purchases ---
	e.POST("/purchases", purchases.Create)

	// --- Events ---
	e.POST("/events", events.Create)
	e.GET("/events", events.List)
	e.PUT("/events", events.Update)
	e.DELETE("/events", events.Delete)
	e.GET("/events/:id", events.Get)
	e.PUT("/events/:id", events.Update)
	e.DELETE("/events/:id", events.Delete)

	// --- Users ---
	e.POST("/users", users.Create)

	// --- Health probes ---
	e.GET("/health", health.Liveness)        // liveness
	e.GET("/health/ready", health.Readiness) // readiness

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, reg},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
