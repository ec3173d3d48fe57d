package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog" // structured logger for request and error logging

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/job-portal-manager/internal/handler"    // handlers that translate HTTP to service calls
	"github.com/iliyamo/job-portal-manager/internal/metrics"    // Prometheus collectors and middleware
	"github.com/iliyamo/job-portal-manager/internal/middleware" // JWT authentication, CORS and request logging
	"github.com/iliyamo/job-portal-manager/internal/service"    // services the handlers are built on
)

// Options selects the optional parts of the API.
type Options struct {
	BasePath string // prefix every route lives under, "" for the root
	Metrics  bool   // expose GET {base}/metrics
	Health   handler.Pinger
	Logger   *slog.Logger
}

// New builds a fully wired Echo instance: error handler, global middleware
// and every route.
func New(auth *service.AuthService, portals *service.PortalService, opts Options) *echo.Echo {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)

	// CORS runs before routing so OPTIONS on any path gets an empty 200.
	e.Pre(middleware.CORS())
	e.Use(middleware.RequestID())
	if opts.Metrics {
		e.Use(metrics.Middleware())
	}
	e.Use(middleware.RequestLogger(log.With("component", "http")))

	RegisterRoutes(e, opts.BasePath, opts.Health, opts.Metrics)
	RegisterAuth(e, opts.BasePath, handler.NewAuthHandler(auth))
	RegisterPortals(e, opts.BasePath, handler.NewPortalHandler(portals), middleware.JWTAuth(auth))
	return e
}

// RegisterRoutes registers routes that do not require authentication:
// the health check and, when enabled, the metrics endpoint.
func RegisterRoutes(e *echo.Echo, base string, db handler.Pinger, withMetrics bool) {
	e.GET(base+"/healthz", handler.Health(db))
	if withMetrics {
		e.GET(base+"/metrics", echo.WrapHandler(metrics.Handler()))
	}
}

// RegisterAuth registers the unauthenticated account endpoints.
func RegisterAuth(e *echo.Echo, base string, a *handler.AuthHandler) {
	e.POST(base+"/register", a.Register)
	e.POST(base+"/login", a.Login)
}

// RegisterPortals registers the portal endpoints. auth is attached per
// route rather than with Group.Use so that unknown paths and verbs still
// answer 404 and 405 without asking for a token.
func RegisterPortals(e *echo.Echo, base string, p *handler.PortalHandler, auth echo.MiddlewareFunc) {
	e.GET(base+"/portals", p.List, auth)
	e.POST(base+"/portals", p.Create, auth)
	e.GET(base+"/portals/:id", p.Get, auth)
	e.PUT(base+"/portals/:id", p.Update, auth)
	e.DELETE(base+"/portals/:id", p.Delete, auth)
	e.GET(base+"/categories", p.Categories, auth)
	e.GET(base+"/search", p.Search, auth)
}
