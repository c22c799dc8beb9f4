package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/mgthura/parking-ledger/internal/handler"    // import the handlers that implement business logic
	"github.com/mgthura/parking-ledger/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/mgthura/parking-ledger/internal/model"      // role constants
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.  Account registration is a
// manager-only operation: gate staff never self-provision accounts.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Routes under /v1/auth that do not require an existing session.
	g := e.Group("/v1/auth")
	// Login exchanges credentials for a token pair.
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and returns a new pair.
	g.POST("/refresh", a.Refresh)
	// Refresh-access issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh token in the body (or a bearer token) and
	// invalidates the session; it does not require the JWT middleware.
	g.POST("/logout", a.Logout)

	// Registration requires an authenticated manager.
	e.POST("/v1/auth/register", a.Register,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager),
	)

	// Protected group for any authenticated employee.
	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager, model.RoleOperator),
	)
	// Return the authenticated employee's identity.
	auth.GET("/me", a.Me)

	// Alias so clients can also call /v1/logout with a refresh token.
	e.POST("/v1/logout", a.Logout)
}

// RegisterEntries registers the parking entry endpoints under /v1.  All
// routes require a valid JWT; recording arrivals and exits is open to
// both roles, while corrections and archiving are manager overrides.
func RegisterEntries(e *echo.Echo, h *handler.EntryHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager, model.RoleOperator),
	)
	g.POST("/entries", h.Create)
	g.GET("/entries", h.List)
	g.GET("/entries/:id", h.Get)
	g.GET("/entries/:id/fee", h.FeePreview)
	g.POST("/entries/:id/exit", h.RecordExit)

	// Manager overrides: fee corrections and soft deletes.
	mg := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager),
	)
	mg.PATCH("/entries/:id", h.Correct)
	mg.DELETE("/entries/:id", h.Archive)
}

// RegisterShifts registers the shift ledger endpoints under /v1.  Opening,
// closing, handover and the reconciliation dry run are available to both
// roles; the entry backfill is a manager-only administrative tool.
func RegisterShifts(e *echo.Echo, h *handler.ShiftHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager, model.RoleOperator),
	)
	g.POST("/shifts", h.Open)
	g.GET("/shifts", h.List)
	g.GET("/shifts/active", h.Active)
	g.GET("/shifts/:id", h.Get)
	g.POST("/shifts/:id/close", h.Close)
	g.POST("/shifts/handover", h.Handover)
	g.GET("/shifts/:id/statistics", h.Statistics)
	g.POST("/shifts/:id/reconcile", h.Reconcile)

	mg := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager),
	)
	mg.POST("/shifts/:id/link-entries", h.LinkEntries)
}

// RegisterRates registers the rate table endpoint under /v1.  The rate
// table changes rarely, so callers may wrap the handler with the Redis
// response cache middleware before registration.
func RegisterRates(e *echo.Echo, h *handler.RateHandler, jwtSecret string, wrap ...echo.MiddlewareFunc) {
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager, model.RoleOperator),
	}
	mw = append(mw, wrap...)
	e.GET("/v1/rates", h.List, mw...)
}
