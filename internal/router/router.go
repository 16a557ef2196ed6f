package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/libroom/reserve/internal/handler"
	"github.com/libroom/reserve/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth, while protected
// account endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts a refresh token in the body and so does not demand
	// a live access token.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.DELETE("/me", a.DeleteMe)
	auth.POST("/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated browse endpoints: the
// room catalogue with availability annotation, the equipment catalogue
// and the slot grid. These sit behind the shared cache and rate-limit
// middleware supplied by the caller.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	g.GET("/rooms", p.ListRooms)
	g.GET("/equipment", p.ListEquipment)
	g.GET("/slots", p.ListSlots)
}

// RegisterMember registers MEMBER-scoped endpoints under /v1. All
// routes require a valid JWT with the MEMBER role.
func RegisterMember(e *echo.Echo, m *handler.MemberHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("MEMBER"),
	)

	// ---- Reservations ----
	g.POST("/reservations", m.Create)
	g.PATCH("/reservations/:id", m.Modify)
	g.POST("/reservations/:id/pay", m.Pay)
	g.DELETE("/reservations/:id", m.Cancel)
	g.GET("/my-reservations", m.History)
	g.GET("/my-payments", m.Payments)

	// ---- Balance ----
	g.GET("/balance", m.Balance)
	g.POST("/balance/topup", m.TopUp)
	g.GET("/balance/topups", m.TopUps)
}

// RegisterAdmin registers LIBRARIAN-scoped endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("LIBRARIAN"),
	)

	// ---- Rooms ----
	g.GET("/rooms", a.ListRooms)
	g.POST("/rooms", a.AddRoom)
	g.PATCH("/rooms/:id/capacity", a.UpdateCapacity)
	g.PATCH("/rooms/:id/status", a.SetStatus)
	g.DELETE("/rooms/:id", a.DeleteRoom)

	// ---- Rules and credits ----
	g.GET("/rules", a.GetRule)
	g.PUT("/rules", a.SetRule)
	g.POST("/credits", a.Credit)

	// ---- Dashboard and audit ----
	g.GET("/dashboard", a.Dashboard)
	g.GET("/reservations", a.Reservations)
	g.GET("/payments", a.Payments)
	g.GET("/room-actions", a.RoomActions)
	g.GET("/user-actions", a.UserActions)
}
