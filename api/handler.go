// Package api provides HTTP handlers for the case history server.
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sparsh1616/MedHistoryApp/auth"
	"github.com/sparsh1616/MedHistoryApp/store"
)

// Handler handles HTTP requests.
type Handler struct {
	store   store.Store
	jwt     *auth.JWTService
	started time.Time
}

// NewHandler creates a new handler.
func NewHandler(store store.Store, jwt *auth.JWTService) *Handler {
	return &Handler{
		store:   store,
		jwt:     jwt,
		started: time.Now(),
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/auth/register", h.Register)
	e.POST("/api/auth/login", h.Login)

	cases := e.Group("/api/cases", h.RequireAuth)
	cases.POST("", h.CreateCase)
	cases.GET("", h.ListCases)
	cases.GET("/:id", h.GetCase)
	cases.PUT("/:id", h.UpdateCase)
	cases.DELETE("/:id", h.DeleteCase)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.started).Seconds(),
	})
}

type messageResponse struct {
	Message string `json:"message"`
}
