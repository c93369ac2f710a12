package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gatehouse/gatehouse/internal/platform/version"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":           "ok",
		"database_clients": s.registry.Size(),
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHello(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message":   "Hello from Gatehouse!",
		"service":   "gatehouse",
		"version":   version.Version,
		"commit":    version.Commit,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
