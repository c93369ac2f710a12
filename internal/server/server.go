// Package server wires the HTTP surface: routes, access filtering, and the
// handlers for pages and the auth API.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gatehouse/gatehouse/internal/auth"
	apperrors "github.com/gatehouse/gatehouse/internal/errors"
	"github.com/gatehouse/gatehouse/internal/platform/config"
	"github.com/gatehouse/gatehouse/internal/registry"
	"github.com/gatehouse/gatehouse/internal/session"
	"github.com/gatehouse/gatehouse/internal/views"
)

type Server struct {
	echo     *echo.Echo
	config   *config.Config
	auth     *auth.Service
	sessions *session.Manager
	registry *registry.Registry
	views    *views.Loader

	// publicRoutes maps "METHOD path-pattern" to routes the access filter
	// admits without a session.
	publicRoutes map[string]bool
}

func NewServer(cfg *config.Config, authSvc *auth.Service, sessions *session.Manager, reg *registry.Registry, loader *views.Loader) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		auth:         authSvc,
		sessions:     sessions,
		registry:     reg,
		views:        loader,
		publicRoutes: make(map[string]bool),
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())
	e.Use(srv.accessFilter)

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
