package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes builds the route table. Each route carries an explicit
// public flag; anything not registered as public requires an authenticated
// session, including paths that match no route at all.
func (s *Server) registerRoutes() {
	// Pages
	s.public(http.MethodGet, "/", s.handleHome)
	s.public(http.MethodGet, "/login", s.handleLoginPage)
	s.public(http.MethodGet, "/register", s.handleRegisterPage)
	s.public(http.MethodGet, "/greet/:name", s.handleGreet)

	// Auth API. Logout is public: logging out without a session is a no-op
	// success, not an auth failure.
	s.public(http.MethodPost, "/api/register", s.handleRegister)
	s.public(http.MethodPost, "/api/login", s.handleLogin)
	s.public(http.MethodPost, "/api/logout", s.handleLogout)
	s.echo.GET("/api/me", s.handleMe)

	// Glue and observability
	s.public(http.MethodGet, "/api/hello", s.handleHello)
	s.public(http.MethodGet, "/health", s.handleHealth)
	s.public(http.MethodGet, "/metrics", echo.WrapHandler(promhttp.Handler()))

	// Static assets
	s.static("/css", "web/public/css")
	s.static("/js", "web/public/js")
	s.static("/fonts", "web/public/fonts")
}

// public registers a route and marks it exempt from the access filter.
func (s *Server) public(method, path string, h echo.HandlerFunc) {
	route := s.echo.Add(method, path, h)
	s.publicRoutes[method+" "+route.Path] = true
}

func (s *Server) static(prefix, root string) {
	route := s.echo.Static(prefix, root)
	s.publicRoutes[http.MethodGet+" "+route.Path] = true
}
