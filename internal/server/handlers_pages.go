package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/gatehouse/gatehouse/internal/errors"
)

func (s *Server) handleHome(c echo.Context) error {
	return s.renderPage(c, "home", nil)
}

func (s *Server) handleLoginPage(c echo.Context) error {
	return s.renderPage(c, "login", nil)
}

func (s *Server) handleRegisterPage(c echo.Context) error {
	return s.renderPage(c, "register", nil)
}

func (s *Server) handleGreet(c echo.Context) error {
	return s.renderPage(c, "greet", map[string]string{"NAME": c.Param("name")})
}

func (s *Server) renderPage(c echo.Context, name string, values map[string]string) error {
	page, err := s.views.Render(name, values)
	if err != nil {
		return apperrors.InternalError("Page not available", err)
	}
	return c.HTML(http.StatusOK, page)
}
