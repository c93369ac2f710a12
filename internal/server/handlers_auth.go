package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gatehouse/gatehouse/internal/domain"
	apperrors "github.com/gatehouse/gatehouse/internal/errors"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Missing fields")
	}

	creds := domain.Credentials{Username: req.Username, Email: req.Email, Password: req.Password}
	if err := s.auth.Register(c.Request().Context(), creds); err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Missing fields")
	}

	user, err := s.auth.Login(c.Request().Context(), s.session(c), req.Username, req.Password)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, loginResponse{Success: true, User: user})
}

func (s *Server) handleLogout(c echo.Context) error {
	if err := s.auth.Logout(c.Request().Context(), s.session(c)); err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleMe(c echo.Context) error {
	user, err := s.auth.Me(c.Request().Context(), s.session(c))
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// mapDomainError translates domain sentinels into the structured errors the
// response middleware renders. The client-facing messages are fixed; the
// underlying cause only ever reaches the logs.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return apperrors.ValidationError("Missing fields")
	case errors.Is(err, domain.ErrDuplicateCredential):
		return apperrors.ConflictError("Username or email already exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return apperrors.UnauthorizedError("Invalid credentials")
	case errors.Is(err, domain.ErrNotAuthenticated):
		return apperrors.UnauthorizedError("Not authenticated")
	case errors.Is(err, domain.ErrUserNotFound):
		return apperrors.NotFoundError("User not found")
	case errors.Is(err, domain.ErrNoDatabase):
		return apperrors.UnavailableError("Database not available")
	default:
		return apperrors.InternalError("Database error", err)
	}
}
