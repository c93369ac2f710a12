package server

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gatehouse/gatehouse/internal/domain"
	apperrors "github.com/gatehouse/gatehouse/internal/errors"
)

// contextKeySession stores the loaded session on the echo context.
const contextKeySession = "session"

// accessFilter loads the session for every request and gates non-public
// routes on an authenticated principal. Unauthenticated API requests get a
// structured 401; page requests get redirected to the login page. Paths
// that match no route are treated as protected.
func (s *Server) accessFilter(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := s.sessions.Load(c)
		if err != nil {
			return apperrors.InternalError("Session error", err)
		}
		c.Set(contextKeySession, sess)

		if s.publicRoutes[c.Request().Method+" "+c.Path()] {
			return next(c)
		}

		_, ok, err := sess.Get(c.Request().Context(), domain.SessionKeyUserID)
		if err != nil {
			return apperrors.InternalError("Session error", err)
		}
		if !ok {
			if strings.HasPrefix(c.Request().URL.Path, "/api/") {
				return apperrors.UnauthorizedError("Not authenticated")
			}
			return c.Redirect(302, "/login")
		}

		return next(c)
	}
}

// session returns the request session placed by the access filter.
func (s *Server) session(c echo.Context) domain.Session {
	if sess, ok := c.Get(contextKeySession).(domain.Session); ok {
		return sess
	}
	return nil
}
