package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datamind/datamind-api/internal/api/middleware"
	"github.com/datamind/datamind-api/internal/core/domain"
)

// ctxSession extracts the sanitized session injected by the Session
// middleware, together with the raw bearer token. Presence of both proves
// the middleware ran; a missing value means the route was wired without it.
func ctxSession(c echo.Context) (token string, session *domain.SanitizedContext, err error) {
	token, _ = c.Get(middleware.ContextKeyToken).(string)
	session, _ = c.Get(middleware.ContextKeySession).(*domain.SanitizedContext)
	if token == "" || session == nil {
		return "", nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session context")
	}
	return token, session, nil
}
