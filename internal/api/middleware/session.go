package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/datamind/datamind-api/internal/api/metrics"
	"github.com/datamind/datamind-api/internal/core/domain"
	"github.com/datamind/datamind-api/internal/core/ports"
)

// Context keys set by the Session middleware.
const (
	ContextKeyToken   = "token"
	ContextKeySession = "session"
)

// Session resolves the bearer token into a sanitized session context and
// injects both into the echo context. Resolution failures surface as 401 via
// the central error handler. After a successful resolve the session is
// touched so expiry slides with activity; touch failures never fail the
// request.
func Session(broker ports.SessionBroker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}

			sessionCtx, err := broker.Resolve(c.Request().Context(), token)
			if err != nil {
				metrics.ResolutionsTotal.WithLabelValues(resolutionResult(err)).Inc()
				return err
			}
			metrics.ResolutionsTotal.WithLabelValues("ok").Inc()

			_ = broker.Touch(c.Request().Context(), token)

			c.Set(ContextKeyToken, token)
			c.Set(ContextKeySession, sessionCtx)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}

func resolutionResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired), errors.Is(err, domain.ErrSessionExpired):
		return "expired"
	case errors.Is(err, domain.ErrSessionRevoked):
		return "revoked"
	default:
		return "invalid"
	}
}
