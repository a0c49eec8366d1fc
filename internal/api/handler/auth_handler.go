package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datamind/datamind-api/internal/api/metrics"
	"github.com/datamind/datamind-api/internal/core/domain"
	"github.com/datamind/datamind-api/internal/core/ports"
)

// AuthHandler exposes the auth and session HTTP surface over the broker.
type AuthHandler struct {
	broker ports.SessionBroker
}

func NewAuthHandler(broker ports.SessionBroker) *AuthHandler {
	return &AuthHandler{broker: broker}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type signupResponse struct {
	UserID string `json:"user_id"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type setDatabaseRequest struct {
	Dialect  string `json:"dialect" validate:"required,oneof=postgres mysql"`
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"required,gt=0"`
	Database string `json:"database" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Signup creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account credentials"
// @Success      201   {object}  signupResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.broker.Signup(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues(signupResult(err)).Inc()
		return err
	}
	metrics.SignupsTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusCreated, signupResponse{UserID: user.ID})
}

// Login authenticates a user and returns a session-bound token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  ports.IssuedToken
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	issued, err := h.broker.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		result := "error"
		if err == domain.ErrInvalidCredentials {
			result = "rejected"
		}
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, issued)
}

// Logout revokes the session behind the bearer token.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	if err := h.broker.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	metrics.SessionsRevokedTotal.Inc()

	return c.NoContent(http.StatusNoContent)
}

// Me returns the sanitized session context.
//
// @Summary      Current session
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  domain.SanitizedContext
// @Failure      401  {object}  map[string]string
// @Router       /auth/session/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	_, session, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

// SetDatabase attaches a database descriptor to the session. The password is
// encrypted before anything is stored; this endpoint never opens a
// connection.
//
// @Summary      Select the session's active database
// @Tags         auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      setDatabaseRequest  true  "Database descriptor"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/session/set-db [post]
func (h *AuthHandler) SetDatabase(c echo.Context) error {
	token, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req setDatabaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	desc := ports.DatabaseDescriptor{
		Dialect:  req.Dialect,
		Host:     req.Host,
		Port:     req.Port,
		Database: req.Database,
		Username: req.Username,
		Password: req.Password,
	}
	if err := h.broker.SetActiveDatabase(c.Request().Context(), token, desc); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "database connected"})
}

func signupResult(err error) string {
	if err == domain.ErrUserExists {
		return "duplicate"
	}
	return "error"
}
