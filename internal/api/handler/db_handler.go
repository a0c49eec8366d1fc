package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datamind/datamind-api/internal/api/metrics"
	"github.com/datamind/datamind-api/internal/dbconn"
)

// DBHandler exposes the connection probe for the session's active database.
// It is the only handler backed by the privileged credential path, and even
// here the plaintext never reaches the response.
type DBHandler struct {
	prober *dbconn.Prober
}

func NewDBHandler(prober *dbconn.Prober) *DBHandler {
	return &DBHandler{prober: prober}
}

// Test opens, pings, and closes a connection to the active database.
//
// @Summary      Probe the session's active database
// @Tags         database
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /db/test [post]
func (h *DBHandler) Test(c echo.Context) error {
	token, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	if err := h.prober.Probe(c.Request().Context(), token); err != nil {
		metrics.DatabaseProbesTotal.WithLabelValues("unreachable").Inc()
		return err
	}
	metrics.DatabaseProbesTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
