package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/datamind/datamind-api/internal/core/domain"
)

// AuditHistory is the slice of the audit service this handler needs.
type AuditHistory interface {
	History(ctx context.Context, userID string, limit int) ([]*domain.AuthEvent, error)
}

// AuditHandler serves a user's own auth activity.
type AuditHandler struct {
	audit AuditHistory
}

func NewAuditHandler(audit AuditHistory) *AuditHandler {
	return &AuditHandler{audit: audit}
}

type historyResponse struct {
	Events []*domain.AuthEvent `json:"events"`
}

// History lists the caller's most recent auth events, newest first.
//
// @Summary      Auth activity for the current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query     int  false  "Max events (default 50, cap 100)"
// @Success      200    {object}  historyResponse
// @Failure      401    {object}  map[string]string
// @Router       /auth/session/history [get]
func (h *AuditHandler) History(c echo.Context) error {
	_, session, err := ctxSession(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	events, err := h.audit.History(c.Request().Context(), session.UserID, limit)
	if err != nil {
		return err
	}
	if events == nil {
		events = []*domain.AuthEvent{}
	}

	return c.JSON(http.StatusOK, historyResponse{Events: events})
}
