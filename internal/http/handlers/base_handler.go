// README: Shared handler utilities (JSON helpers, error mapping, actor
// resolution from JWT claims).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridedispatch/internal/auth"
	"ridedispatch/internal/http/middleware"
	"ridedispatch/internal/modules/address"
	"ridedispatch/internal/modules/driver"
	"ridedispatch/internal/modules/service"
	"ridedispatch/internal/modules/user"
	"ridedispatch/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps domain failures onto HTTP statuses. Invalid
// transitions carry the offending from/to states.
func writeServiceError(c *gin.Context, err error) {
	var te *service.TransitionError
	switch {
	case errors.Is(err, types.ErrInvalidCoordinate):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrReasonRequired):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, driver.ErrNotFound),
		errors.Is(err, address.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbiddenActor):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.As(err, &te):
		writeJSON(c, http.StatusConflict, errorResponse{
			Error: te.Error(),
			From:  string(te.From),
			To:    string(te.To),
		})
	case errors.Is(err, service.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// actorFrom translates JWT claims into a lifecycle actor.
func actorFrom(claims *auth.Claims) service.Actor {
	role := service.RoleClient
	switch claims.Role {
	case user.RoleDriver:
		role = service.RoleDriver
	case user.RoleAdmin:
		role = service.RoleAdmin
	}
	return service.Actor{ID: types.ID(claims.Subject), Role: role}
}

// mustClaims is safe behind the Auth middleware.
func mustClaims(c *gin.Context) (*auth.Claims, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "unauthenticated")
	}
	return claims, ok
}
