// README: User handlers. Creation is admin-only and returns an access token
// for the new account; full identity management is out of scope.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridedispatch/internal/auth"
	"ridedispatch/internal/modules/user"
	"ridedispatch/internal/types"
)

type UserHandler struct {
	users user.Store
	auth  *auth.Manager
}

func NewUserHandler(users user.Store, mgr *auth.Manager) *UserHandler {
	return &UserHandler{users: users, auth: mgr}
}

type createUserReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

type userResponse struct {
	ID    types.ID  `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
	Role  user.Role `json:"role"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Phone: u.Phone, Role: u.Role}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	role := user.Role(req.Role)
	switch role {
	case user.RoleClient, user.RoleDriver, user.RoleAdmin:
	default:
		writeError(c, http.StatusBadRequest, "role must be client, driver or admin")
		return
	}
	if req.Name == "" {
		writeError(c, http.StatusBadRequest, "name required")
		return
	}
	u := &user.User{
		ID:        types.NewID(),
		Name:      req.Name,
		Phone:     req.Phone,
		Role:      role,
		CreatedAt: time.Now(),
	}
	if err := h.users.Save(c.Request.Context(), u); err != nil {
		writeServiceError(c, err)
		return
	}
	token, err := h.auth.Issue(string(u.ID), u.Role)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"user": toUserResponse(u), "access_token": token})
}

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	writeJSON(c, http.StatusOK, gin.H{"users": out})
}
