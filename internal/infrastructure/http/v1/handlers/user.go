package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"tenantpress/internal/core/tenant"
	"tenantpress/internal/domain/user"
	"tenantpress/internal/infrastructure/http/v1/dto"
)

// UserService is the part of user.Service the handler uses.
type UserService interface {
	Get(ctx context.Context, tenantID tenant.ID, id user.ID) (*user.Dto, error)
	Register(ctx context.Context, tenantID tenant.ID, in user.CreateActive) (user.ID, error)
	Delete(ctx context.Context, tenantID tenant.ID, id user.ID) error
}

// UserHandler handles user endpoints.
type UserHandler struct {
	*BaseHandler
	service UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(base *BaseHandler, service UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToCreateActive()
	if err != nil {
		h.Error(c, err)
		return
	}

	id, err := h.service.Register(c.Request.Context(), tenantID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, id.Int64())
}

// Get handles GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, err := user.ParseIDString(c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	u, err := h.service.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, u)
}

// Delete handles DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, err := user.ParseIDString(c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
