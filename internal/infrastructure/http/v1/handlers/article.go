package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"tenantpress/internal/core/tenant"
	"tenantpress/internal/domain/article"
	"tenantpress/internal/infrastructure/http/v1/dto"
)

// ArticleService is the part of article.Service the handler uses.
type ArticleService interface {
	Get(ctx context.Context, tenantID tenant.ID, id article.ID) (*article.Dto, error)
	List(ctx context.Context, tenantID tenant.ID) ([]article.Dto, error)
	Create(ctx context.Context, tenantID tenant.ID, in article.Create) (article.ID, error)
	Delete(ctx context.Context, tenantID tenant.ID, id article.ID) error
	AddComment(ctx context.Context, tenantID tenant.ID, in article.CommentCreate) (article.CommentID, error)
}

// ArticleHandler handles article endpoints.
type ArticleHandler struct {
	*BaseHandler
	service ArticleService
}

// NewArticleHandler creates a new article handler.
func NewArticleHandler(base *BaseHandler, service ArticleService) *ArticleHandler {
	return &ArticleHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /articles
func (h *ArticleHandler) List(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	items, err := h.service.List(c.Request.Context(), tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// Get handles GET /articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, err := article.ParseIDString(c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	a, err := h.service.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, a)
}

// Create handles POST /articles
func (h *ArticleHandler) Create(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.CreateArticleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToCreate()
	if err != nil {
		h.Error(c, err)
		return
	}

	id, err := h.service.Create(c.Request.Context(), tenantID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, id.Int64())
}

// Delete handles DELETE /articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, err := article.ParseIDString(c.Param("id"))
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

// AddComment handles POST /articles/:id/comments
func (h *ArticleHandler) AddComment(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	articleID, err := article.ParseIDString(c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.CreateCommentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToCommentCreate(articleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	id, err := h.service.AddComment(c.Request.Context(), tenantID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, id.Int64())
}
