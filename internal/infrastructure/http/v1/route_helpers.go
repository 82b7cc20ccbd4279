package v1

import (
	"github.com/gin-gonic/gin"
)

// ArticleRouteHandler defines the methods the article routes dispatch to.
type ArticleRouteHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Delete(c *gin.Context)
	AddComment(c *gin.Context)
}

// UserRouteHandler defines the methods the user routes dispatch to.
type UserRouteHandler interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterArticleRoutes registers article and comment routes under rg.
func RegisterArticleRoutes(rg *gin.RouterGroup, h ArticleRouteHandler) {
	articles := rg.Group("/articles")
	{
		articles.GET("", h.List)
		articles.POST("", h.Create)
		articles.GET("/:id", h.Get)
		articles.DELETE("/:id", h.Delete)
		articles.POST("/:id/comments", h.AddComment)
	}
}

// RegisterUserRoutes registers user routes under rg.
func RegisterUserRoutes(rg *gin.RouterGroup, h UserRouteHandler) {
	users := rg.Group("/users")
	{
		users.POST("", h.Create)
		users.GET("/:id", h.Get)
		users.DELETE("/:id", h.Delete)
	}
}
