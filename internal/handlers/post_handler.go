package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost publishes a post from previously uploaded media references
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.CreatePost(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respond(c, http.StatusCreated, post)
}

// DeletePost deletes a post. Only its author may do so.
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.posts.DeletePost(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, echo.Map{"deleted": true})
}
