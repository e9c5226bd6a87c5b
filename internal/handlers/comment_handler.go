package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	posts *services.PostService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(posts *services.PostService) *CommentHandler {
	return &CommentHandler{posts: posts}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:id/comments", h.GetComments)
	g.POST("/posts/:id/comments", h.AddComment)
}

// GetComments returns the post's comments, oldest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.posts.GetComments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, comments)
}

func (h *CommentHandler) AddComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.posts.AddComment(c.Request().Context(), getUserIDFromContext(c), c.Param("id"), req.Text)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respond(c, http.StatusCreated, comment)
}
