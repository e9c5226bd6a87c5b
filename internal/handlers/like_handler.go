package handlers

import (
	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	posts *services.PostService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(posts *services.PostService) *LikeHandler {
	return &LikeHandler{posts: posts}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
}

// ToggleLike likes the post, or unlikes it if the caller already did
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	liked, err := h.posts.ToggleLike(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, echo.Map{"liked": liked})
}
