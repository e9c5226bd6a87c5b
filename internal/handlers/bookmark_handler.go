package handlers

import (
	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// BookmarkHandler handles bookmark requests
type BookmarkHandler struct {
	posts *services.PostService
}

func NewBookmarkHandler(posts *services.PostService) *BookmarkHandler {
	return &BookmarkHandler{posts: posts}
}

// RegisterBookmarkRoutes registers bookmark routes
func (h *BookmarkHandler) RegisterBookmarkRoutes(g *echo.Group) {
	g.POST("/posts/:id/bookmark", h.ToggleBookmark)
	g.GET("/bookmarks", h.GetBookmarkedPosts)
}

func (h *BookmarkHandler) ToggleBookmark(c echo.Context) error {
	saved, err := h.posts.ToggleBookmark(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, echo.Map{"bookmarked": saved})
}

func (h *BookmarkHandler) GetBookmarkedPosts(c echo.Context) error {
	posts, err := h.posts.GetBookmarkedPosts(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, posts)
}
