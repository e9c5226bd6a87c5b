package handlers

import (
	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves post listings annotated for the caller
type FeedHandler struct {
	posts *services.PostService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(posts *services.PostService) *FeedHandler {
	return &FeedHandler{posts: posts}
}

// RegisterFeedRoutes registers feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/me/posts", h.GetPostsByUser)
	g.GET("/users/:id/posts", h.GetPostsByUser)
}

// GetFeed returns every post newest first with like and bookmark flags
func (h *FeedHandler) GetFeed(c echo.Context) error {
	feed, err := h.posts.GetFeed(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, feed)
}

// GetPostsByUser lists one user's posts; without an id it lists the caller's
func (h *FeedHandler) GetPostsByUser(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	userID := c.Param("id")
	if userID == "" {
		userID = viewerID
	}
	posts, err := h.posts.GetPostsByUser(c.Request().Context(), viewerID, userID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, posts)
}
