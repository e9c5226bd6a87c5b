package handlers

import (
	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow graph requests
type FollowHandler struct {
	graph *services.GraphService
}

func NewFollowHandler(graph *services.GraphService) *FollowHandler {
	return &FollowHandler{graph: graph}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.Follow)
	g.DELETE("/users/:id/follow", h.Unfollow)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/users/:id/followers", h.GetFollowers)
}

func (h *FollowHandler) Follow(c echo.Context) error {
	created, err := h.graph.Follow(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, echo.Map{"following": true, "created": created})
}

func (h *FollowHandler) Unfollow(c echo.Context) error {
	removed, err := h.graph.Unfollow(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, echo.Map{"following": false, "removed": removed})
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	users, err := h.graph.ListFollowing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, users)
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	users, err := h.graph.ListFollowers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, users)
}
