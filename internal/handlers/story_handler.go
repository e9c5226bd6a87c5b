package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	stories *services.StoryService
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(stories *services.StoryService) *StoryHandler {
	return &StoryHandler{stories: stories}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.GET("/stories", h.GetStories)
	g.GET("/stories/viewed", h.GetViewedStories)
	g.POST("/stories", h.CreateStory)
	g.DELETE("/stories/:id", h.DeleteStory)
	g.POST("/stories/:id/view", h.ViewStory)
}

// GetStories returns active stories of the caller and followed users, grouped by author
func (h *StoryHandler) GetStories(c echo.Context) error {
	groups, err := h.stories.GetActiveStoriesForViewer(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, groups)
}

func (h *StoryHandler) GetViewedStories(c echo.Context) error {
	ids, err := h.stories.GetViewedStoryIDs(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if ids == nil {
		ids = []string{}
	}
	return respondOK(c, ids)
}

func (h *StoryHandler) CreateStory(c echo.Context) error {
	var req models.CreateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	story, err := h.stories.CreateStory(c.Request().Context(), getUserIDFromContext(c), req.StorageID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respond(c, http.StatusCreated, story)
}

func (h *StoryHandler) DeleteStory(c echo.Context) error {
	if err := h.stories.DeleteStory(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, echo.Map{"deleted": true})
}

// ViewStory marks the story seen by the caller
func (h *StoryHandler) ViewStory(c echo.Context) error {
	counted, err := h.stories.ViewStory(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, echo.Map{"viewed": true, "counted": counted})
}
