package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile and presence requests
type UserHandler struct {
	identity *services.IdentityService
	presence *services.PresenceService
}

func NewUserHandler(identity *services.IdentityService, presence *services.PresenceService) *UserHandler {
	return &UserHandler{identity: identity, presence: presence}
}

// RegisterSignupRoutes registers routes open to callers without a profile yet
func (h *UserHandler) RegisterSignupRoutes(g *echo.Group) {
	g.POST("/users", h.CreateUser)
}

// RegisterProfileRoutes registers profile and presence routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/me", h.GetCurrentUser)
	g.GET("/users/:id", h.GetUserProfile)
	g.GET("/users/:id/status", h.GetOnlineStatus)
	g.PUT("/presence", h.UpdatePresence)
}

// CreateUser registers the caller's profile. Repeating it returns the
// existing profile with 200 instead of 201.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, created, err := h.identity.Register(c.Request().Context(), middleware.Subject(c), req)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return respond(c, status, user)
}

func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	return respondOK(c, currentUser(c))
}

func (h *UserHandler) GetUserProfile(c echo.Context) error {
	user, err := h.identity.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, user)
}

func (h *UserHandler) GetOnlineStatus(c echo.Context) error {
	status, err := h.presence.GetOnlineStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, status)
}

// UpdatePresence is the heartbeat clients send periodically; online=false
// marks the caller offline.
func (h *UserHandler) UpdatePresence(c echo.Context) error {
	var req models.UpdatePresenceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID := getUserIDFromContext(c)
	if err := h.presence.UpdatePresence(c.Request().Context(), userID, *req.Online); err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, echo.Map{"online": *req.Online})
}
