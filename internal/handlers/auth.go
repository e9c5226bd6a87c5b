package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const currentUserKey = "currentUser"

// RequireUser resolves the verified token subject to the caller's User and
// stores it on the context. Callers without a profile get NotFound.
func RequireUser(identity *services.IdentityService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := identity.Resolve(c.Request().Context(), middleware.Subject(c))
			if err != nil {
				return apperr.ToHTTP(err)
			}
			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

func currentUser(c echo.Context) *models.User {
	u, _ := c.Get(currentUserKey).(*models.User)
	return u
}

func getUserIDFromContext(c echo.Context) string {
	if u := currentUser(c); u != nil {
		return u.ID
	}
	return ""
}

// bindAndValidate decodes the body into req and runs the struct validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.ToHTTP(apperr.InvalidArgument("Invalid request payload"))
	}
	if err := c.Validate(req); err != nil {
		return apperr.ToHTTP(err)
	}
	return nil
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondOK(c echo.Context, data interface{}) error {
	return respond(c, http.StatusOK, data)
}
