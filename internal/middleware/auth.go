package middleware

import (
	"context"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/labstack/echo/v4"
)

// SubjectKey is the echo context key holding the verified external identity
const SubjectKey = "authSubject"

// TokenVerifier checks a bearer token and returns the external identity it was issued for
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// token subject on the context.
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return apperr.ToHTTP(apperr.Unauthenticated("Authorization header is missing"))
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apperr.ToHTTP(apperr.Unauthenticated("Authorization header must be in Bearer format"))
			}

			subject, err := verifier.Verify(c.Request().Context(), parts[1])
			if err != nil {
				return apperr.ToHTTP(err)
			}
			c.Set(SubjectKey, subject)
			return next(c)
		}
	}
}

// Subject returns the identity stored by Authenticate, or "" if none
func Subject(c echo.Context) string {
	s, _ := c.Get(SubjectKey).(string)
	return s
}
