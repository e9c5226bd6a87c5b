package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, verifier TokenVerifier, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = Subject(c)
		return c.NoContent(http.StatusNoContent)
	}, Authenticate(verifier))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthenticate_JWT(t *testing.T) {
	verifier := NewJWTVerifier("test-secret")
	token, err := verifier.IssueToken("ext-alice", time.Hour)
	require.NoError(t, err)

	rec, subject := serve(t, verifier, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ext-alice", subject)
}

func TestAuthenticate_Rejects(t *testing.T) {
	verifier := NewJWTVerifier("test-secret")
	other, err := NewJWTVerifier("other-secret").IssueToken("ext-alice", time.Hour)
	require.NoError(t, err)
	expired, err := verifier.IssueToken("ext-alice", -time.Minute)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"wrong secret", "Bearer " + other},
		{"expired", "Bearer " + expired},
		{"no subject", "Bearer " + noSubject},
		{"garbage", "Bearer not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, subject := serve(t, verifier, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, subject)
		})
	}
}

func TestRateLimit(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RateLimit(1))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, http.StatusNoContent, codes[0])
	assert.Contains(t, codes[1:], http.StatusTooManyRequests)
}

func TestRateLimit_NonPositiveDisables(t *testing.T) {
	for _, rps := range []float64{0, -1} {
		e := echo.New()
		e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RateLimit(rps))

		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusNoContent, rec.Code, "rps=%v request %d", rps, i)
		}
	}
}
