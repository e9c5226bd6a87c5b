package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/anonto42/snapgram/backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type client struct {
	t     *testing.T
	e     *echo.Echo
	jwt   *middleware.JWTVerifier
	token string
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
}

func newServer(t *testing.T) (*echo.Echo, *middleware.JWTVerifier) {
	t.Helper()
	db := testutil.OpenDB(t)
	clock := testutil.NewClock(time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))
	svc := services.New(repositories.NewStore(db), testutil.NewMemoryBlobStore(), nil, services.Options{
		PublicBaseURL: "http://example.test",
		Now:           clock.Now,
	}, zap.NewNop())
	verifier := middleware.NewJWTVerifier("router-test")
	e := New(Deps{DB: db, Services: svc, Verifier: verifier, Logger: zap.NewNop(), RateLimitRPS: 1000})
	return e, verifier
}

func (c *client) do(method, path string, body interface{}, contentType string) (int, envelope, []byte) {
	c.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		r = bytes.NewReader(raw)
		contentType = echo.MIMEApplicationJSON
	}
	req := httptest.NewRequest(method, path, r)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if c.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec.Code, env, rec.Body.Bytes()
}

func (c *client) data(method, path string, body interface{}, wantStatus int, out interface{}) {
	c.t.Helper()
	status, env, raw := c.do(method, path, body, "")
	require.Equal(c.t, wantStatus, status, string(raw))
	require.True(c.t, env.Success)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(env.Data, out))
	}
}

func signUp(t *testing.T, e *echo.Echo, v *middleware.JWTVerifier, username string) (*client, string) {
	t.Helper()
	token, err := v.IssueToken("ext-"+username, time.Hour)
	require.NoError(t, err)
	c := &client{t: t, e: e, jwt: v, token: token}
	var user struct {
		ID string `json:"id"`
	}
	c.data(http.MethodPost, "/api/v1/users", map[string]string{"username": username}, http.StatusCreated, &user)
	return c, user.ID
}

func (c *client) upload() string {
	c.t.Helper()
	var target struct {
		UploadURL string `json:"upload_url"`
		StorageID string `json:"storage_id"`
	}
	c.data(http.MethodPost, "/api/v1/media/upload-url", nil, http.StatusOK, &target)
	path := strings.TrimPrefix(target.UploadURL, "http://example.test")
	status, _, raw := c.do(http.MethodPut, path, []byte("image-bytes"), "image/jpeg")
	require.Equal(c.t, http.StatusOK, status, string(raw))
	return target.StorageID
}

func TestRouter_Health(t *testing.T) {
	e, _ := newServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequiresIdentity(t *testing.T) {
	e, v := newServer(t)
	anon := &client{t: t, e: e}
	status, env, _ := anon.do(http.MethodGet, "/api/v1/feed", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", env.Code)

	token, err := v.IssueToken("ext-ghost", time.Hour)
	require.NoError(t, err)
	ghost := &client{t: t, e: e, token: token}
	status, env, _ = ghost.do(http.MethodGet, "/api/v1/feed", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestRouter_PostLifecycle(t *testing.T) {
	e, v := newServer(t)
	alice, _ := signUp(t, e, v, "alice")
	bob, _ := signUp(t, e, v, "bob")

	ref := alice.upload()
	var post struct {
		ID       string `json:"id"`
		ImageURL string `json:"image_url"`
	}
	alice.data(http.MethodPost, "/api/v1/posts", map[string]interface{}{"storage_ids": []string{ref}, "caption": "sunset"}, http.StatusCreated, &post)
	assert.Equal(t, "http://example.test/media/"+ref, post.ImageURL)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/"+ref, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image-bytes", rec.Body.String())
	assert.Equal(t, "image/jpeg", rec.Header().Get(echo.HeaderContentType))

	var liked struct {
		Liked bool `json:"liked"`
	}
	bob.data(http.MethodPost, "/api/v1/posts/"+post.ID+"/like", nil, http.StatusOK, &liked)
	assert.True(t, liked.Liked)

	var feed []struct {
		ID      string `json:"id"`
		Likes   int    `json:"likes"`
		IsLiked bool   `json:"is_liked"`
	}
	bob.data(http.MethodGet, "/api/v1/feed", nil, http.StatusOK, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, 1, feed[0].Likes)
	assert.True(t, feed[0].IsLiked)

	status, env, _ := bob.do(http.MethodDelete, "/api/v1/posts/"+post.ID, nil, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Code)

	alice.data(http.MethodDelete, "/api/v1/posts/"+post.ID, nil, http.StatusOK, nil)
	bob.data(http.MethodGet, "/api/v1/feed", nil, http.StatusOK, &feed)
	assert.Empty(t, feed)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/"+ref, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ValidationErrors(t *testing.T) {
	e, v := newServer(t)
	alice, _ := signUp(t, e, v, "alice")

	status, env, _ := alice.do(http.MethodPost, "/api/v1/posts", map[string]interface{}{"storage_ids": []string{}}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ARGUMENT", env.Code)

	status, env, _ = alice.do(http.MethodPost, "/api/v1/posts", map[string]interface{}{"storage_ids": []string{"missing"}}, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "MEDIA_NOT_FOUND", env.Code)

	status, _, _ = alice.do(http.MethodPost, "/api/v1/posts", []byte("{not json"), echo.MIMEApplicationJSON)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_ChatFlow(t *testing.T) {
	e, v := newServer(t)
	alice, _ := signUp(t, e, v, "alice")
	bob, bobID := signUp(t, e, v, "bob")

	status, _, _ := alice.do(http.MethodPost, "/api/v1/chats", map[string]string{"other_user_id": bobID}, "")
	assert.Equal(t, http.StatusForbidden, status)

	alice.data(http.MethodPost, "/api/v1/users/"+bobID+"/follow", nil, http.StatusOK, nil)

	var chat struct {
		ChatID string `json:"chat_id"`
	}
	alice.data(http.MethodPost, "/api/v1/chats", map[string]string{"other_user_id": bobID}, http.StatusOK, &chat)
	require.NotEmpty(t, chat.ChatID)

	alice.data(http.MethodPost, "/api/v1/chats/"+chat.ChatID+"/messages", map[string]string{"content": "hi"}, http.StatusCreated, nil)

	var unread struct {
		Unread int `json:"unread"`
	}
	bob.data(http.MethodGet, "/api/v1/chats/unread-count", nil, http.StatusOK, &unread)
	assert.Equal(t, 1, unread.Unread)

	bob.data(http.MethodPost, "/api/v1/chats/"+chat.ChatID+"/read", nil, http.StatusOK, nil)
	bob.data(http.MethodGet, "/api/v1/chats/unread-count", nil, http.StatusOK, &unread)
	assert.Equal(t, 0, unread.Unread)

	var messages []struct {
		Status   string `json:"status"`
		IsSender bool   `json:"is_sender"`
	}
	alice.data(http.MethodGet, "/api/v1/chats/"+chat.ChatID+"/messages", nil, http.StatusOK, &messages)
	require.Len(t, messages, 1)
	assert.Equal(t, "seen", messages[0].Status)
	assert.True(t, messages[0].IsSender)

	var online struct {
		IsOnline bool `json:"is_online"`
	}
	alice.data(http.MethodPut, "/api/v1/presence", map[string]bool{"online": true}, http.StatusOK, nil)
	bob.data(http.MethodGet, "/api/v1/users/"+alice.mustMe()+"/status", nil, http.StatusOK, &online)
	assert.True(t, online.IsOnline)
}

func (c *client) mustMe() string {
	c.t.Helper()
	var me struct {
		ID string `json:"id"`
	}
	c.data(http.MethodGet, "/api/v1/me", nil, http.StatusOK, &me)
	return me.ID
}
