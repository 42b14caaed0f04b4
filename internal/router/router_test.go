package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/handlers"
	"github.com/anonto42/nano-blog/backend/pkg/config"
	"github.com/anonto42/nano-blog/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	to, token string
}

type captureMailer struct {
	verify []capturedMail
}

func (m *captureMailer) SendVerificationEmail(_ context.Context, toEmail, _, token string) error {
	m.verify = append(m.verify, capturedMail{to: toEmail, token: token})
	return nil
}

func (m *captureMailer) SendPasswordResetEmail(context.Context, string, string, string) error {
	return nil
}

type testServer struct {
	e      *echo.Echo
	mailer *captureMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:       "router-test-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.OpenSQL("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler
	config.SetupMiddleware(e, cfg)

	mailer := &captureMailer{}
	require.NoError(t, SetupRoutes(e, Dependencies{Config: cfg, SQL: db, Mailer: mailer}))
	return &testServer{e: e, mailer: mailer}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	out := map[string]any{}
	status := s.decode(t, method, path, token, body, &out)
	return status, out
}

func (s *testServer) decode(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

// signup registers, verifies and logs in a user, returning the access token
func (s *testServer) signup(t *testing.T, username string) string {
	t.Helper()
	email := username + "@example.com"
	status, _ := s.do(t, http.MethodPost, "/api/v1/auth/register/", "", map[string]string{
		"email": email, "username": username, "password": "password123", "password_confirm": "password123",
	})
	require.Equal(t, http.StatusCreated, status)

	mail := s.mailer.verify[len(s.mailer.verify)-1]
	require.Equal(t, email, mail.to)
	status, _ = s.do(t, http.MethodGet, "/api/v1/auth/verify-email/?token="+mail.token, "", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := s.do(t, http.MethodPost, "/api/v1/auth/login/", "", map[string]string{
		"email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	return body["access"].(string)
}

func TestHealthAndRoot(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	status, body = s.do(t, http.MethodGet, "/api/v1/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "v1", body["version"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/v1/notifications/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["error"].(map[string]any)["code"])

	status, _ = s.do(t, http.MethodGet, "/api/v1/posts/", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/posts/", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestValidationErrorEnvelope(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/v1/auth/register/", "", map[string]string{"email": "nope"})
	require.Equal(t, http.StatusBadRequest, status)
	envelope := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", envelope["code"])
	assert.Contains(t, envelope["fields"], "email")
}

func TestLikeCommentFollowFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	status, post := s.do(t, http.MethodPost, "/api/v1/posts/", alice, map[string]string{
		"title": "Hello from alice", "content": "This is my very first post.",
	})
	require.Equal(t, http.StatusCreated, status)
	postID := int(post["id"].(float64))

	likePath := fmt.Sprintf("/api/v1/posts/%d/like/", postID)
	status, like := s.do(t, http.MethodPost, likePath, bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, like["liked"])

	status, _ = s.do(t, http.MethodPost, likePath, bob, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, comment := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments/", postID), bob, map[string]any{
		"content": "Welcome!",
	})
	require.Equal(t, http.StatusCreated, status)
	commentID := int(comment["id"].(float64))

	status, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments/", postID), alice, map[string]any{
		"content": "Thanks!", "parent": commentID,
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/profiles/alice/follow/", bob, nil)
	require.Equal(t, http.StatusOK, status)

	status, page := s.do(t, http.MethodGet, "/api/v1/notifications/", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, page["count"])

	var unread []map[string]any
	status = s.decode(t, http.MethodGet, "/api/v1/notifications/unread/", bob, nil, &unread)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, unread, 1)
	assert.Equal(t, "alice replied to your comment", unread[0]["message"])

	status, _ = s.do(t, http.MethodDelete, "/api/v1/auth/profiles/alice/follow/", bob, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/unlike/", postID), bob, nil)
	require.Equal(t, http.StatusOK, status)

	status, page = s.do(t, http.MethodGet, "/api/v1/notifications/?verb=commented", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, page["count"])

	status, stats := s.do(t, http.MethodGet, "/api/v1/notifications/stats/", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, stats["total_count"])

	status, feed := s.do(t, http.MethodGet, "/api/v1/search/?q=alice", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, feed["total_results"])
}
