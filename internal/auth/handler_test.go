package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tienda-pos/tienda/internal/auth"
	"github.com/tienda-pos/tienda/internal/shared"
	_ "github.com/tienda-pos/tienda/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) GetByEmail(context.Context, string) (auth.User, error) {
	if s.user == nil {
		return auth.User{}, shared.ErrNotFound
	}
	return *s.user, nil
}

func (s *stubRepo) GetByID(context.Context, int64) (auth.User, error) {
	if s.user == nil {
		return auth.User{}, shared.ErrNotFound
	}
	return *s.user, nil
}

func newHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewHandler(logger, auth.NewService(repo), sessions, csrf), sessions
}

func withSession(t *testing.T, sessions *shared.SessionManager, req *http.Request) (*http.Request, *shared.Session) {
	t.Helper()
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess)), sess
}

func TestLoginSuccess(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	handler, sessions := newHandler(t, &stubRepo{user: &auth.User{
		ID: 1, Name: "Ana", Email: "ana@tienda.test", PasswordHash: string(hashed),
	}})

	body := strings.NewReader(`{"email":"ana@tienda.test","password":"correctpass"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	req, sess := withSession(t, sessions, req)

	res := httptest.NewRecorder()
	handler.Login(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "1", sess.User())

	var payload struct {
		CSRFToken string `json:"csrf_token"`
		User      struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.CSRFToken)
	require.Equal(t, "ana@tienda.test", payload.User.Email)
	require.NotContains(t, res.Body.String(), "password_hash")
}

func TestLoginWrongPassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	handler, sessions := newHandler(t, &stubRepo{user: &auth.User{
		ID: 1, Email: "ana@tienda.test", PasswordHash: string(hashed),
	}})

	body := strings.NewReader(`{"email":"ana@tienda.test","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	req, sess := withSession(t, sessions, req)

	res := httptest.NewRecorder()
	handler.Login(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Empty(t, sess.User())
}

func TestLogoutDestroysSession(t *testing.T) {
	handler, sessions := newHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req, _ = withSession(t, sessions, req)

	res := httptest.NewRecorder()
	handler.Logout(res, req)
	require.Equal(t, http.StatusNoContent, res.Code)
}
