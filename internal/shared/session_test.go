package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tienda-pos/tienda/internal/shared"
	_ "github.com/tienda-pos/tienda/testing"
)

func newManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	manager := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetUser("42")
	sess.Set("cart", "open")

	res := httptest.NewRecorder()
	if err := manager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	cookies := res.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected session cookie to be set")
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: sess.ID})
	restored, err := manager.Load(ctx, next)
	if err != nil {
		t.Fatalf("load restored session: %v", err)
	}
	if restored.User() != "42" {
		t.Fatalf("expected user 42, got %q", restored.User())
	}
	if restored.Get("cart") != "open" {
		t.Fatalf("expected cart value to survive the round trip")
	}
}

func TestSessionDestroy(t *testing.T) {
	manager := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetUser("7")
	if err := manager.Commit(ctx, httptest.NewRecorder(), req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	manager.Destroy(sess)
	res := httptest.NewRecorder()
	if err := manager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit destroyed session: %v", err)
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: sess.ID})
	restored, err := manager.Load(ctx, next)
	if err != nil {
		t.Fatalf("load after destroy: %v", err)
	}
	if restored.User() != "" {
		t.Fatalf("expected anonymous session after destroy, got user %q", restored.User())
	}

	var cleared bool
	for _, c := range res.Result().Cookies() {
		if c.Name == manager.CookieName() && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected expired cookie after destroy")
	}
}

func TestCSRFTokenLifecycle(t *testing.T) {
	manager := newManager(t)
	csrf := shared.NewCSRFManager("csrfsecret")
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}

	token, err := csrf.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token to be generated")
	}

	again, err := csrf.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token again: %v", err)
	}
	if again != token {
		t.Fatalf("expected stable token for the session")
	}

	if err := csrf.VerifyToken(ctx, sess, token); err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if err := csrf.VerifyToken(ctx, sess, "forged"); err == nil {
		t.Fatalf("expected forged token to be rejected")
	}
}
