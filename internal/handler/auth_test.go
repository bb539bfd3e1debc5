package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pcrawford/timeclock/internal/auth"
	"github.com/pcrawford/timeclock/internal/database"
	"github.com/pcrawford/timeclock/internal/middleware"
	"github.com/pcrawford/timeclock/internal/model"
	"github.com/pcrawford/timeclock/internal/store"
)

func setupAuthTest(t *testing.T) (*AuthHandler, *store.UserStore, *store.SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	sessions := store.NewSessionStore(db)
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	h := NewAuthHandler(users, sessions, issuer, slog.Default())
	return h, users, sessions
}

func postJSON(target, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestRegister(t *testing.T) {
	h, _, _ := setupAuthTest(t)

	rec := httptest.NewRecorder()
	h.Register(rec, postJSON("/api/register", `{"username":"alice","email":"a@example.com","password":"pw"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body)
	}

	var u model.User
	if err := json.NewDecoder(rec.Body).Decode(&u); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("username = %q, want %q", u.Username, "alice")
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not leak password fields")
	}
}

func TestRegisterMissingUsername(t *testing.T) {
	h, _, _ := setupAuthTest(t)

	rec := httptest.NewRecorder()
	h.Register(rec, postJSON("/api/register", `{"password":"pw"}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRegisterMissingPassword(t *testing.T) {
	h, _, _ := setupAuthTest(t)

	rec := httptest.NewRecorder()
	h.Register(rec, postJSON("/api/register", `{"username":"alice"}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	h, _, _ := setupAuthTest(t)

	rec := httptest.NewRecorder()
	h.Register(rec, postJSON("/api/register", `{"username":"alice","password":"pw"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Register(rec, postJSON("/api/register", `{"username":"alice","password":"other"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["error"] != "username already exists" {
		t.Errorf("error = %q, want %q", resp["error"], "username already exists")
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h, users, _ := setupAuthTest(t)
	users.Create("alice", "", "pw")

	rec := httptest.NewRecorder()
	h.Login(rec, postJSON("/api/login", `{"username":"alice","password":"pw"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body)
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie")
	}
	if sessionCookie.Value == "" {
		t.Error("expected non-empty session token")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, users, _ := setupAuthTest(t)
	users.Create("alice", "", "pw")

	rec := httptest.NewRecorder()
	h.Login(rec, postJSON("/api/login", `{"username":"alice","password":"wrong"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	h, _, _ := setupAuthTest(t)

	rec := httptest.NewRecorder()
	h.Login(rec, postJSON("/api/login", `{"username":"nobody","password":"pw"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLoginMissingCredentials(t *testing.T) {
	h, _, _ := setupAuthTest(t)

	rec := httptest.NewRecorder()
	h.Login(rec, postJSON("/api/login", `{"username":"alice"}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTokenEndpoint(t *testing.T) {
	h, users, _ := setupAuthTest(t)
	users.Create("alice", "", "pw")

	rec := httptest.NewRecorder()
	h.Token(rec, postJSON("/api/token", `{"username":"alice","password":"pw"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body)
	}

	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["token"] == "" {
		t.Error("expected non-empty token")
	}
}

func TestTokenWrongPassword(t *testing.T) {
	h, users, _ := setupAuthTest(t)
	users.Create("alice", "", "pw")

	rec := httptest.NewRecorder()
	h.Token(rec, postJSON("/api/token", `{"username":"alice","password":"wrong"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	h, users, sessions := setupAuthTest(t)
	u, _ := users.Create("alice", "", "pw")
	sess, _ := sessions.Create(u.ID)

	r := postJSON("/api/logout", ``)
	r = r.WithContext(auth.WithAuth(r.Context(), auth.AuthContext{UserID: u.ID, SessionID: sess.ID}))

	rec := httptest.NewRecorder()
	h.Logout(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	gone, err := sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if gone != nil {
		t.Error("session should be deleted after logout")
	}

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			cleared = c
		}
	}
	if cleared == nil || cleared.MaxAge != -1 {
		t.Error("expected session cookie to be cleared")
	}
}
