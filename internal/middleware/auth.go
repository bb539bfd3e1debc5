package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pcrawford/timeclock/internal/auth"
	"github.com/pcrawford/timeclock/internal/store"
)

const SessionCookieName = "timeclock_session"

// RequireAuth authenticates the request and populates AuthContext.
// Browser clients carry a session cookie; API clients may instead send
// an Authorization: Bearer JWT. Unauthenticated requests get 401 JSON.
func RequireAuth(sessions *store.SessionStore, users *store.UserStore, issuer *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ac, ok := fromCookie(r, sessions); ok {
				next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
				return
			}
			if ac, ok := fromBearer(r, users, issuer); ok {
				next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
				return
			}
			unauthorized(w)
		})
	}
}

func fromCookie(r *http.Request, sessions *store.SessionStore) (auth.AuthContext, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return auth.AuthContext{}, false
	}

	sess, err := sessions.GetByToken(cookie.Value)
	if err != nil || sess == nil {
		return auth.AuthContext{}, false
	}

	return auth.AuthContext{UserID: sess.UserID, SessionID: sess.ID}, true
}

func fromBearer(r *http.Request, users *store.UserStore, issuer *auth.TokenIssuer) (auth.AuthContext, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return auth.AuthContext{}, false
	}

	userID, err := issuer.Verify(strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		return auth.AuthContext{}, false
	}

	// Token subjects must still reference a live user
	u, err := users.GetByID(userID)
	if err != nil || u == nil {
		return auth.AuthContext{}, false
	}

	return auth.AuthContext{UserID: u.ID}, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
