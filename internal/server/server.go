package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pcrawford/timeclock/internal/auth"
	"github.com/pcrawford/timeclock/internal/handler"
	"github.com/pcrawford/timeclock/internal/metrics"
	"github.com/pcrawford/timeclock/internal/middleware"
	"github.com/pcrawford/timeclock/internal/store"
	ws "github.com/pcrawford/timeclock/internal/websocket"
)

type Config struct {
	TokenSecret string
	TokenTTL    time.Duration
}

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	weekH        *handler.WeekHandler
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	tokenIssuer  *auth.TokenIssuer
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	recordStore := store.NewWeeklyRecordStore(db)

	issuer := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, issuer, logger.With("component", "auth")),
		weekH:        handler.NewWeekHandler(recordStore, hub, logger.With("component", "week")),
		userStore:    userStore,
		sessionStore: sessionStore,
		tokenIssuer:  issuer,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/token", s.rateLimitedHandler(s.authH.Token))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", promhttp.Handler())

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore, s.tokenIssuer)
	outerMux.Handle("/api/", authMiddleware(protectedMux))

	// Request logging and Prometheus instrumentation wrap everything
	logged := middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
	return metrics.Instrument(logged)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)

	mux.HandleFunc("GET /api/week/current", s.weekH.Current)
	mux.HandleFunc("POST /api/week/save", s.weekH.Save)
	mux.HandleFunc("GET /api/week/history", s.weekH.History)

	mux.HandleFunc("GET /api/ws", ws.Handle(s.hub, s.logger.With("component", "websocket")))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
