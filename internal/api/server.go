package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kjannette/coinchat/internal/chat"
	"github.com/kjannette/coinchat/internal/logging"
	"github.com/kjannette/coinchat/internal/portfolio"
)

// Pinger reports whether the market data upstream answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr            string
	CORSAllowOrigin string
	// ChatInterval is the minimum spacing between chat requests per client.
	ChatInterval time.Duration
}

type Server struct {
	chat       *chat.Service
	store      portfolio.Store
	upstream   Pinger
	throttle   *Throttle
	handler    http.Handler
	httpServer *http.Server
	log        *logging.Logger
}

func NewServer(opts Options, svc *chat.Service, store portfolio.Store, upstream Pinger) *Server {
	s := &Server{
		chat:     svc,
		store:    store,
		upstream: upstream,
		throttle: NewThrottle(opts.ChatInterval),
		log:      logging.Component("api"),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/chat", s.throttle.Middleware(http.HandlerFunc(s.handleChat))).Methods(http.MethodPost)
	api.HandleFunc("/portfolio/{sessionId}", s.handleGetPortfolio).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/{sessionId}", s.handleClearPortfolio).Methods(http.MethodDelete)
	api.HandleFunc("/portfolio/{sessionId}/{coin}", s.handleRemoveHolding).Methods(http.MethodDelete)

	notFound := http.HandlerFunc(handleNotFound)
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound

	s.handler = s.loggingMiddleware(s.recoveryMiddleware(corsMiddleware(r, opts.CORSAllowOrigin)))

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.log.Infof("REST API server started on http://localhost%s", s.httpServer.Addr)
	s.log.Infof("Health check: http://localhost%s/health", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
