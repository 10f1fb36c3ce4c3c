package api

import (
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kjannette/coinchat/internal/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		reqLog := s.log.WithFields(map[string]any{"method": r.Method, "path": r.URL.Path})
		next.ServeHTTP(rec, r.WithContext(logging.NewContext(r.Context(), reqLog)))

		reqLog.WithFields(map[string]any{
			"status":   rec.status,
			"duration": time.Since(start).Round(time.Millisecond).String(),
		}).Infof("%s %s", r.Method, r.URL.Path)
	})
}

// recoveryMiddleware turns a handler panic into the chat server-error reply.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				logging.FromContext(r.Context()).
					WithField("panic", fmt.Sprint(rv)).
					Errorf("handler panic\n%s", debug.Stack())
				writeJSON(w, http.StatusInternalServerError, s.chat.ServerError())
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Throttle spaces requests from the same client at least interval apart.
// Requests wait their turn rather than being rejected; a request whose
// context ends while waiting gets 429.
type Throttle struct {
	interval time.Duration
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval, limiters: make(map[string]*rate.Limiter)}
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(t.interval), 1)
		t.limiters[key] = l
	}
	return l
}

func (t *Throttle) Middleware(next http.Handler) http.Handler {
	if t.interval <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := t.limiter(clientKey(r)).Wait(r.Context()); err != nil {
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
