package web

import (
	"log/slog"
	"net/http"
	"time"

	"worktimer/internal/domain"
	"worktimer/internal/errors"
)

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs one line per request.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}

// authedHandler is a handler that runs for a signed-in user.
type authedHandler func(w http.ResponseWriter, r *http.Request, user domain.User)

// authed resolves the session cookie and rejects anonymous requests with 401.
func (s *Server) authed(next authedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.cookie.SessionCookie)
		if err != nil || cookie.Value == "" {
			s.writeError(w, r, errors.NewUnauthenticatedError("Login required"))
			return
		}

		user, err := s.business.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		next(w, r, *user)
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, session *domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cookie.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookie.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
