package web

import (
	"log/slog"
	"net/http"

	"worktimer/internal/api"
	"worktimer/internal/config"
	"worktimer/internal/logging"
)

const (
	// maxImportBytes caps the size of an uploaded CSV file.
	maxImportBytes = 10 << 20
	maxFormBytes   = 1 << 20
)

// Server exposes the APIs over HTTP. Mutations take form-encoded bodies,
// every response is JSON except the CSV and PDF downloads.
type Server struct {
	api      api.API
	business api.BusinessAPI
	cookie   config.ServerConfig
	log      *slog.Logger
}

// New creates a server. A nil logger discards request logs.
func New(apiInstance api.API, business api.BusinessAPI, cfg config.ServerConfig, logger *slog.Logger) *Server {
	return &Server{
		api:      apiInstance,
		business: business,
		cookie:   cfg,
		log:      logging.OrDiscard(logger),
	}
}

// Handler returns the routed, logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Sessions
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	// Time entries
	mux.Handle("GET /time-entries", s.authed(s.handleListTimeEntries))
	mux.Handle("POST /time-entries", s.authed(s.handleStartTimeEntry))
	mux.Handle("GET /time-entries/{id}", s.authed(s.handleGetTimeEntry))
	mux.Handle("POST /time-entries/{id}/stop", s.authed(s.handleStopTimeEntry))
	mux.Handle("PATCH /time-entries/{id}", s.authed(s.handleUpdateTimeEntry))
	mux.Handle("DELETE /time-entries/{id}", s.authed(s.handleDeleteTimeEntry))

	// Projects
	mux.Handle("GET /projects", s.authed(s.handleListProjects))
	mux.Handle("POST /projects", s.authed(s.handleCreateProject))
	mux.Handle("GET /projects/{id}", s.authed(s.handleGetProject))
	mux.Handle("PATCH /projects/{id}", s.authed(s.handleUpdateProject))
	mux.Handle("DELETE /projects/{id}", s.authed(s.handleDeleteProject))

	// Reports and transfer
	mux.Handle("GET /reports", s.authed(s.handleReport))
	mux.Handle("GET /reports.pdf", s.authed(s.handleReportPDF))
	mux.Handle("POST /backfill", s.authed(s.handleBackfill))
	mux.Handle("GET /importexport/export.csv", s.authed(s.handleExport))
	mux.Handle("POST /importexport/import", s.authed(s.handleImport))

	// Own account
	mux.Handle("GET /account", s.authed(s.handleGetAccount))
	mux.Handle("PATCH /account", s.authed(s.handleUpdateAccount))
	mux.Handle("DELETE /account", s.authed(s.handleDeleteAccount))
	mux.Handle("POST /account/password", s.authed(s.handleChangePassword))

	// Administration
	mux.Handle("GET /users", s.authed(s.handleListUsers))
	mux.Handle("POST /users", s.authed(s.handleCreateUser))
	mux.Handle("GET /settings", s.authed(s.handleListSettings))
	mux.Handle("PATCH /settings", s.authed(s.handleUpdateSettings))

	return loggingMiddleware(s.log, mux)
}

// HTTPServer returns a configured http.Server. Call ListenAndServe on it in
// a goroutine and Shutdown it on exit.
func (s *Server) HTTPServer(addr string) *http.Server {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	s.log.Info("http server configured", slog.String("addr", addr))
	return srv
}
