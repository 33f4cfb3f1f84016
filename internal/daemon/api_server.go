package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"marquee/internal/api"
	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/services"
)

const maxRequestBody = 16 << 10

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		token:  strings.TrimSpace(cfg.Paths.APIToken),
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/query", authMiddleware(srv.token, srv.handleQuery))
	mux.HandleFunc("/api/request", authMiddleware(srv.token, srv.handleRequest))
	mux.HandleFunc("/api/select", authMiddleware(srv.token, srv.handleSelect))
	mux.HandleFunc("/api/scores", authMiddleware(srv.token, srv.handleScores))
	mux.HandleFunc("/api/status", authMiddleware(srv.token, srv.handleStatus))
	mux.HandleFunc("/api/notify/test", authMiddleware(srv.token, srv.handleTestNotification))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address not configured")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decodeQueryBody(w, r)
	if !ok {
		return
	}
	ctx := requestScope(r.Context(), body.User)
	out := s.daemon.coordinator.Query(ctx, body.User, body.Title)
	s.writeJSON(w, http.StatusOK, api.FromOutcome(out))
}

func (s *apiServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decodeQueryBody(w, r)
	if !ok {
		return
	}
	ctx := requestScope(r.Context(), body.User)
	out := s.daemon.coordinator.Request(ctx, body.User, body.Title)
	s.writeJSON(w, http.StatusOK, api.FromOutcome(out))
}

func (s *apiServer) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body api.SelectRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.User) == "" {
		s.writeError(w, http.StatusBadRequest, "user is required")
		return
	}
	if strings.TrimSpace(body.SessionID) == "" {
		s.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	ctx := requestScope(r.Context(), body.User)
	out := s.daemon.coordinator.Select(ctx, body.User, body.SessionID, body.Option)
	s.writeJSON(w, http.StatusOK, api.FromOutcome(out))
}

func (s *apiServer) handleScores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	scored, err := s.daemon.coordinator.Scores(r.Context(), title)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ScoresResponse{
		Title:   title,
		Results: api.FromScored(scored),
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, api.StatusResponse{
		Running:        status.Running,
		PID:            status.PID,
		ActiveSessions: status.ActiveSessions,
		TrackedUsers:   status.TrackedUsers,
		LockFilePath:   status.LockFilePath,
	})
}

func (s *apiServer) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.daemon.TestNotification(r.Context()); err != nil {
		s.writeJSON(w, http.StatusOK, api.TestNotificationResponse{Sent: false, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, api.TestNotificationResponse{Sent: true})
}

// requestScope tags the context with the requester identity and a fresh
// correlation id so every log record from one API call lines up.
func requestScope(ctx context.Context, user string) context.Context {
	ctx = services.WithUserID(ctx, user)
	return services.WithRequestID(ctx, uuid.NewString())
}

func (s *apiServer) decodeQueryBody(w http.ResponseWriter, r *http.Request) (api.QueryRequest, bool) {
	var body api.QueryRequest
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return body, false
	}
	if !s.decodeBody(w, r, &body) {
		return body, false
	}
	if strings.TrimSpace(body.User) == "" {
		s.writeError(w, http.StatusBadRequest, "user is required")
		return body, false
	}
	return body, true
}

func (s *apiServer) decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(out); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "api-server")
}
