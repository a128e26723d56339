// Package httpapi is the local HTTP facade over the client pipeline. The
// embedding UI talks JSON to these routes instead of holding Go references
// into the trackers.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
	"github.com/nexla-ia/gerador-frases-ia/internal/app"
	"github.com/nexla-ia/gerador-frases-ia/internal/quota"
)

// Server wires the application pipeline onto a mux router.
type Server struct {
	app  *app.App
	log  *zap.Logger
	http *http.Server
}

// New builds the Server for the given listen address.
func New(application *app.App, addr string, logger *zap.Logger) *Server {
	s := &Server{
		app: application,
		log: logger.Named("httpapi"),
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the route table. Exposed separately so tests can drive the
// handlers through httptest without binding a socket.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/gate", s.handleGate).Methods("GET")
	r.HandleFunc("/api/gate/retry", s.handleGateRetry).Methods("POST")
	r.HandleFunc("/api/gate/focus", s.handleGateFocus).Methods("POST")
	r.HandleFunc("/api/status", s.handleStatus).Methods("GET")
	r.HandleFunc("/api/generate", s.handleGenerate).Methods("POST")
	r.HandleFunc("/api/history", s.handleHistory).Methods("GET")
	r.HandleFunc("/api/history/{id}", s.handleHistoryDelete).Methods("DELETE")
	r.HandleFunc("/api/audit/stats", s.handleAuditStats).Methods("GET")
	r.Handle("/metrics", s.app.Metrics.Handler()).Methods("GET")
	return r
}

// Start mounts the gate and serves until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.app.Gate.Mount(ctx)
	defer s.app.Gate.Unmount()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP facade listening", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type gateResponse struct {
	State     schemas.GateState       `json:"state"`
	Detection schemas.DetectionResult `json:"detection"`
}

func (s *Server) handleGate(w http.ResponseWriter, r *http.Request) {
	state, result := s.app.Gate.State()
	s.writeJSON(w, http.StatusOK, gateResponse{State: state, Detection: result})
}

func (s *Server) handleGateRetry(w http.ResponseWriter, r *http.Request) {
	state := s.app.Gate.Retry(r.Context())
	_, result := s.app.Gate.State()
	s.writeJSON(w, http.StatusOK, gateResponse{State: state, Detection: result})
}

// handleGateFocus relays a window-focus-regained event from the embedding
// UI. The scheduler debounces bursts, so delivery is fire-and-forget.
func (s *Server) handleGateFocus(w http.ResponseWriter, r *http.Request) {
	s.app.Gate.NotifyFocus()
	w.WriteHeader(http.StatusNoContent)
}

type statusResponse struct {
	schemas.UserStatus
	TimeRemainingLabel string `json:"timeRemainingLabel"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.app.Status(r.Context())
	s.writeJSON(w, http.StatusOK, statusResponse{
		UserStatus:         status,
		TimeRemainingLabel: quota.FormatTimeRemaining(status.TimeRemaining),
	})
}

type generateRequest struct {
	Platform string `json:"platform"`
	Topic    string `json:"topic"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Platform == "" || req.Topic == "" {
		s.writeError(w, http.StatusBadRequest, "platform and topic are required")
		return
	}

	result, err := s.app.Generate(r.Context(), req.Platform, req.Topic)
	switch {
	case errors.Is(err, app.ErrAccessBlocked):
		s.writeJSON(w, http.StatusForbidden, map[string]interface{}{
			"error":  err.Error(),
			"status": result.Status,
		})
	case errors.Is(err, app.ErrQuotaExhausted):
		s.writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":  err.Error(),
			"status": result.Status,
		})
	case err != nil:
		s.log.Warn("Generation request failed", zap.Error(err))
		s.writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":  "caption service unavailable",
			"status": result.Status,
		})
	default:
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if term := r.URL.Query().Get("q"); term != "" {
		s.writeJSON(w, http.StatusOK, s.app.History.Search(r.Context(), term))
		return
	}
	s.writeJSON(w, http.StatusOK, s.app.History.Items(r.Context()))
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "missing history item id")
		return
	}
	s.app.History.Remove(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAuditStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.app.Audit.Stats(r.Context()))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// The status line is already out; all that is left is noting the
		// truncated body.
		s.log.Debug("Failed to encode response body", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
