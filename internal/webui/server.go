// Package webui serves the browser front end: a small JSON API over one chat
// session plus an embedded static page.
package webui

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"tasktalk/internal/chat"
	"tasktalk/internal/gateway"
	"tasktalk/internal/log"
)

//go:embed static
var staticFiles embed.FS

const turnTimeout = 5 * time.Minute

// Server hosts one chat session. Concurrent chat requests are rejected while
// a turn is in flight; the transcript and task list are always readable.
type Server struct {
	gw   *gateway.Gateway
	sess *gateway.Session
	port int
}

func NewServer(gw *gateway.Gateway, port int) *Server {
	return &Server{gw: gw, port: port}
}

// Start initializes the session and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	sess, err := s.gw.Init(ctx)
	if err != nil {
		return fmt.Errorf("init session for webui: %w", err)
	}
	s.sess = sess
	if s.port == 0 {
		s.port = sess.Config.Port
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		log.Info(ctx, "shutting down web ui")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "web ui listening", "addr", fmt.Sprintf("http://localhost:%d", s.port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webui server error: %w", err)
	}
	return nil
}

// Handler returns the route table. Split out from Start so tests can drive it
// without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/tasks", s.handleTasks)
	mux.HandleFunc("/api/status", s.handleStatus)

	staticFS, _ := fs.Sub(staticFiles, "static")
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	return mux
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	turnCtx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()

	reply, err := s.sess.Service.Send(turnCtx, req.Message)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, chat.ErrBusy) {
			status = http.StatusConflict
		}
		writeJSON(w, status, chatResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"turns": s.sess.Service.DisplayTurns(),
	})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": s.sess.Store.Tasks(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "online",
		"provider": s.sess.Config.Provider,
		"model":    s.sess.Config.Model,
		"busy":     s.sess.Service.Busy(),
		"time":     time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
